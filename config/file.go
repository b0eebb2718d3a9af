package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/hupe1980/conceptmesh/core"
	"gopkg.in/yaml.v3"
)

// MaxFileSize caps the size of a configuration file (1MB).
const MaxFileSize = 1024 * 1024

// LoadPartial reads a YAML file into a partial update. Keys missing from the
// file stay nil so applying the result leaves those fields untouched.
func LoadPartial(path string) (core.PartialConfiguration, error) {
	info, err := os.Stat(path)
	if err != nil {
		return core.PartialConfiguration{}, fmt.Errorf("failed to stat config %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return core.PartialConfiguration{}, fmt.Errorf("config %s exceeds %d bytes", path, MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return core.PartialConfiguration{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParsePartial(data)
}

// ParsePartial decodes YAML into a partial update, rejecting unknown keys.
func ParsePartial(data []byte) (core.PartialConfiguration, error) {
	var p core.PartialConfiguration
	if len(bytes.TrimSpace(data)) == 0 {
		return p, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return core.PartialConfiguration{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return p, nil
}

// Load reads a YAML file and overlays it on Default. The result is validated
// for hard bounds; the invariant itself is repaired later by the engine.
func Load(path string) (core.Configuration, error) {
	p, err := LoadPartial(path)
	if err != nil {
		return core.Configuration{}, err
	}
	cfg := Merge(Default(), p)
	if p.Secondary == nil {
		cfg.Secondary = cfg.Primary + cfg.Margin
	}
	if err := Validate(cfg); err != nil {
		return core.Configuration{}, err
	}
	return cfg, nil
}

// Marshal encodes a configuration as YAML.
func Marshal(cfg core.Configuration) ([]byte, error) {
	return yaml.Marshal(cfg)
}
