package compose

import (
	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/logging"
)

// Source records why a profile was selected.
type Source string

const (
	SourceOverride   Source = "override"
	SourceSuggestion Source = "suggestion"
	SourceDefault    Source = "default"
	SourceBuiltin    Source = "builtin"
)

// BuiltinProfile is used when the configuration names no usable profile.
var BuiltinProfile = core.BranchProfile{Name: "builtin", ResponseStyle: core.StyleConversational}

// Selector resolves branch profiles from a configuration.
type Selector struct {
	logger logging.Logger
}

// NewSelector creates a Selector.
func NewSelector(logger logging.Logger) *Selector {
	return &Selector{logger: logging.OrNoOp(logger)}
}

// Select returns the profile for a call. An empty override means none.
func (s *Selector) Select(cfg core.Configuration, override, suggestion string) (core.BranchProfile, Source) {
	if override != "" {
		if p, ok := cfg.Branch(override); ok {
			return p, SourceOverride
		}
		s.logger.Warn("compose.select unknown branch override=%s, ignoring", override)
	}
	if p, ok := cfg.Branch(suggestion); ok && suggestion != "" {
		return p, SourceSuggestion
	}
	if p, ok := cfg.Branch(cfg.DefaultBranch); ok {
		return p, SourceDefault
	}
	return BuiltinProfile, SourceBuiltin
}
