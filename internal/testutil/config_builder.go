package testutil

import (
	"github.com/hupe1980/conceptmesh/config"
	"github.com/hupe1980/conceptmesh/core"
)

// ConfigBuilder provides a fluent helper for constructing configurations in
// tests. It starts from config.Default().
//
//	cfg := NewConfigBuilder().Margin(0.2).Strict().Build()
//
// Build recomputes Secondary unless Drift was called.
type ConfigBuilder struct {
	cfg   core.Configuration
	drift *float64
}

// NewConfigBuilder creates a builder seeded with the default configuration.
func NewConfigBuilder() *ConfigBuilder { return &ConfigBuilder{cfg: config.Default()} }

// Primary sets the primary value (chainable).
func (b *ConfigBuilder) Primary(v float64) *ConfigBuilder { b.cfg.Primary = v; return b }

// Margin sets the margin (chainable).
func (b *ConfigBuilder) Margin(v float64) *ConfigBuilder { b.cfg.Margin = v; return b }

// MarginRate sets the capacity margin rate (chainable).
func (b *ConfigBuilder) MarginRate(v float64) *ConfigBuilder { b.cfg.MarginRate = v; return b }

// Strict enables the tight tolerance (chainable).
func (b *ConfigBuilder) Strict() *ConfigBuilder { b.cfg.Strict = true; return b }

// Unenforced disables invariant repair (chainable).
func (b *ConfigBuilder) Unenforced() *ConfigBuilder { b.cfg.EnforceInvariant = false; return b }

// DefaultBranch sets the default branch name (chainable).
func (b *ConfigBuilder) DefaultBranch(name string) *ConfigBuilder {
	b.cfg.DefaultBranch = name
	return b
}

// Branch adds or replaces a branch profile (chainable).
func (b *ConfigBuilder) Branch(p core.BranchProfile) *ConfigBuilder {
	b.cfg.Branches[p.Name] = p
	return b
}

// Adaptation replaces the margin controller policy (chainable).
func (b *ConfigBuilder) Adaptation(p core.AdaptationPolicy) *ConfigBuilder {
	b.cfg.Adaptation = p
	return b
}

// Drift stores Secondary = Primary + Margin + d, leaving the invariant broken (chainable).
func (b *ConfigBuilder) Drift(d float64) *ConfigBuilder { b.drift = &d; return b }

// Build returns the configuration.
func (b *ConfigBuilder) Build() core.Configuration {
	cfg := b.cfg.Clone()
	cfg.Secondary = cfg.Primary + cfg.Margin
	if b.drift != nil {
		cfg.Secondary += *b.drift
	}
	return cfg
}
