package config

import "github.com/hupe1980/conceptmesh/core"

// Branch names shipped with the default configuration.
const (
	BranchPersonal    = "personal"
	BranchFormal      = "formal"
	BranchSpecialized = "specialized"
)

// DefaultAdaptation is the margin controller policy used by Default.
var DefaultAdaptation = core.AdaptationPolicy{
	GrowthRate:            0.01,
	MaxIncrease:           0.05,
	ContractionRate:       0.001,
	MaxContractionPerStep: 0.05,
	MinMargin:             0.01,
	MaxMarginIncrease:     0.5,
	RecoveryWindow:        10,
}

// DefaultBranches returns the built-in branch profiles.
func DefaultBranches() map[string]core.BranchProfile {
	return map[string]core.BranchProfile{
		BranchPersonal: {
			Name:            BranchPersonal,
			MaxJumpDistance: 3,
			ResponseStyle:   core.StyleConversational,
		},
		BranchFormal: {
			Name:            BranchFormal,
			MaxJumpDistance: 2,
			ResponseStyle:   core.StyleAcademic,
		},
		BranchSpecialized: {
			Name:            BranchSpecialized,
			MarginOverride:  0.15,
			MaxJumpDistance: 4,
			ResponseStyle:   core.StyleStructured,
		},
	}
}

// Default returns a fresh default configuration. The numeric defaults are
// plain starting parameters; primary 2.89 and margin 0.1 give secondary 2.99.
func Default() core.Configuration {
	return core.Configuration{
		Primary:          2.89,
		Margin:           0.1,
		Secondary:        2.89 + 0.1,
		EnforceInvariant: true,
		Tolerance:        core.DefaultTolerance,
		ProcessingLevel:  1.0,
		MarginRate:       0.05,
		MaxJumpDistance:  3,
		MinConceptLength: 4,
		MaxConcepts:      64,
		SummaryConcepts:  5,
		DefaultBranch:    BranchPersonal,
		Adaptation:       DefaultAdaptation,
		Branches:         DefaultBranches(),
	}
}
