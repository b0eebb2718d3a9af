package core

import "maps"

// ResponseStyle selects how the composer phrases an answer. It affects the
// composed text only, never the algorithmic path.
type ResponseStyle string

const (
	// StyleConversational produces a short first-person reply.
	StyleConversational ResponseStyle = "conversational"
	// StyleAcademic produces a neutral analytical summary.
	StyleAcademic ResponseStyle = "academic"
	// StyleStructured produces a labelled, line oriented summary.
	StyleStructured ResponseStyle = "structured"
)

// Valid reports whether s is one of the known styles.
func (s ResponseStyle) Valid() bool {
	switch s {
	case StyleConversational, StyleAcademic, StyleStructured:
		return true
	default:
		return false
	}
}

// BranchProfile is a named bundle of response-generation parameters.
type BranchProfile struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	// MarginOverride, when positive, replaces the configured margin while
	// computing this call's filter capacity. The stored margin is untouched.
	MarginOverride float64 `yaml:"margin_override" json:"margin_override" validate:"gte=0"`
	// MaxJumpDistance, when positive, replaces Configuration.MaxJumpDistance
	// for graph construction.
	MaxJumpDistance int           `yaml:"max_jump_distance" json:"max_jump_distance" validate:"gte=0"`
	ResponseStyle   ResponseStyle `yaml:"response_style" json:"response_style" validate:"required,oneof=conversational academic structured"`
	// Template is an optional text/template replacing the style's built-in answer.
	Template string `yaml:"template,omitempty" json:"template,omitempty"`
}

// AdaptationPolicy parameterizes the margin controller.
type AdaptationPolicy struct {
	GrowthRate            float64 `yaml:"growth_rate" json:"growth_rate" validate:"gte=0"`
	MaxIncrease           float64 `yaml:"max_increase" json:"max_increase" validate:"gte=0"`
	ContractionRate       float64 `yaml:"contraction_rate" json:"contraction_rate" validate:"gte=0"`
	MaxContractionPerStep float64 `yaml:"max_contraction_per_step" json:"max_contraction_per_step" validate:"gte=0,lt=1"`
	MinMargin             float64 `yaml:"min_margin" json:"min_margin" validate:"gte=0"`
	MaxMarginIncrease     float64 `yaml:"max_margin_increase" json:"max_margin_increase" validate:"gte=0"`
	// RecoveryWindow is the number of consecutive stable calls after which
	// the violation counter resets to zero. Zero disables the reset.
	RecoveryWindow int `yaml:"recovery_window" json:"recovery_window" validate:"gte=0"`
}

// Configuration is the tunable parameter set owned by the engine.
type Configuration struct {
	Primary          float64 `yaml:"primary" json:"primary" validate:"gt=0"`
	Margin           float64 `yaml:"margin" json:"margin" validate:"gte=0"`
	Secondary        float64 `yaml:"secondary" json:"secondary"`
	EnforceInvariant bool    `yaml:"enforce_invariant" json:"enforce_invariant"`
	Tolerance        float64 `yaml:"tolerance" json:"tolerance" validate:"gt=0"`
	Strict           bool    `yaml:"strict" json:"strict"`
	ProcessingLevel  float64 `yaml:"processing_level" json:"processing_level" validate:"gte=0"`
	MarginRate       float64 `yaml:"margin_rate" json:"margin_rate" validate:"gte=0"`
	MaxJumpDistance  int     `yaml:"max_jump_distance" json:"max_jump_distance" validate:"gte=1"`
	MinConceptLength int     `yaml:"min_concept_length" json:"min_concept_length" validate:"gte=0"`
	MaxConcepts      int     `yaml:"max_concepts" json:"max_concepts" validate:"gte=1"`
	SummaryConcepts  int     `yaml:"summary_concepts" json:"summary_concepts" validate:"gte=1"`
	DefaultBranch    string  `yaml:"default_branch" json:"default_branch" validate:"required"`

	Adaptation AdaptationPolicy         `yaml:"adaptation" json:"adaptation"`
	Branches   map[string]BranchProfile `yaml:"branches" json:"branches" validate:"dive"`
}

// Clone returns a deep copy of the configuration.
func (c Configuration) Clone() Configuration {
	out := c
	out.Branches = maps.Clone(c.Branches)
	return out
}

// EffectiveTolerance returns the drift tolerance, tightened in strict mode.
func (c Configuration) EffectiveTolerance() float64 {
	if c.Strict {
		return StrictTolerance
	}
	if c.Tolerance <= 0 {
		return DefaultTolerance
	}
	return c.Tolerance
}

// Branch returns the named profile.
func (c Configuration) Branch(name string) (BranchProfile, bool) {
	p, ok := c.Branches[name]
	return p, ok
}

// Drift tolerances.
const (
	DefaultTolerance = 1e-3
	StrictTolerance  = 1e-5
)

// PartialConfiguration carries an explicit partial update. Nil fields keep
// their current value. Branches entries replace same-named profiles.
type PartialConfiguration struct {
	Primary          *float64                 `yaml:"primary,omitempty" json:"primary,omitempty"`
	Margin           *float64                 `yaml:"margin,omitempty" json:"margin,omitempty"`
	Secondary        *float64                 `yaml:"secondary,omitempty" json:"secondary,omitempty"`
	EnforceInvariant *bool                    `yaml:"enforce_invariant,omitempty" json:"enforce_invariant,omitempty"`
	Tolerance        *float64                 `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`
	Strict           *bool                    `yaml:"strict,omitempty" json:"strict,omitempty"`
	ProcessingLevel  *float64                 `yaml:"processing_level,omitempty" json:"processing_level,omitempty"`
	MarginRate       *float64                 `yaml:"margin_rate,omitempty" json:"margin_rate,omitempty"`
	MaxJumpDistance  *int                     `yaml:"max_jump_distance,omitempty" json:"max_jump_distance,omitempty"`
	MinConceptLength *int                     `yaml:"min_concept_length,omitempty" json:"min_concept_length,omitempty"`
	MaxConcepts      *int                     `yaml:"max_concepts,omitempty" json:"max_concepts,omitempty"`
	SummaryConcepts  *int                     `yaml:"summary_concepts,omitempty" json:"summary_concepts,omitempty"`
	DefaultBranch    *string                  `yaml:"default_branch,omitempty" json:"default_branch,omitempty"`
	Adaptation       *AdaptationPolicy        `yaml:"adaptation,omitempty" json:"adaptation,omitempty"`
	Branches         map[string]BranchProfile `yaml:"branches,omitempty" json:"branches,omitempty"`
}

// IsEmpty reports whether the partial update changes nothing.
func (p PartialConfiguration) IsEmpty() bool {
	return p.Primary == nil && p.Margin == nil && p.Secondary == nil && p.EnforceInvariant == nil &&
		p.Tolerance == nil && p.Strict == nil && p.ProcessingLevel == nil && p.MarginRate == nil &&
		p.MaxJumpDistance == nil && p.MinConceptLength == nil && p.MaxConcepts == nil &&
		p.SummaryConcepts == nil && p.DefaultBranch == nil && p.Adaptation == nil && len(p.Branches) == 0
}

// Ptr returns a pointer to v. Handy for building partial updates.
func Ptr[T any](v T) *T { return &v }
