package invariant

import (
	"math"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/logging"
)

// Report describes the outcome of a single validation.
type Report struct {
	// Drift is |primary + margin - secondary| before correction.
	Drift     float64
	Tolerance float64
	// Corrected is true when secondary (and possibly the processing level)
	// was rewritten.
	Corrected bool
}

// Options configures a Validator.
type Options struct {
	Logger logging.Logger
}

// Validator repairs invariant drift in configurations.
type Validator struct {
	logger logging.Logger
}

// New creates a Validator.
func New(optFns ...func(o *Options)) *Validator {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Validator{logger: logging.OrNoOp(opts.Logger)}
}

// Validate returns cfg with the invariant restored. The input is not modified.
// When EnforceInvariant is off the configuration is returned unchanged and the
// report only carries the measured drift.
func (v *Validator) Validate(cfg core.Configuration) (core.Configuration, Report) {
	tol := cfg.EffectiveTolerance()
	drift := Drift(cfg)
	report := Report{Drift: drift, Tolerance: tol}

	if !cfg.EnforceInvariant || drift <= tol {
		return cfg, report
	}

	out := cfg.Clone()
	out.Secondary = out.Primary + out.Margin
	out.ProcessingLevel = math.Min(out.Primary, out.ProcessingLevel)
	report.Corrected = true

	v.logger.Warn("invariant.drift drift=%g tolerance=%g primary=%g margin=%g secondary=%g->%g",
		drift, tol, cfg.Primary, cfg.Margin, cfg.Secondary, out.Secondary)

	return out, report
}

// Holds reports whether |primary + margin - secondary| is within tolerance.
func Holds(cfg core.Configuration) bool {
	return Drift(cfg) <= cfg.EffectiveTolerance()
}

// Drift returns |primary + margin - secondary|. Non-finite inputs yield +Inf.
func Drift(cfg core.Configuration) float64 {
	d := math.Abs(cfg.Primary + cfg.Margin - cfg.Secondary)
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}

// Alignment summarizes cfg for a processing result.
func Alignment(cfg core.Configuration) core.Alignment {
	return core.Alignment{
		FormulaHolds: Holds(cfg),
		Primary:      cfg.Primary,
		Margin:       cfg.Margin,
		Secondary:    cfg.Secondary,
	}
}
