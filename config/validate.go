package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/hupe1980/conceptmesh/core"
)

// structValidate is the shared validator instance for configuration structs.
var structValidate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints and the hard bounds of cfg. It does not
// check the primary/margin/secondary invariant; that is the invariant
// validator's job. Every failure is a *core.ValidationError.
func Validate(cfg core.Configuration) error {
	for name, v := range map[string]float64{
		"Primary":         cfg.Primary,
		"Margin":          cfg.Margin,
		"Secondary":       cfg.Secondary,
		"Tolerance":       cfg.Tolerance,
		"ProcessingLevel": cfg.ProcessingLevel,
		"MarginRate":      cfg.MarginRate,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &core.ValidationError{Field: name, Reason: "must be finite", Cause: core.ErrInvariantUnrecoverable}
		}
	}

	if err := structValidate.Struct(cfg); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			fe := vErrs[0]
			return &core.ValidationError{
				Field:  fe.Namespace(),
				Reason: fmt.Sprintf("failed %q constraint (value %v)", fe.Tag(), fe.Value()),
			}
		}
		return &core.ValidationError{Reason: err.Error()}
	}

	a := cfg.Adaptation
	if cfg.Margin < a.MinMargin {
		return core.NewValidationError("Margin", fmt.Sprintf("%.6g below minimum %.6g", cfg.Margin, a.MinMargin))
	}
	if upper := cfg.Primary + a.MaxMarginIncrease; cfg.Margin > upper {
		return core.NewValidationError("Margin", fmt.Sprintf("%.6g above maximum %.6g", cfg.Margin, upper))
	}
	if _, ok := cfg.Branches[cfg.DefaultBranch]; !ok {
		return core.NewValidationError("DefaultBranch", fmt.Sprintf("unknown branch %q", cfg.DefaultBranch))
	}
	for key, p := range cfg.Branches {
		if p.Name != key {
			return core.NewValidationError("Branches", fmt.Sprintf("profile %q registered under key %q", p.Name, key))
		}
	}
	return nil
}
