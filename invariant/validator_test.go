package invariant

import (
	"math"
	"testing"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() core.Configuration {
	return core.Configuration{
		Primary:          2.89,
		Margin:           0.1,
		Secondary:        2.99,
		EnforceInvariant: true,
		Tolerance:        core.DefaultTolerance,
		ProcessingLevel:  1,
	}
}

func TestValidate_HoldingConfigIsUntouched(t *testing.T) {
	v := New()
	cfg := baseConfig()

	out, report := v.Validate(cfg)
	assert.False(t, report.Corrected)
	assert.Equal(t, cfg, out)
	assert.True(t, Holds(out))
}

func TestValidate_CorrectsDrift(t *testing.T) {
	v := New()
	cfg := baseConfig()
	cfg.Margin = 0.2

	out, report := v.Validate(cfg)
	require.True(t, report.Corrected)
	assert.InDelta(t, 0.1, report.Drift, 1e-9)
	assert.InDelta(t, 3.09, out.Secondary, 1e-9)
	assert.True(t, Holds(out))
	// The input value is left alone.
	assert.Equal(t, 2.99, cfg.Secondary)
}

func TestValidate_ClampsProcessingLevel(t *testing.T) {
	cfg := baseConfig()
	cfg.Secondary = 5
	cfg.ProcessingLevel = 4

	out, report := New().Validate(cfg)
	require.True(t, report.Corrected)
	assert.Equal(t, cfg.Primary, out.ProcessingLevel)

	cfg.ProcessingLevel = 0.5
	out, _ = New().Validate(cfg)
	assert.Equal(t, 0.5, out.ProcessingLevel)
}

func TestValidate_StrictTolerance(t *testing.T) {
	cfg := baseConfig()
	cfg.Secondary = 2.9905

	_, report := New().Validate(cfg)
	assert.False(t, report.Corrected, "within the default tolerance")

	cfg.Strict = true
	out, report := New().Validate(cfg)
	assert.True(t, report.Corrected)
	assert.Equal(t, core.StrictTolerance, report.Tolerance)
	assert.InDelta(t, 2.99, out.Secondary, 1e-12)
}

func TestValidate_EnforcementDisabled(t *testing.T) {
	cfg := baseConfig()
	cfg.EnforceInvariant = false
	cfg.Secondary = 10

	out, report := New().Validate(cfg)
	assert.False(t, report.Corrected)
	assert.Equal(t, 10.0, out.Secondary)
	assert.False(t, Holds(out))
}

func TestDrift_NonFinite(t *testing.T) {
	cfg := baseConfig()
	cfg.Secondary = math.NaN()
	assert.True(t, math.IsInf(Drift(cfg), 1))
	assert.False(t, Holds(cfg))
}

func TestAlignment(t *testing.T) {
	a := Alignment(baseConfig())
	assert.True(t, a.FormulaHolds)
	assert.Equal(t, 2.89, a.Primary)
	assert.Equal(t, 0.1, a.Margin)
	assert.Equal(t, 2.99, a.Secondary)
}
