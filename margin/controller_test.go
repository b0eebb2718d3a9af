package margin

import (
	"math/rand/v2"
	"testing"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/stretchr/testify/assert"
)

func testPolicy() core.AdaptationPolicy {
	return core.AdaptationPolicy{
		GrowthRate:            0.01,
		MaxIncrease:           0.05,
		ContractionRate:       0.001,
		MaxContractionPerStep: 0.05,
		MinMargin:             0.01,
		MaxMarginIncrease:     0.5,
		RecoveryWindow:        10,
	}
}

func TestGrow(t *testing.T) {
	c := New(testPolicy())

	assert.InDelta(t, 0.13, c.Grow(0.1, 2.89, 3), 1e-12)
	// Capped by MaxIncrease.
	assert.InDelta(t, 0.15, c.Grow(0.1, 2.89, 100), 1e-12)
	// Capped by the upper bound.
	assert.InDelta(t, 3.39, c.Grow(3.38, 2.89, 5), 1e-12)
	// Negative counts are treated as zero.
	assert.InDelta(t, 0.1, c.Grow(0.1, 2.89, -4), 1e-12)
}

func TestContract(t *testing.T) {
	c := New(testPolicy())

	assert.InDelta(t, 0.1*(1-0.002), c.Contract(0.1, 2.89, 2), 1e-12)
	// Capped by MaxContractionPerStep.
	assert.InDelta(t, 0.1*0.95, c.Contract(0.1, 2.89, 1000), 1e-12)
	// Never below MinMargin.
	assert.Equal(t, 0.01, c.Contract(0.0101, 2.89, 1000))
}

func TestBounds(t *testing.T) {
	c := New(testPolicy())
	lo, hi := c.Bounds(2.89)
	assert.Equal(t, 0.01, lo)
	assert.InDelta(t, 3.39, hi, 1e-12)

	assert.Equal(t, 0.01, c.Clamp(-1, 2.89))
	assert.InDelta(t, 3.39, c.Clamp(100, 2.89), 1e-12)
}

func TestCounters(t *testing.T) {
	c := New(testPolicy())
	var n Counters

	m := c.OnViolation(&n, 0.1, 2.89)
	assert.Equal(t, Counters{Stability: 0, Violations: 1}, n)
	assert.InDelta(t, 0.11, m, 1e-12)

	for range 9 {
		m = c.OnSuccess(&n, m, 2.89)
	}
	assert.Equal(t, 9, n.Stability)
	assert.Equal(t, 1, n.Violations)

	m = c.OnSuccess(&n, m, 2.89)
	assert.Equal(t, 10, n.Stability)
	assert.Equal(t, 0, n.Violations, "recovery window clears violations")

	c.OnViolation(&n, m, 2.89)
	assert.Equal(t, 0, n.Stability)
	assert.Equal(t, 1, n.Violations)
}

func TestBoundsHoldForAnyEventSequence(t *testing.T) {
	c := New(testPolicy())
	r := rand.New(rand.NewPCG(1, 2))
	lo, hi := c.Bounds(2.89)

	var n Counters
	m := 0.1
	for range 10_000 {
		if r.IntN(4) == 0 {
			m = c.OnViolation(&n, m, 2.89)
		} else {
			m = c.OnSuccess(&n, m, 2.89)
		}
		assert.GreaterOrEqual(t, m, lo)
		assert.LessOrEqual(t, m, hi)
		assert.GreaterOrEqual(t, n.Stability, 0)
		assert.GreaterOrEqual(t, n.Violations, 0)
	}
}
