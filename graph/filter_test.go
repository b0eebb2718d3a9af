package graph

import (
	"math"
	"testing"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/stretchr/testify/assert"
)

func edgesWithStrengths(strengths ...float64) []core.ConnectionEdge {
	edges := make([]core.ConnectionEdge, len(strengths))
	for i, s := range strengths {
		edges[i] = core.ConnectionEdge{From: "from", To: core.Concept(string(rune('a' + i))), Strength: s, JumpDistance: 1}
	}
	return edges
}

func strengths(edges []core.ConnectionEdge) []float64 {
	out := make([]float64, len(edges))
	for i, e := range edges {
		out[i] = e.Strength
	}
	return out
}

func TestFilterWithCapacity(t *testing.T) {
	edges := edgesWithStrengths(0.9, 0.7, 0.5, 0.3)

	retained, report := NewFilter().FilterWithCapacity(edges, 0.4)
	assert.Equal(t, []float64{0.9, 0.7}, strengths(retained))
	assert.InDelta(t, 0.6, report.Threshold, 1e-12)
	assert.Equal(t, 4, report.Input)
	assert.Equal(t, 2, report.Retained)
	assert.Len(t, edges, 4, "input untouched")
}

func TestFilter_ComputesCapacity(t *testing.T) {
	f := NewFilter(func(o *FilterOptions) {
		o.Complexity = func([]core.ConnectionEdge) float64 { return 0 }
	})
	edges := edgesWithStrengths(0.9, 0.7, 0.5, 0.3)

	// 2^2 * 0.1 = 0.4
	retained, report := f.Filter(edges, 2, 0.1)
	assert.Equal(t, 2.0, report.Exponent)
	assert.InDelta(t, 0.4, report.Capacity, 1e-12)
	assert.Equal(t, []float64{0.9, 0.7}, strengths(retained))
}

func TestFilter_DefaultConfig(t *testing.T) {
	edges := edgesWithStrengths(0.9, 0.2, 0.01)
	retained, report := NewFilter().Filter(edges, 2.99, 0.05)
	// 2.99^2 * 0.05 > 0.44, so the threshold sits below 0.56.
	assert.Greater(t, report.Capacity, 0.44)
	assert.Len(t, retained, 1)
}

func TestExponent(t *testing.T) {
	assert.Equal(t, 2.0, Exponent(0))
	assert.Equal(t, 2.25, Exponent(0.5))
	assert.Equal(t, 2.5, Exponent(1))
	assert.Equal(t, 2.5, Exponent(7), "complexity is clamped")
	assert.Equal(t, 2.0, Exponent(math.NaN()))
}

func TestDefaultComplexity(t *testing.T) {
	assert.Equal(t, 0.0, DefaultComplexity(nil))

	uniform := edgesWithStrengths(0.5, 0.5, 0.5, 0.5)
	assert.InDelta(t, 0.5*4.0/32, DefaultComplexity(uniform), 1e-12)

	spread := edgesWithStrengths(0, 1)
	// variance 0.25 saturates the spread half.
	assert.InDelta(t, 0.5*2.0/32+0.5, DefaultComplexity(spread), 1e-12)

	many := make([]core.ConnectionEdge, 64)
	assert.InDelta(t, 0.5, DefaultComplexity(many), 1e-12)
}

func TestFilter_MonotoneInCapacity(t *testing.T) {
	edges := edgesWithStrengths(0.95, 0.81, 0.64, 0.5, 0.33, 0.12, 0.05)
	f := NewFilter()

	prev := -1
	for c := 0.0; c <= 1.2; c += 0.01 {
		_, report := f.FilterWithCapacity(edges, c)
		assert.GreaterOrEqual(t, report.Retained, prev, "capacity %.2f", c)
		prev = report.Retained
	}
}

func TestFilter_HigherExponentNeverRetainsMoreWithNormalizedBase(t *testing.T) {
	edges := edgesWithStrengths(0.95, 0.81, 0.64, 0.5, 0.33, 0.12, 0.05)

	for _, secondary := range []float64{0.3, 0.6, 0.9, 0.99} {
		prev := math.MaxInt
		for complexity := 0.0; complexity <= 1.0; complexity += 0.05 {
			f := NewFilter(func(o *FilterOptions) {
				o.Complexity = func([]core.ConnectionEdge) float64 { return complexity }
			})
			_, report := f.Filter(edges, secondary, 1)
			assert.LessOrEqual(t, report.Retained, prev, "secondary %.2f complexity %.2f", secondary, complexity)
			prev = report.Retained
		}
	}
}

func TestFilter_CustomConfidence(t *testing.T) {
	f := NewFilter(func(o *FilterOptions) {
		o.Confidence = func(e core.ConnectionEdge) float64 { return e.Strength / float64(e.JumpDistance) }
	})
	edges := []core.ConnectionEdge{
		{From: "a", To: "b", Strength: 0.9, JumpDistance: 1},
		{From: "a", To: "c", Strength: 0.9, JumpDistance: 3},
	}
	retained, _ := f.FilterWithCapacity(edges, 0.5)
	assert.Len(t, retained, 1)
	assert.Equal(t, core.Concept("b"), retained[0].To)
}
