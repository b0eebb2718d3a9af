package graph

import (
	"math"

	"github.com/hupe1980/conceptmesh/core"
)

const (
	// BaseExponent is the exponent used for a graph of zero complexity.
	BaseExponent = 2.0
	// MaxExponent caps the exponent.
	MaxExponent = 3.0
	// ComplexityWeight scales complexity into the exponent.
	ComplexityWeight = 0.5

	saturationEdges    = 32
	saturationVariance = 0.25
)

// ComplexityFunc scores an edge set in [0,1]. Results outside the range are clamped.
type ComplexityFunc func(edges []core.ConnectionEdge) float64

// ConfidenceFunc returns the admission confidence of an edge.
type ConfidenceFunc func(edge core.ConnectionEdge) float64

// FilterReport describes one filter pass.
type FilterReport struct {
	Complexity float64
	Exponent   float64
	Capacity   float64
	Threshold  float64
	Input      int
	Retained   int
}

// FilterOptions configures a Filter.
type FilterOptions struct {
	Complexity ComplexityFunc
	Confidence ConfidenceFunc
}

// Filter is the capacity based admission filter. It holds no mutable state.
type Filter struct {
	complexity ComplexityFunc
	confidence ConfidenceFunc
}

// NewFilter creates a Filter using DefaultComplexity and DefaultConfidence
// unless overridden.
func NewFilter(optFns ...func(o *FilterOptions)) *Filter {
	opts := FilterOptions{Complexity: DefaultComplexity, Confidence: DefaultConfidence}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Complexity == nil {
		opts.Complexity = DefaultComplexity
	}
	if opts.Confidence == nil {
		opts.Confidence = DefaultConfidence
	}
	return &Filter{complexity: opts.Complexity, confidence: opts.Confidence}
}

// Complexity returns the clamped complexity of edges.
func (f *Filter) Complexity(edges []core.ConnectionEdge) float64 {
	return clamp01(f.complexity(edges))
}

// Filter computes the capacity for edges and returns the admitted edges.
func (f *Filter) Filter(edges []core.ConnectionEdge, secondary, marginRate float64) ([]core.ConnectionEdge, FilterReport) {
	complexity := f.Complexity(edges)
	exponent := Exponent(complexity)
	retained, report := f.FilterWithCapacity(edges, Capacity(secondary, exponent, marginRate))
	report.Complexity = complexity
	report.Exponent = exponent
	return retained, report
}

// FilterWithCapacity admits edges whose confidence exceeds 1 - capacity.
// The input slice is not modified.
func (f *Filter) FilterWithCapacity(edges []core.ConnectionEdge, capacity float64) ([]core.ConnectionEdge, FilterReport) {
	threshold := 1 - capacity
	retained := make([]core.ConnectionEdge, 0, len(edges))
	for _, e := range edges {
		if f.confidence(e) > threshold {
			retained = append(retained, e)
		}
	}
	return retained, FilterReport{
		Capacity:  capacity,
		Threshold: threshold,
		Input:     len(edges),
		Retained:  len(retained),
	}
}

// Exponent maps a complexity in [0,1] to the power-law exponent.
func Exponent(complexity float64) float64 {
	return math.Min(BaseExponent+ComplexityWeight*clamp01(complexity), MaxExponent)
}

// Capacity returns secondary^exponent * marginRate.
func Capacity(secondary, exponent, marginRate float64) float64 {
	return math.Pow(secondary, exponent) * marginRate
}

// DefaultComplexity weighs edge count saturation and strength variance equally.
func DefaultComplexity(edges []core.ConnectionEdge) float64 {
	n := len(edges)
	if n == 0 {
		return 0
	}
	var sum float64
	for _, e := range edges {
		sum += e.Strength
	}
	mean := sum / float64(n)
	var variance float64
	for _, e := range edges {
		d := e.Strength - mean
		variance += d * d
	}
	variance /= float64(n)

	size := math.Min(1, float64(n)/saturationEdges)
	spread := math.Min(1, variance/saturationVariance)
	return 0.5*size + 0.5*spread
}

// DefaultConfidence uses the edge strength.
func DefaultConfidence(edge core.ConnectionEdge) float64 { return edge.Strength }

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
