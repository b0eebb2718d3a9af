package scorer

import (
	"context"
	"math"
	"slices"

	"github.com/hupe1980/conceptmesh/core"
)

// ProximityOptions configures a Proximity scorer.
type ProximityOptions struct {
	// Window is the number of positions on each side that are considered.
	Window int
	// DistanceWeight weighs 1/jump, SimilarityWeight weighs bigram similarity.
	DistanceWeight   float64
	SimilarityWeight float64
}

// Proximity links a concept to its neighbours in the input. Strength combines
// positional closeness with the Jaccard similarity of character bigrams.
type Proximity struct {
	opts ProximityOptions
}

// NewProximity creates a Proximity scorer.
func NewProximity(optFns ...func(o *ProximityOptions)) *Proximity {
	opts := ProximityOptions{Window: 6, DistanceWeight: 0.6, SimilarityWeight: 0.4}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Window = max(opts.Window, 1)
	return &Proximity{opts: opts}
}

// Score implements core.Scorer. Concepts outside the window yield nothing.
func (p *Proximity) Score(ctx context.Context, from core.Concept, concepts []core.Concept) ([]core.Candidate, error) {
	i := slices.Index(concepts, from)
	if i < 0 {
		return nil, nil
	}
	fromGrams := bigrams(string(from))

	lo := max(i-p.opts.Window, 0)
	hi := min(i+p.opts.Window, len(concepts)-1)
	out := make([]core.Candidate, 0, hi-lo)
	for j := lo; j <= hi; j++ {
		if j == i || concepts[j] == from {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		jump := j - i
		if jump < 0 {
			jump = -jump
		}
		strength := p.opts.DistanceWeight/float64(jump) + p.opts.SimilarityWeight*jaccard(fromGrams, bigrams(string(concepts[j])))
		out = append(out, core.Candidate{
			To:           concepts[j],
			Strength:     math.Min(math.Max(strength, 0), 1),
			JumpDistance: jump,
		})
	}
	return out, nil
}

func bigrams(s string) map[string]struct{} {
	runes := []rune(s)
	out := make(map[string]struct{}, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		out[string(runes[i:i+2])] = struct{}{}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
