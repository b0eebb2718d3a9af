package graph

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/logging"
)

// BuildStats counts how candidates were normalized during a build.
type BuildStats struct {
	Candidates       int
	DroppedSelfLoops int
	DroppedEmpty     int
	StrengthClamped  int
	JumpClamped      int
	Scaled           int
	Deduped          int
}

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	// Clock stamps edges. Defaults to time.Now.
	Clock  func() time.Time
	Logger logging.Logger
}

// Builder turns concepts into scored edges using a Scorer.
type Builder struct {
	scorer core.Scorer
	clock  func() time.Time
	logger logging.Logger
}

// NewBuilder creates a Builder backed by scorer.
func NewBuilder(scorer core.Scorer, optFns ...func(o *BuilderOptions)) *Builder {
	opts := BuilderOptions{Clock: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Builder{scorer: scorer, clock: opts.Clock, logger: logging.OrNoOp(opts.Logger)}
}

// Build scores every concept and returns the normalized, deduplicated edges
// sorted by (From, To). maxJump values below 1 are treated as 1. A scorer
// error aborts the build and is returned wrapped in core.ErrScorer.
func (b *Builder) Build(ctx context.Context, concepts []core.Concept, maxJump int) ([]core.ConnectionEdge, BuildStats, error) {
	stats := BuildStats{}
	if len(concepts) == 0 {
		return nil, stats, nil
	}
	maxJump = max(maxJump, 1)
	now := b.clock()

	byKey := make(map[core.EdgeKey]core.ConnectionEdge)
	for _, from := range concepts {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		candidates, err := b.scorer.Score(ctx, from, concepts)
		if err != nil {
			return nil, stats, fmt.Errorf("%w: concept %q: %w", core.ErrScorer, from, err)
		}
		for _, c := range candidates {
			stats.Candidates++
			edge, ok := normalize(from, c, maxJump, &stats)
			if !ok {
				continue
			}
			edge.Timestamp = now
			if existing, dup := byKey[edge.Key()]; dup {
				stats.Deduped++
				if edge.Strength <= existing.Strength {
					continue
				}
			}
			byKey[edge.Key()] = edge
		}
	}

	edges := make([]core.ConnectionEdge, 0, len(byKey))
	for _, e := range byKey {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	b.logger.Debug("graph.build concepts=%d candidates=%d edges=%d deduped=%d scaled=%d",
		len(concepts), stats.Candidates, len(edges), stats.Deduped, stats.Scaled)

	return edges, stats, nil
}

func normalize(from core.Concept, c core.Candidate, maxJump int, stats *BuildStats) (core.ConnectionEdge, bool) {
	if c.To == "" {
		stats.DroppedEmpty++
		return core.ConnectionEdge{}, false
	}
	if c.To == from {
		stats.DroppedSelfLoops++
		return core.ConnectionEdge{}, false
	}

	strength := c.Strength
	switch {
	case math.IsNaN(strength) || strength < 0:
		strength = 0
		stats.StrengthClamped++
	case strength > 1:
		strength = 1
		stats.StrengthClamped++
	}

	jump := c.JumpDistance
	if jump < 1 {
		jump = 1
		stats.JumpClamped++
	}
	if jump > maxJump {
		strength *= float64(maxJump) / float64(jump)
		stats.Scaled++
	}

	return core.ConnectionEdge{From: from, To: c.To, Strength: strength, JumpDistance: jump}, true
}
