package testutil

import (
	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/scorer"
)

// EdgeBuilder collects edges and candidates for graph and filter tests.
//
//	edges := NewEdgeBuilder().Edge("alpha", "beta", 0.9).Edge("alpha", "gamma", 0.3).Edges()
type EdgeBuilder struct {
	edges []core.ConnectionEdge
	jump  int
}

// NewEdgeBuilder creates a builder whose edges default to jump distance 1.
func NewEdgeBuilder() *EdgeBuilder { return &EdgeBuilder{jump: 1} }

// Jump sets the jump distance for subsequently added edges (chainable).
func (b *EdgeBuilder) Jump(j int) *EdgeBuilder { b.jump = j; return b }

// Edge appends an edge (chainable).
func (b *EdgeBuilder) Edge(from, to string, strength float64) *EdgeBuilder {
	b.edges = append(b.edges, core.ConnectionEdge{
		From:         core.Concept(from),
		To:           core.Concept(to),
		Strength:     strength,
		JumpDistance: b.jump,
	})
	return b
}

// Strengths appends edges a→b0, a→b1, ... with the given strengths (chainable).
func (b *EdgeBuilder) Strengths(values ...float64) *EdgeBuilder {
	for i, v := range values {
		b.Edge("anchor", "target"+string(rune('a'+i)), v)
	}
	return b
}

// Edges returns a copy of the collected edges.
func (b *EdgeBuilder) Edges() []core.ConnectionEdge {
	return append([]core.ConnectionEdge(nil), b.edges...)
}

// Scorer returns a table scorer that proposes the collected edges.
func (b *EdgeBuilder) Scorer() *scorer.Table {
	t := scorer.NewTable(nil)
	for _, e := range b.edges {
		t.Add(e.From, core.Candidate{To: e.To, Strength: e.Strength, JumpDistance: e.JumpDistance})
	}
	return t
}
