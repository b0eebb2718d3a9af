package core

import (
	"context"
	"time"
)

// Concept is an opaque token extracted from input text. Concepts have no
// identity beyond equality.
type Concept string

// String implements fmt.Stringer.
func (c Concept) String() string { return string(c) }

// Candidate is a scorer's proposal for an edge starting at the scored concept.
type Candidate struct {
	To           Concept `json:"to"`
	Strength     float64 `json:"strength"`
	JumpDistance int     `json:"jump_distance"`
}

// ConnectionEdge is a scored, distance-weighted link between two concepts.
// Edges are created per call and never shared between calls.
type ConnectionEdge struct {
	From         Concept   `json:"from"`
	To           Concept   `json:"to"`
	Strength     float64   `json:"strength"`
	JumpDistance int       `json:"jump_distance"`
	Timestamp    time.Time `json:"timestamp"`
}

// EdgeKey identifies an edge by its endpoints.
type EdgeKey struct {
	From Concept
	To   Concept
}

// Key returns the edge's (From, To) pair.
func (e ConnectionEdge) Key() EdgeKey { return EdgeKey{From: e.From, To: e.To} }

// Scorer proposes candidate edges for a concept. concepts is the full,
// ordered concept list of the current call and includes from.
// Implementations must be safe for concurrent use.
type Scorer interface {
	Score(ctx context.Context, from Concept, concepts []Concept) ([]Candidate, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, from Concept, concepts []Concept) ([]Candidate, error)

// Score implements Scorer.
func (f ScorerFunc) Score(ctx context.Context, from Concept, concepts []Concept) ([]Candidate, error) {
	return f(ctx, from, concepts)
}
