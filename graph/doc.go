// Package graph builds and prunes the per-call concept graph.
//
// A Builder asks an injected core.Scorer for candidate edges, normalizes them
// (strength clamped to [0,1], jump distance at least 1, self-loops dropped),
// scales down edges that jump further than the allowed distance and
// deduplicates (from, to) pairs keeping the strongest edge.
//
// A Filter then admits edges through a power-law capacity threshold:
//
//	exponent  = min(2 + 0.5*complexity(edges), 3)
//	capacity  = secondary^exponent * marginRate
//	threshold = 1 - capacity
//
// and keeps an edge when confidence(edge) > threshold. For a fixed edge set a
// larger capacity never retains fewer edges.
package graph
