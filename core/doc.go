// Package core provides the foundational domain types and interfaces used by
// conceptmesh. It defines the core abstractions for:
//
//   - Configuration, partial updates and named branch profiles
//   - Cognitive state (stability / violation counters, lifecycle phase)
//   - Concepts, scored candidates and connection edges
//   - Processing results with their alignment report
//   - Pluggable collaborators (Scorer, HistoryStore)
//
// The package intentionally keeps implementation concerns (validation,
// orchestration, persistence) out of scope, exposing small interfaces so
// custom scorers and stores can be plugged in without dependency cycles.
package core
