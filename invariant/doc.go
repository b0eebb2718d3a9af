// Package invariant keeps the relationship primary + margin ≈ secondary intact.
//
// A Validator never fails. When a configuration drifts beyond its tolerance
// the secondary value is recomputed, the processing level is clamped to the
// primary value and a Report describes what happened so callers can record
// the drift as a violation.
package invariant
