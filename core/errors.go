package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned when an operation needs an initialized engine.
	ErrNotInitialized = errors.New("engine not initialized")
	// ErrConfigurationRejected marks a reconfiguration that would violate hard bounds.
	ErrConfigurationRejected = errors.New("configuration rejected")
	// ErrInvariantUnrecoverable marks a configuration whose invariant cannot be restored.
	ErrInvariantUnrecoverable = errors.New("invariant unrecoverable")
	// ErrNoConcepts marks input that produced no concepts.
	ErrNoConcepts = errors.New("no concepts extracted")
	// ErrScorer wraps failures reported by a Scorer.
	ErrScorer = errors.New("scorer failed")
	// ErrComposer wraps failures while composing a result.
	ErrComposer = errors.New("composer failed")
)

// ValidationError describes why a configuration was rejected. It unwraps to
// ErrConfigurationRejected, and to Cause when one is set.
type ValidationError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrConfigurationRejected, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfigurationRejected, e.Field, e.Reason)
}

// Unwrap supports errors.Is against ErrConfigurationRejected and the cause.
func (e *ValidationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrConfigurationRejected, e.Cause}
	}
	return []error{ErrConfigurationRejected}
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
