package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/conceptmesh/core"
)

// CallbackType defines the specific lifecycle points where callbacks can be executed.
//
// Available callback types:
//   - BeforeProcess/AfterProcess: Around a complete Process call
//   - OnFallback: When a Process call produces a fallback result
//   - OnViolation: When a violation is recorded and the margin grows
//   - BeforeReconfigure/AfterReconfigure: Around a configuration commit
//
// Callbacks are executed synchronously. Errors from BeforeProcess turn the
// call into a fallback, errors from BeforeReconfigure reject the candidate
// configuration. Errors from the other types are logged and ignored.
// Callbacks must not call back into Reconfigure, Initialize or Shutdown.
type CallbackType string

const (
	// CallbackBeforeProcess is triggered after the engine accepted a call and
	// before the pipeline runs.
	CallbackBeforeProcess CallbackType = "before_process"

	// CallbackAfterProcess is triggered with every result, fallbacks included.
	// Use for persistence, metrics collection, or auditing.
	CallbackAfterProcess CallbackType = "after_process"

	// CallbackOnFallback is triggered when a call fails and a fallback result
	// is returned.
	CallbackOnFallback CallbackType = "on_fallback"

	// CallbackOnViolation is triggered after a violation was recorded.
	CallbackOnViolation CallbackType = "on_violation"

	// CallbackBeforeReconfigure is triggered with the validated candidate
	// configuration before it is committed.
	CallbackBeforeReconfigure CallbackType = "before_reconfigure"

	// CallbackAfterReconfigure is triggered after a configuration commit.
	CallbackAfterReconfigure CallbackType = "after_reconfigure"
)

// ErrCallbackPanic marks a callback that panicked. The manager recovers the
// panic and reports it as an error of the callback's type.
var ErrCallbackPanic = errors.New("callback panicked")

// CallbackContext provides context information for callback execution.
type CallbackContext struct {
	// CallbackType indicates which callback type triggered this execution.
	CallbackType CallbackType

	// Input is the text passed to Process. Empty for non-process callbacks.
	Input string

	// Result is the processing result (AfterProcess, OnFallback).
	Result *core.ProcessingResult

	// Config is the configuration the operation ran under, or the candidate
	// configuration for BeforeReconfigure.
	Config core.Configuration

	// Previous is the replaced configuration (reconfigure callbacks).
	Previous *core.Configuration

	// State is a snapshot of the cognitive state after the operation.
	State core.CognitiveState

	// Reason describes a violation (OnViolation).
	Reason string

	// Err is the failure behind a fallback (OnFallback).
	Err error

	// Metadata provides extensible storage for custom callback data.
	Metadata map[string]any
}

// Callback defines the interface for execution lifecycle hooks.
//
// Implementations should be fast (they run synchronously on the processing
// path) and safe for concurrent use, since Process calls run in parallel.
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic with the provided context.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation.
//
// Example:
//
//	cb := NewFunctionCallback(
//	    CallbackAfterProcess,
//	    func(ctx context.Context, cc *CallbackContext) error {
//	        log.Printf("branch=%s success=%t", cc.Result.Branch, cc.Result.Success)
//	        return nil
//	    },
//	)
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function with the provided context.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager orchestrates callback execution throughout the engine lifecycle.
//
// Callbacks are executed in registration order, and any callback returning
// an error stops execution of the remaining callbacks of that type. A
// panicking callback is recovered and reported as ErrCallbackPanic.
// Registration and execution are safe for concurrent use.
type CallbackManager struct {
	mu        sync.RWMutex
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates a new callback manager instance.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback to the manager for its type.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks executes all registered callbacks for the specified type
// and returns the first error.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	cm.mu.RLock()
	callbacks := cm.callbacks[callbackType]
	cm.mu.RUnlock()

	callbackCtx.CallbackType = callbackType
	for _, callback := range callbacks {
		if err := executeCallback(ctx, callback, callbackCtx); err != nil {
			return err
		}
	}

	return nil
}

// executeCallback runs one callback, converting a panic into an error
// wrapping ErrCallbackPanic.
func executeCallback(ctx context.Context, callback Callback, callbackCtx *CallbackContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrCallbackPanic, callbackCtx.CallbackType, r)
		}
	}()
	return callback.Execute(ctx, callbackCtx)
}

// LoggingCallback forwards lifecycle events to a logging function.
//
// Example:
//
//	callback := NewLoggingCallback(CallbackAfterProcess, func(msg string) {
//	    log.Printf("[ENGINE] %s", msg)
//	})
type LoggingCallback struct {
	callbackType CallbackType
	logger       func(message string)
}

// NewLoggingCallback creates a new logging callback.
func NewLoggingCallback(callbackType CallbackType, logger func(message string)) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute logs the event with context information. Without a logger function
// the callback silently succeeds.
func (c *LoggingCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if c.logger == nil {
		return nil
	}
	message := fmt.Sprintf("[%s] stability=%d violations=%d margin=%g",
		c.callbackType, callbackCtx.State.StabilityCount, callbackCtx.State.ViolationCount, callbackCtx.Config.Margin)
	if r := callbackCtx.Result; r != nil {
		message += fmt.Sprintf(" branch=%s success=%t retained=%d", r.Branch, r.Success, r.EdgesRetained)
	}
	if callbackCtx.Reason != "" {
		message += " reason=" + callbackCtx.Reason
	}
	c.logger(message)
	return nil
}

// ConfigValidationCallback enforces additional rules on candidate
// configurations. Returning an error rejects the reconfiguration.
//
// Example:
//
//	callback := NewConfigValidationCallback(func(candidate core.Configuration) error {
//	    if candidate.Strict && candidate.MarginRate > 0.1 {
//	        return errors.New("strict mode requires a margin rate <= 0.1")
//	    }
//	    return nil
//	})
type ConfigValidationCallback struct {
	validator func(candidate core.Configuration) error
}

// NewConfigValidationCallback creates a new configuration validation callback.
func NewConfigValidationCallback(validator func(candidate core.Configuration) error) *ConfigValidationCallback {
	return &ConfigValidationCallback{validator: validator}
}

// Type returns the callback type (always CallbackBeforeReconfigure).
func (c *ConfigValidationCallback) Type() CallbackType {
	return CallbackBeforeReconfigure
}

// Execute validates the candidate configuration.
func (c *ConfigValidationCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if c.validator == nil {
		return nil
	}
	return c.validator(callbackCtx.Config)
}

// HistoryCallback records every processing result in a HistoryStore.
type HistoryCallback struct {
	store core.HistoryStore
}

// NewHistoryCallback creates an AfterProcess callback persisting results to store.
func NewHistoryCallback(store core.HistoryStore) *HistoryCallback {
	return &HistoryCallback{store: store}
}

// Type returns the callback type (always CallbackAfterProcess).
func (c *HistoryCallback) Type() CallbackType {
	return CallbackAfterProcess
}

// Execute records the result.
func (c *HistoryCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	if callbackCtx.Result == nil {
		return nil
	}
	if err := c.store.Record(ctx, *callbackCtx.Result); err != nil {
		return fmt.Errorf("failed to record result %s: %w", callbackCtx.Result.ID, err)
	}
	return nil
}
