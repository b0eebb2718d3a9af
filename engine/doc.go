// Package engine implements the orchestration layer of ConceptMesh.
//
// The Engine owns the configuration and the cognitive state and runs every
// Process call through a fixed pipeline:
//
//	invariant check → extract → classify → select branch → build → filter → compose
//
// # Core Responsibilities
//
// Configuration:
//   - Copy-on-write configuration store with atomic commits
//   - Partial updates through Reconfigure (merge, repair, validate, commit)
//   - Invariant repair of secondary = primary + margin before every call
//
// Adaptation:
//   - Successful calls contract the margin and grow the stability counter
//   - Violations grow the margin, reset stability and count toward recovery
//   - Failed calls leave the margin untouched
//
// Robustness:
//   - Process never returns an error; failures become fallback results
//   - Panics inside the pipeline are recovered into fallbacks
//   - Panicking callbacks are reported as ErrCallbackPanic and never escape
//   - Context cancellation is checked between pipeline stages
//
// # Lifecycle
//
//	Uninitialized ──Initialize──▶ Ready ⇄ Processing
//	                                │
//	                                └──Reconfigure──▶ Reconfiguring ──▶ Ready
//
// Processing and Reconfiguring are mutually exclusive. Reconfigure waits for
// in-flight calls and new calls wait for the commit.
//
// # Usage
//
//	e := engine.New(func(o *engine.Options) {
//	    o.Logger = logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	})
//	if err := e.Initialize(ctx); err != nil {
//	    return err
//	}
//	res := e.Process(ctx, "Questions about university research methods")
//
// # Callbacks
//
// Lifecycle hooks (see CallbackType) observe calls, fallbacks, violations
// and reconfigurations. HistoryCallback persists results to a
// core.HistoryStore and ConfigValidationCallback adds custom checks to
// Reconfigure.
package engine
