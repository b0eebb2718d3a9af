package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/conceptmesh/classify"
	"github.com/hupe1980/conceptmesh/compose"
	"github.com/hupe1980/conceptmesh/config"
	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/extract"
	"github.com/hupe1980/conceptmesh/graph"
	"github.com/hupe1980/conceptmesh/invariant"
	"github.com/hupe1980/conceptmesh/logging"
	"github.com/hupe1980/conceptmesh/margin"
	"github.com/hupe1980/conceptmesh/scorer"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrentProcesses bounds ProcessBatch fan-out.
const DefaultMaxConcurrentProcesses = 10

// Options configures an Engine instance using the functional options pattern.
//
// Every collaborator has a default so New() alone yields a working engine:
//
//	e := engine.New(func(o *engine.Options) {
//	    o.Scorer = scorer.NewCaching(scorer.NewModel(m))
//	    o.Logger = logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	})
type Options struct {
	// Config is the initial configuration. Defaults to config.Default().
	Config core.Configuration

	// Scorer proposes candidate edges. Defaults to a proximity scorer.
	Scorer core.Scorer

	// Classifier labels the input. Defaults to classify.New().
	Classifier *classify.Classifier

	// Composer renders results. Defaults to compose.New().
	Composer *compose.Composer

	// Complexity and Confidence customize the capacity filter. Nil keeps the
	// graph package defaults.
	Complexity graph.ComplexityFunc
	Confidence graph.ConfidenceFunc

	// Callbacks are registered on construction.
	Callbacks []Callback

	// Logger provides structured logging. Defaults to a NoOp logger.
	Logger logging.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	// MaxConcurrentProcesses limits ProcessBatch parallelism. Values below 1
	// mean unlimited.
	MaxConcurrentProcesses int
}

// ProcessOptions configures a single Process call.
type ProcessOptions struct {
	// Branch names a profile that wins over the classifier suggestion when it
	// exists. Unknown names are logged and ignored.
	Branch string
}

// WithBranch selects a branch profile for one call.
func WithBranch(name string) func(o *ProcessOptions) {
	return func(o *ProcessOptions) { o.Branch = name }
}

// Engine orchestrates invariant repair, concept extraction, graph building,
// capacity filtering, classification and composition for each call, and
// owns the configuration and the running cognitive state.
//
// Concurrency Model:
//   - Process holds the lifecycle read lock for its whole run, so any number
//     of calls proceed in parallel.
//   - Reconfigure, Initialize and Shutdown take the write lock and therefore
//     wait for in-flight calls. New calls queue behind a waiting writer.
//   - Counter updates and adaptive margin commits are serialized by stateMu.
//   - The configuration lives in a copy-on-write store, so readers never see
//     a partially applied update.
//   - Graphs are call-local and need no locking.
type Engine struct {
	lifecycle sync.RWMutex
	stateMu   sync.Mutex

	store      *config.Store
	validator  *invariant.Validator
	builder    *graph.Builder
	filter     *graph.Filter
	classifier *classify.Classifier
	selector   *compose.Selector
	composer   *compose.Composer
	callbacks  *CallbackManager
	logger     logging.Logger
	clock      func() time.Time

	maxConcurrent int

	initialized   atomic.Bool
	reconfiguring atomic.Bool
	inFlight      atomic.Int64
	processed     atomic.Int64

	// guarded by stateMu
	counters     margin.Counters
	lastSync     time.Time
	activeBranch string
}

// New creates a new Engine. The engine must be initialized before use.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:                 config.Default(),
		Logger:                 logging.NoOpLogger{},
		Clock:                  time.Now,
		MaxConcurrentProcesses: DefaultMaxConcurrentProcesses,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	logger := logging.OrNoOp(opts.Logger)
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Scorer == nil {
		opts.Scorer = scorer.NewProximity()
	}
	if opts.Classifier == nil {
		opts.Classifier = classify.New()
	}
	if opts.Composer == nil {
		opts.Composer = compose.New()
	}

	callbacks := NewCallbackManager()
	for _, cb := range opts.Callbacks {
		callbacks.RegisterCallback(cb)
	}

	return &Engine{
		store:     config.NewStore(opts.Config),
		validator: invariant.New(func(o *invariant.Options) { o.Logger = logger }),
		builder: graph.NewBuilder(opts.Scorer, func(o *graph.BuilderOptions) {
			o.Clock = opts.Clock
			o.Logger = logger
		}),
		filter: graph.NewFilter(func(o *graph.FilterOptions) {
			o.Complexity = opts.Complexity
			o.Confidence = opts.Confidence
		}),
		classifier:    opts.Classifier,
		selector:      compose.NewSelector(logger),
		composer:      opts.Composer,
		callbacks:     callbacks,
		logger:        logger,
		clock:         opts.Clock,
		maxConcurrent: opts.MaxConcurrentProcesses,
	}
}

// RegisterCallback adds a lifecycle callback.
func (e *Engine) RegisterCallback(cb Callback) {
	e.callbacks.RegisterCallback(cb)
}

// Initialize validates the initial configuration, repairs invariant drift
// and moves the engine to Ready. A second call is a no-op.
func (e *Engine) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.initialized.Load() {
		return nil
	}

	cfg, report := e.validator.Validate(e.store.Get())
	if err := config.Validate(cfg); err != nil {
		e.logger.Error("engine.initialize rejected configuration: %v", err)
		return err
	}
	e.store.Set(cfg)

	e.stateMu.Lock()
	e.lastSync = e.clock()
	e.activeBranch = cfg.DefaultBranch
	e.stateMu.Unlock()

	e.initialized.Store(true)
	e.logger.Info("engine.initialize ready primary=%g margin=%g secondary=%g corrected=%t",
		cfg.Primary, cfg.Margin, cfg.Secondary, report.Corrected)
	return nil
}

// Shutdown waits for in-flight calls and returns the engine to
// Uninitialized. Counters are reset; the configuration is kept.
func (e *Engine) Shutdown(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if !e.initialized.Swap(false) {
		return nil
	}

	e.stateMu.Lock()
	e.counters = margin.Counters{}
	e.activeBranch = ""
	e.stateMu.Unlock()

	e.logger.Info("engine.shutdown processed=%d", e.processed.Load())
	return nil
}

// Process runs the pipeline for text and always returns a well-formed
// result. Failures, panics included, produce a fallback with Success=false.
func (e *Engine) Process(ctx context.Context, text string, optFns ...func(o *ProcessOptions)) core.ProcessingResult {
	var po ProcessOptions
	for _, fn := range optFns {
		fn(&po)
	}
	start := e.clock()

	e.lifecycle.RLock()
	defer e.lifecycle.RUnlock()

	cfg := e.store.Get()
	if !e.initialized.Load() {
		return e.fallback(ctx, text, cfg, po.Branch, start, core.ErrNotInitialized)
	}

	e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	e.processed.Add(1)

	if err := e.callbacks.ExecuteCallbacks(ctx, CallbackBeforeProcess, &CallbackContext{Input: text, Config: cfg}); err != nil {
		return e.fallback(ctx, text, cfg, po.Branch, start, fmt.Errorf("before_process callback: %w", err))
	}

	cfg, violated := e.repairDrift(ctx, cfg)

	res, profile, err := e.runRecovered(ctx, text, cfg, po)
	if err != nil {
		return e.fallback(ctx, text, cfg, po.Branch, start, err)
	}

	res.ID = uuid.NewString()
	res.Timestamp = start
	res.Duration = e.clock().Sub(start)

	committed := e.commitSuccess(profile.Name, violated)

	e.logProcess(res, nil)
	e.afterProcess(ctx, text, committed, &res)
	return res
}

// ProcessBatch processes texts concurrently, bounded by
// MaxConcurrentProcesses. Results are returned in input order.
func (e *Engine) ProcessBatch(ctx context.Context, texts []string, optFns ...func(o *ProcessOptions)) []core.ProcessingResult {
	results := make([]core.ProcessingResult, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	if e.maxConcurrent > 0 {
		g.SetLimit(e.maxConcurrent)
	}
	for i, text := range texts {
		g.Go(func() error {
			results[i] = e.Process(gctx, text, optFns...)
			return nil
		})
	}
	_ = g.Wait() // Process never fails

	return results
}

// Reconfigure merges partial into the active configuration, repairs the
// invariant, validates hard bounds and commits atomically. It waits for
// in-flight Process calls. On rejection the active configuration is left
// untouched and a *core.ValidationError is returned.
func (e *Engine) Reconfigure(ctx context.Context, partial core.PartialConfiguration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if !e.initialized.Load() {
		return core.ErrNotInitialized
	}

	e.reconfiguring.Store(true)
	defer e.reconfiguring.Store(false)

	start := time.Now()
	err := e.reconfigure(ctx, partial)

	if sl, ok := e.logger.(*logging.StructuredLogger); ok {
		sl.LogReconfigure(time.Since(start), err)
	} else if err != nil {
		e.logger.Warn("engine.reconfigure rejected: %v", err)
	} else {
		e.logger.Info("engine.reconfigure committed")
	}
	return err
}

func (e *Engine) reconfigure(ctx context.Context, partial core.PartialConfiguration) error {
	previous := e.store.Get()

	candidate, report := e.validator.Validate(config.Merge(previous, partial))
	if err := config.Validate(candidate); err != nil {
		return err
	}
	if candidate.EnforceInvariant && !invariant.Holds(candidate) {
		return &core.ValidationError{
			Field:  "Secondary",
			Reason: fmt.Sprintf("invariant cannot be restored (drift %g)", report.Drift),
			Cause:  core.ErrInvariantUnrecoverable,
		}
	}

	if err := e.callbacks.ExecuteCallbacks(ctx, CallbackBeforeReconfigure, &CallbackContext{
		Config:   candidate.Clone(),
		Previous: &previous,
		State:    e.State(),
	}); err != nil {
		return &core.ValidationError{Reason: "rejected by validation callback", Cause: err}
	}

	e.store.Set(candidate)

	e.stateMu.Lock()
	e.lastSync = e.clock()
	if _, ok := candidate.Branches[e.activeBranch]; !ok {
		e.activeBranch = candidate.DefaultBranch
	}
	e.stateMu.Unlock()

	if err := e.callbacks.ExecuteCallbacks(context.WithoutCancel(ctx), CallbackAfterReconfigure, &CallbackContext{
		Config:   candidate.Clone(),
		Previous: &previous,
		State:    e.State(),
	}); err != nil {
		e.logger.Warn("engine.reconfigure after_reconfigure callback failed: %v", err)
	}
	return nil
}

// RecordViolation records an external violation signal: the violation
// counter grows, stability resets and the margin grows.
func (e *Engine) RecordViolation(ctx context.Context, reason string) error {
	e.lifecycle.RLock()
	defer e.lifecycle.RUnlock()

	if !e.initialized.Load() {
		return core.ErrNotInitialized
	}
	e.recordViolation(ctx, reason)
	return nil
}

// State returns a snapshot of the cognitive state.
func (e *Engine) State() core.CognitiveState {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.stateLocked()
}

// Configuration returns a snapshot of the active configuration.
func (e *Engine) Configuration() core.Configuration {
	return e.store.Get()
}

func (e *Engine) stateLocked() core.CognitiveState {
	phase := core.PhaseReady
	switch {
	case !e.initialized.Load():
		phase = core.PhaseUninitialized
	case e.reconfiguring.Load():
		phase = core.PhaseReconfiguring
	case e.inFlight.Load() > 0:
		phase = core.PhaseProcessing
	}
	return core.CognitiveState{
		StabilityCount: e.counters.Stability,
		ViolationCount: e.counters.Violations,
		LastSyncTime:   e.lastSync,
		ActiveBranch:   e.activeBranch,
		Phase:          phase,
		Processed:      e.processed.Load(),
		InFlight:       e.inFlight.Load(),
	}
}

// runRecovered runs the pipeline and converts a panic into an error.
func (e *Engine) runRecovered(ctx context.Context, text string, cfg core.Configuration, po ProcessOptions) (res core.ProcessingResult, profile core.BranchProfile, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic: %v", r)
			if sl, ok := e.logger.(*logging.StructuredLogger); ok {
				sl.ErrorWithStack(err, "engine.process panic")
			} else {
				e.logger.Error("engine.process panic: %v", r)
			}
		}
	}()
	return e.run(ctx, text, cfg, po)
}

// run executes the pipeline stages for one call.
func (e *Engine) run(ctx context.Context, text string, cfg core.Configuration, po ProcessOptions) (core.ProcessingResult, core.BranchProfile, error) {
	ex := extract.New(func(o *extract.Options) { o.MinLength = cfg.MinConceptLength })
	concepts := extract.Unique(ex.Concepts(text), cfg.MaxConcepts)
	if len(concepts) == 0 {
		return core.ProcessingResult{}, core.BranchProfile{}, core.ErrNoConcepts
	}

	classification := e.classifier.Classify(text)
	profile, source := e.selector.Select(cfg, po.Branch, classification.SuggestedBranch)
	e.logger.Debug("engine.process branch=%s source=%s category=%s formal=%t",
		profile.Name, source, classification.Category, classification.IsFormal)

	maxJump := cfg.MaxJumpDistance
	if profile.MaxJumpDistance > 0 {
		maxJump = profile.MaxJumpDistance
	}
	edges, _, err := e.builder.Build(ctx, concepts, maxJump)
	if err != nil {
		return core.ProcessingResult{}, profile, err
	}
	if err := ctx.Err(); err != nil {
		return core.ProcessingResult{}, profile, err
	}

	secondary := cfg.Secondary
	if profile.MarginOverride > 0 {
		secondary = cfg.Primary + profile.MarginOverride
	}
	retained, report := e.filter.Filter(edges, secondary, cfg.MarginRate)
	if err := ctx.Err(); err != nil {
		return core.ProcessingResult{}, profile, err
	}

	res, err := e.composer.Compose(compose.Input{
		Config:   cfg,
		Profile:  profile,
		Concepts: concepts,
		Built:    len(edges),
		Retained: retained,
		Filter:   report,
	})
	if err != nil {
		return core.ProcessingResult{}, profile, err
	}
	return res, profile, nil
}

// repairDrift validates the configuration at the top of a call. Drift is
// corrected under stateMu; only the call that commits the correction
// records the violation.
func (e *Engine) repairDrift(ctx context.Context, cfg core.Configuration) (core.Configuration, bool) {
	if _, report := e.validator.Validate(cfg); !report.Corrected {
		return cfg, false
	}

	e.stateMu.Lock()
	current, report := e.validator.Validate(e.store.Get())
	if report.Corrected {
		e.store.Set(current)
		if sl, ok := e.logger.(*logging.StructuredLogger); ok {
			sl.LogDrift(report.Drift, report.Tolerance, true)
		}
	}
	e.stateMu.Unlock()

	if !report.Corrected {
		return current, false
	}
	e.recordViolation(ctx, fmt.Sprintf("invariant drift %g exceeded tolerance %g", report.Drift, report.Tolerance))
	return e.store.Get(), true
}

func (e *Engine) recordViolation(ctx context.Context, reason string) {
	e.stateMu.Lock()
	cfg := e.store.Get()
	ctrl := margin.New(cfg.Adaptation)
	next := ctrl.OnViolation(&e.counters, cfg.Margin, cfg.Primary)
	cfg = e.commitMarginLocked(cfg, next, "violation")
	state := e.stateLocked()
	e.stateMu.Unlock()

	e.logger.Warn("engine.violation reason=%q violations=%d margin=%g", reason, state.ViolationCount, cfg.Margin)
	if err := e.callbacks.ExecuteCallbacks(context.WithoutCancel(ctx), CallbackOnViolation, &CallbackContext{
		Config: cfg,
		State:  state,
		Reason: reason,
	}); err != nil {
		e.logger.Warn("engine.violation callback failed: %v", err)
	}
}

// commitSuccess records a successful call and returns the configuration
// after the margin commit.
func (e *Engine) commitSuccess(branch string, violated bool) core.Configuration {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()

	e.lastSync = e.clock()
	e.activeBranch = branch
	cfg := e.store.Get()
	if violated {
		return cfg
	}
	ctrl := margin.New(cfg.Adaptation)
	next := ctrl.OnSuccess(&e.counters, cfg.Margin, cfg.Primary)
	return e.commitMarginLocked(cfg, next, "stability")
}

// commitMarginLocked stores cfg with the new margin and a recomputed
// secondary. Callers hold stateMu.
func (e *Engine) commitMarginLocked(cfg core.Configuration, next float64, reason string) core.Configuration {
	if next == cfg.Margin {
		return cfg
	}
	prev := cfg.Margin
	cfg.Margin = next
	cfg.Secondary = cfg.Primary + cfg.Margin
	e.store.Set(cfg)

	if sl, ok := e.logger.(*logging.StructuredLogger); ok {
		sl.LogMarginAdjustment(reason, prev, next)
	}
	return cfg
}

func (e *Engine) fallback(ctx context.Context, text string, cfg core.Configuration, override string, start time.Time, reason error) core.ProcessingResult {
	branch := cfg.DefaultBranch
	if _, ok := cfg.Branch(override); ok {
		branch = override
	}

	res := compose.Fallback(cfg, branch, reason)
	res.ID = uuid.NewString()
	res.Timestamp = start
	res.Duration = e.clock().Sub(start)

	e.logProcess(res, reason)

	cbCtx := context.WithoutCancel(ctx)
	if err := e.callbacks.ExecuteCallbacks(cbCtx, CallbackOnFallback, &CallbackContext{
		Input:  text,
		Result: &res,
		Config: cfg,
		State:  e.State(),
		Err:    reason,
	}); err != nil {
		e.logger.Warn("engine.fallback callback failed: %v", err)
	}
	e.afterProcess(ctx, text, cfg, &res)
	return res
}

func (e *Engine) afterProcess(ctx context.Context, text string, cfg core.Configuration, res *core.ProcessingResult) {
	if err := e.callbacks.ExecuteCallbacks(context.WithoutCancel(ctx), CallbackAfterProcess, &CallbackContext{
		Input:  text,
		Result: res,
		Config: cfg,
		State:  e.State(),
	}); err != nil {
		e.logger.Warn("engine.process after_process callback failed: %v", err)
	}
}

func (e *Engine) logProcess(res core.ProcessingResult, err error) {
	if sl, ok := e.logger.(*logging.StructuredLogger); ok {
		sl.LogProcess(res.Branch, len(res.Concepts), res.EdgesRetained, res.Duration, res.Success, err)
		return
	}
	if err != nil && !errors.Is(err, core.ErrNoConcepts) {
		e.logger.Warn("engine.process fallback branch=%s: %v", res.Branch, err)
		return
	}
	e.logger.Debug("engine.process branch=%s concepts=%d retained=%d success=%t duration=%s",
		res.Branch, len(res.Concepts), res.EdgesRetained, res.Success, res.Duration)
}
