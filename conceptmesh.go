// Package conceptmesh provides a high-level façade over the processing
// Engine and its supporting services (scorers, history stores, metrics,
// configuration watching and logging). Most applications interact with this
// package by:
//  1. Creating a ConceptMesh via New(), optionally overriding the defaults
//  2. Calling Start to initialize the engine (and the config watcher)
//  3. Processing text with Process or ProcessBatch
//  4. Calling Close when done
//
// The façade delegates orchestration to engine.Engine while keeping setup
// concise. All defaults are safe for local development and testing;
// production deployments typically supply a model-backed scorer, a durable
// history store and a structured logger.
package conceptmesh

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/conceptmesh/config"
	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/engine"
	"github.com/hupe1980/conceptmesh/history"
	"github.com/hupe1980/conceptmesh/logging"
	"github.com/hupe1980/conceptmesh/metrics"
	"github.com/hupe1980/conceptmesh/model"
	"github.com/hupe1980/conceptmesh/scorer"
	"github.com/prometheus/client_golang/prometheus"
)

// Options configures the ConceptMesh instance.
type Options struct {
	// Config is the initial configuration. Ignored when ConfigPath is set.
	Config core.Configuration

	// ConfigPath loads the initial configuration from a YAML file.
	ConfigPath string

	// WatchConfig re-applies ConfigPath through Reconfigure whenever the
	// file changes.
	WatchConfig bool

	// Scorer proposes candidate edges. When nil and Model is set, a cached
	// model scorer is used; otherwise the proximity heuristic.
	Scorer core.Scorer

	// Model backs the default scorer when Scorer is nil.
	Model model.Model

	// HistoryStore receives every result (defaults to an in-memory store).
	HistoryStore core.HistoryStore

	// Registerer enables Prometheus metrics when set.
	Registerer prometheus.Registerer

	// MaxConcurrentProcesses limits ProcessBatch parallelism.
	MaxConcurrentProcesses int

	// Callbacks are registered on the engine in addition to the built-in ones.
	Callbacks []engine.Callback

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// ConceptMesh is the high-level façade aggregating the engine and services.
type ConceptMesh struct {
	opts    Options
	engine  *engine.Engine
	metrics *metrics.Collector

	mu      sync.Mutex
	watcher *config.Watcher
}

// New creates a new ConceptMesh. Any unset service is initialized with a
// default implementation. New fails only when ConfigPath cannot be loaded.
func New(optFns ...func(o *Options)) (*ConceptMesh, error) {
	opts := Options{
		Config:                 config.Default(),
		HistoryStore:           history.NewInMemoryStore(),
		MaxConcurrentProcesses: engine.DefaultMaxConcurrentProcesses,
		Logger:                 logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	if opts.ConfigPath != "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		opts.Config = cfg
	}

	if opts.Scorer == nil {
		if opts.Model != nil {
			opts.Scorer = scorer.NewCaching(scorer.NewModel(opts.Model, func(o *scorer.ModelOptions) {
				o.Logger = opts.Logger
			}))
		} else {
			opts.Scorer = scorer.NewProximity()
		}
	}

	callbacks := append([]engine.Callback{}, opts.Callbacks...)
	if opts.HistoryStore != nil {
		callbacks = append(callbacks, engine.NewHistoryCallback(opts.HistoryStore))
	}

	var collector *metrics.Collector
	if opts.Registerer != nil {
		collector = metrics.New(opts.Registerer)
		callbacks = append(callbacks, collector.Callbacks()...)
	}

	e := engine.New(func(o *engine.Options) {
		o.Config = opts.Config
		o.Scorer = opts.Scorer
		o.Callbacks = callbacks
		o.Logger = opts.Logger
		o.MaxConcurrentProcesses = opts.MaxConcurrentProcesses
	})

	return &ConceptMesh{opts: opts, engine: e, metrics: collector}, nil
}

// Start initializes the engine and, when configured, starts watching the
// configuration file. Starting twice is a no-op.
func (m *ConceptMesh) Start(ctx context.Context) error {
	if err := m.engine.Initialize(ctx); err != nil {
		return err
	}
	if !m.opts.WatchConfig || m.opts.ConfigPath == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watcher != nil {
		return nil
	}
	w, err := config.NewWatcher(m.opts.ConfigPath, m.engine, func(o *config.WatcherOptions) {
		o.Logger = m.opts.Logger
	})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}
	m.watcher = w
	return nil
}

// Process runs the pipeline for text. It always returns a well-formed result.
func (m *ConceptMesh) Process(ctx context.Context, text string, optFns ...func(o *engine.ProcessOptions)) core.ProcessingResult {
	return m.engine.Process(ctx, text, optFns...)
}

// ProcessBatch processes texts concurrently, returning results in input order.
func (m *ConceptMesh) ProcessBatch(ctx context.Context, texts []string, optFns ...func(o *engine.ProcessOptions)) []core.ProcessingResult {
	return m.engine.ProcessBatch(ctx, texts, optFns...)
}

// Reconfigure applies a partial configuration update.
func (m *ConceptMesh) Reconfigure(ctx context.Context, partial core.PartialConfiguration) error {
	return m.engine.Reconfigure(ctx, partial)
}

// RecordViolation forwards an external violation signal to the engine.
func (m *ConceptMesh) RecordViolation(ctx context.Context, reason string) error {
	return m.engine.RecordViolation(ctx, reason)
}

// State returns a snapshot of the cognitive state.
func (m *ConceptMesh) State() core.CognitiveState { return m.engine.State() }

// Configuration returns a snapshot of the active configuration.
func (m *ConceptMesh) Configuration() core.Configuration { return m.engine.Configuration() }

// History returns the configured history store, or nil.
func (m *ConceptMesh) History() core.HistoryStore { return m.opts.HistoryStore }

// Engine exposes the underlying engine.
func (m *ConceptMesh) Engine() *engine.Engine { return m.engine }

// Close stops the watcher and shuts the engine down. Stores implementing
// io.Closer-like Close() error are closed as well.
func (m *ConceptMesh) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.watcher != nil {
		m.watcher.Stop()
		m.watcher = nil
	}
	m.mu.Unlock()

	var errs []error
	if err := m.engine.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if c, ok := m.opts.HistoryStore.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close history store: %w", err))
		}
	}
	return errors.Join(errs...)
}
