package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/logging"
)

// Reconfigurer applies a partial configuration update. The engine implements it.
type Reconfigurer interface {
	Reconfigure(ctx context.Context, partial core.PartialConfiguration) error
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Debounce is how long a file must stay quiet before it is re-applied.
	Debounce time.Duration
	// OnApply, when set, is called after every apply attempt with its error.
	OnApply func(err error)
	Logger  logging.Logger
}

// WatcherStats tracks watcher activity.
type WatcherStats struct {
	Events        int
	Applied       int
	Rejected      int
	Errors        int
	LastEventTime time.Time
}

// Watcher re-applies a YAML configuration file through a Reconfigurer each
// time the file changes. The parent directory is watched so editors that
// replace files atomically are handled.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	target   Reconfigurer
	path     string
	opts     WatcherOptions
	pending  time.Time
	stats    WatcherStats
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stopOnce sync.Once
}

// NewWatcher creates a watcher for the YAML file at path.
func NewWatcher(path string, target Reconfigurer, optFns ...func(o *WatcherOptions)) (*Watcher, error) {
	opts := WatcherOptions{Debounce: 200 * time.Millisecond}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		watcher: fw,
		target:  target,
		path:    abs,
		opts:    opts,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching. It is non-blocking and a no-op when already running.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.opts.Logger.Info("config.watcher started path=%s", w.path)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		running := w.running
		w.running = false
		w.mu.Unlock()

		if running {
			close(w.stopCh)
			<-w.doneCh
		}
		if err := w.watcher.Close(); err != nil {
			w.opts.Logger.Warn("config.watcher close failed: %v", err)
		}
	})
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.opts.Debounce / 2
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.opts.Logger.Error("config.watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.applyIfSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	now := time.Now()
	w.mu.Lock()
	w.pending = now
	w.stats.Events++
	w.stats.LastEventTime = now
	w.mu.Unlock()
}

func (w *Watcher) applyIfSettled(ctx context.Context) {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.opts.Debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	err := w.apply(ctx)

	w.mu.Lock()
	if err != nil {
		w.stats.Rejected++
	} else {
		w.stats.Applied++
	}
	w.mu.Unlock()

	if w.opts.OnApply != nil {
		w.opts.OnApply(err)
	}
}

func (w *Watcher) apply(ctx context.Context) error {
	partial, err := LoadPartial(w.path)
	if err != nil {
		w.opts.Logger.Warn("config.watcher load failed path=%s: %v", w.path, err)
		return err
	}
	if partial.IsEmpty() {
		return nil
	}
	if err := w.target.Reconfigure(ctx, partial); err != nil {
		w.opts.Logger.Warn("config.watcher reconfigure rejected path=%s: %v", w.path, err)
		return err
	}
	w.opts.Logger.Info("config.watcher applied path=%s", w.path)
	return nil
}
