package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingReconfigurer struct {
	mu       sync.Mutex
	partials []core.PartialConfiguration
	err      error
}

func (r *recordingReconfigurer) Reconfigure(_ context.Context, p core.PartialConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partials = append(r.partials, p)
	return r.err
}

func (r *recordingReconfigurer) calls() []core.PartialConfiguration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.PartialConfiguration(nil), r.partials...)
}

func TestWatcher_AppliesFileChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "conceptmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("margin: 0.1\n"), 0o600))

	target := &recordingReconfigurer{}
	w, err := NewWatcher(path, target, func(o *WatcherOptions) { o.Debounce = 20 * time.Millisecond })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx)) // idempotent

	require.NoError(t, os.WriteFile(path, []byte("margin: 0.2\n"), 0o600))

	require.Eventually(t, func() bool { return len(target.calls()) > 0 }, 5*time.Second, 10*time.Millisecond)
	w.Stop()
	w.Stop() // idempotent

	last := target.calls()[len(target.calls())-1]
	require.NotNil(t, last.Margin)
	assert.Equal(t, 0.2, *last.Margin)
	assert.GreaterOrEqual(t, w.Stats().Applied, 1)
}

func TestWatcher_ReportsRejections(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "conceptmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("margin: 0.1\n"), 0o600))

	target := &recordingReconfigurer{err: core.NewValidationError("Margin", "below minimum")}
	applied := make(chan error, 8)
	w, err := NewWatcher(path, target, func(o *WatcherOptions) {
		o.Debounce = 20 * time.Millisecond
		o.OnApply = func(err error) { applied <- err }
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("margin: 0.0001\n"), 0o600))

	select {
	case err := <-applied:
		assert.True(t, errors.Is(err, core.ErrConfigurationRejected))
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not apply the change")
	}
	assert.GreaterOrEqual(t, w.Stats().Rejected, 1)
}
