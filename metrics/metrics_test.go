package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/engine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObservesEngine(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	c := New(reg)

	e := engine.New(func(o *engine.Options) { o.Callbacks = c.Callbacks() })
	require.NoError(t, e.Initialize(ctx))

	require.True(t, e.Process(ctx, "university research methods").Success)
	require.False(t, e.Process(ctx, "").Success)
	require.NoError(t, e.RecordViolation(ctx, "external"))
	require.NoError(t, e.Reconfigure(ctx, core.PartialConfiguration{Margin: core.Ptr(0.2)}))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.processed.WithLabelValues("formal", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.processed.WithLabelValues("personal", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fallbacks.WithLabelValues("no_concepts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.violations))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.reconfigures))
	assert.InDelta(t, 0.2, testutil.ToFloat64(c.margin), 1e-9)
	assert.InDelta(t, 3.09, testutil.ToFloat64(c.secondary), 1e-9)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.stability))

	assert.Equal(t, 1, testutil.CollectAndCount(c.retained))
	n, err := testutil.GatherAndCount(reg, "conceptmesh_engine_process_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollector_GaugesFollowCommittedMargin(t *testing.T) {
	ctx := context.Background()
	c := New(prometheus.NewRegistry())

	e := engine.New(func(o *engine.Options) { o.Callbacks = c.Callbacks() })
	require.NoError(t, e.Initialize(ctx))
	initial := e.Configuration().Margin

	for i := range 5 {
		require.True(t, e.Process(ctx, "university research methods").Success)

		cfg := e.Configuration()
		assert.InDelta(t, cfg.Margin, testutil.ToFloat64(c.margin), 1e-12, "call %d", i)
		assert.InDelta(t, cfg.Secondary, testutil.ToFloat64(c.secondary), 1e-12, "call %d", i)
		assert.Equal(t, float64(i+1), testutil.ToFloat64(c.stability), "call %d", i)
	}
	assert.Less(t, e.Configuration().Margin, initial)
}

func TestNew_RejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "other"},
		{core.ErrNotInitialized, "not_initialized"},
		{fmt.Errorf("wrap: %w", core.ErrNoConcepts), "no_concepts"},
		{fmt.Errorf("%w: concept %q: %w", core.ErrScorer, "alpha", errors.New("boom")), "scorer"},
		{core.ErrComposer, "composer"},
		{context.DeadlineExceeded, "canceled"},
		{errors.New("recovered panic: x"), "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Reason(tt.err), "%v", tt.err)
	}
}
