package conceptmesh

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/engine"
	"github.com/hupe1980/conceptmesh/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestConceptMesh_Defaults(t *testing.T) {
	ctx := context.Background()
	m, err := New()
	require.NoError(t, err)
	require.NoError(t, m.Start(ctx))
	require.NoError(t, m.Start(ctx))

	res := m.Process(ctx, "Questions about university research methods")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "formal", res.Branch)

	recent, err := m.History().Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, res.ID, recent[0].ID)

	results := m.ProcessBatch(ctx, []string{"gardening tomatoes outdoors", ""})
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)

	require.NoError(t, m.Reconfigure(ctx, core.PartialConfiguration{Margin: core.Ptr(0.2)}))
	assert.InDelta(t, 3.09, m.Configuration().Secondary, 1e-9)

	require.NoError(t, m.RecordViolation(ctx, "external"))
	assert.Equal(t, 1, m.State().ViolationCount)

	require.NoError(t, m.Close(ctx))
	assert.Equal(t, core.PhaseUninitialized, m.State().Phase)
}

func TestConceptMesh_ModelScorer(t *testing.T) {
	ctx := context.Background()
	mock := model.NewMockModel("mock", "test")
	for _, from := range []string{"university", "research", "methods"} {
		mock.AddResponse("concept: "+from+"\nconcepts: university, research, methods",
			`[{"to":"research","strength":0.95,"distance":1}]`)
	}

	m, err := New(func(o *Options) { o.Model = mock })
	require.NoError(t, err)
	require.NoError(t, m.Start(ctx))
	defer m.Close(ctx)

	res := m.Process(ctx, "university research methods", engine.WithBranch("personal"))
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "personal", res.Branch)
	assert.Equal(t, 2, res.EdgesBuilt) // research→research is a self-loop
	assert.Equal(t, 3, mock.Calls())

	// Cached: no further model calls.
	require.True(t, m.Process(ctx, "university research methods").Success)
	assert.Equal(t, 3, mock.Calls())
}

func TestConceptMesh_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	m, err := New(func(o *Options) { o.Registerer = reg })
	require.NoError(t, err)
	require.NoError(t, m.Start(ctx))
	defer m.Close(ctx)

	m.Process(ctx, "university research methods")

	n, err := testutil.GatherAndCount(reg, "conceptmesh_engine_processed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConceptMesh_ConfigFileAndWatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "conceptmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("margin: 0.2\n"), 0o600))

	m, err := New(func(o *Options) {
		o.ConfigPath = path
		o.WatchConfig = true
	})
	require.NoError(t, err)
	require.NoError(t, m.Start(ctx))
	assert.InDelta(t, 3.09, m.Configuration().Secondary, 1e-9)

	require.NoError(t, os.WriteFile(path, []byte("margin: 0.3\n"), 0o600))
	require.Eventually(t, func() bool {
		return m.Configuration().Margin == 0.3
	}, 5*time.Second, 20*time.Millisecond)
	assert.InDelta(t, 3.19, m.Configuration().Secondary, 1e-9)

	require.NoError(t, m.Close(ctx))
}

func TestNew_BadConfigPath(t *testing.T) {
	_, err := New(func(o *Options) { o.ConfigPath = filepath.Join(t.TempDir(), "missing.yaml") })
	assert.Error(t, err)
}
