package history

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ core.HistoryStore = (*InMemoryStore)(nil)

func result(id string, concepts ...core.Concept) core.ProcessingResult {
	return core.ProcessingResult{ID: id, Concepts: concepts, Success: true, Branch: "personal"}
}

func TestInMemoryStore_RecordRecentSearchDelete(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	require.NoError(t, s.Record(ctx, result("r1", "university", "research")))
	require.NoError(t, s.Record(ctx, result("r2", "garden", "tomatoes")))
	require.NoError(t, s.Record(ctx, result("r3", "researcher")))

	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "r3", recent[0].ID)
	assert.Equal(t, "r1", recent[2].ID)

	limited, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	hits, err := s.Search(ctx, "RESEARCH", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "r3", hits[0].ID)
	assert.Equal(t, "r1", hits[1].ID)

	require.NoError(t, s.Delete(ctx, "r1"))
	assert.ErrorIs(t, s.Delete(ctx, "r1"), ErrNotFound)
	assert.Equal(t, 2, s.Len())
}

func TestInMemoryStore_CopyIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	r := result("r1", "alpha")
	require.NoError(t, s.Record(ctx, r))
	r.Concepts[0] = "mutated"

	got, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	got[0].Concepts[0] = "changed"

	again, _ := s.Recent(ctx, 1)
	assert.Equal(t, core.Concept("alpha"), again[0].Concepts[0])
}

func TestInMemoryStore_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(func(o *InMemoryOptions) { o.MaxEntries = 3 })

	for i := range 5 {
		require.NoError(t, s.Record(ctx, result(fmt.Sprintf("r%d", i))))
	}
	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "r4", recent[0].ID)
	assert.Equal(t, "r2", recent[2].ID)
}

func TestInMemoryStore_Errors(t *testing.T) {
	s := NewInMemoryStore()
	assert.Error(t, s.Record(context.Background(), core.ProcessingResult{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Record(ctx, result("r1")), context.Canceled)
	_, err := s.Search(ctx, "", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Record(ctx, result(fmt.Sprintf("r%d", i), "concept")))
			_, err := s.Search(ctx, "con", 5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}
