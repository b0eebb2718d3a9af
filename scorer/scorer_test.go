package scorer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var concepts = []core.Concept{"neural", "neurons", "pathways", "learning", "patterns"}

func TestTable(t *testing.T) {
	s := NewTable(map[core.Concept][]core.Candidate{
		"neural": {{To: "neurons", Strength: 0.9, JumpDistance: 1}},
	})
	s.Add("neural", core.Candidate{To: "pathways", Strength: 0.4, JumpDistance: 2})

	got, err := s.Score(context.Background(), "neural", concepts)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got[0].Strength = 0
	again, _ := s.Score(context.Background(), "neural", concepts)
	assert.Equal(t, 0.9, again[0].Strength, "results are copies")

	none, err := s.Score(context.Background(), "missing", concepts)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProximity(t *testing.T) {
	s := NewProximity(func(o *ProximityOptions) { o.Window = 2 })

	got, err := s.Score(context.Background(), "pathways", concepts)
	require.NoError(t, err)
	require.Len(t, got, 4)

	byTo := map[core.Concept]core.Candidate{}
	for _, c := range got {
		byTo[c.To] = c
		assert.GreaterOrEqual(t, c.Strength, 0.0)
		assert.LessOrEqual(t, c.Strength, 1.0)
	}
	assert.Equal(t, 1, byTo["neurons"].JumpDistance)
	assert.Equal(t, 2, byTo["neural"].JumpDistance)
	assert.Equal(t, 2, byTo["patterns"].JumpDistance)
	// "patterns" shares bigrams with "pathways", "neural" does not.
	assert.Greater(t, byTo["patterns"].Strength, byTo["neural"].Strength)

	none, err := s.Score(context.Background(), "absent", concepts)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProximity_Deterministic(t *testing.T) {
	s := NewProximity()
	a, _ := s.Score(context.Background(), "learning", concepts)
	b, _ := s.Score(context.Background(), "learning", concepts)
	assert.Equal(t, a, b)
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, jaccard(bigrams("abc"), bigrams("abc")))
	assert.Equal(t, 0.0, jaccard(bigrams("abc"), bigrams("xyz")))
	assert.Equal(t, 0.0, jaccard(bigrams(""), bigrams("")))
}

func TestModel_Score(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := model.NewMockModel("mock", "mock")
	m.AddResponse(prompt("neural", concepts), "```json\n"+
		`[{"to":"Neurons","strength":0.8,"distance":1},`+
		`{"to":"learning","strength":0.5},`+
		`{"to":"unknown","strength":0.9,"distance":1},`+
		`{"to":"","strength":0.9}]`+"\n```")

	s := NewModel(m)
	got, err := s.Score(context.Background(), "neural", concepts)
	require.NoError(t, err)
	assert.Equal(t, []core.Candidate{
		{To: "neurons", Strength: 0.8, JumpDistance: 1},
		{To: "learning", Strength: 0.5, JumpDistance: 3},
	}, got)
}

func TestModel_MaxCandidates(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := model.NewMockModel("mock", "mock")
	m.AddResponse(prompt("neural", concepts), `[{"to":"neurons","strength":0.8},{"to":"learning","strength":0.5}]`)

	s := NewModel(m, func(o *ModelOptions) { o.MaxCandidates = 1 })
	got, err := s.Score(context.Background(), "neural", concepts)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestModel_Malformed(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := model.NewMockModel("mock", "mock")
	m.AddResponse(prompt("neural", concepts), "no idea")

	_, err := NewModel(m).Score(context.Background(), "neural", concepts)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	m.AddResponse(prompt("neurons", concepts), "[not json]")
	_, err = NewModel(m).Score(context.Background(), "neurons", concepts)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestCaching_SharesConcurrentCalls(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	inner := core.ScorerFunc(func(context.Context, core.Concept, []core.Concept) ([]core.Candidate, error) {
		calls.Add(1)
		<-release
		return []core.Candidate{{To: "neurons", Strength: 0.5, JumpDistance: 1}}, nil
	})
	s := NewCaching(inner)

	var wg sync.WaitGroup
	results := make([][]core.Candidate, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := s.Score(context.Background(), "neural", concepts)
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Len(t, r, 1)
	}
	assert.Equal(t, 1, s.Stats().Entries)
	assert.Equal(t, int64(1), s.Stats().Misses)
}

func TestCaching_KeysIncludeConcepts(t *testing.T) {
	var calls atomic.Int32
	inner := core.ScorerFunc(func(context.Context, core.Concept, []core.Concept) ([]core.Candidate, error) {
		calls.Add(1)
		return nil, nil
	})
	s := NewCaching(inner)

	_, _ = s.Score(context.Background(), "neural", concepts)
	_, _ = s.Score(context.Background(), "neural", concepts)
	_, _ = s.Score(context.Background(), "neural", concepts[:2])
	assert.Equal(t, int32(2), calls.Load())

	s.Purge()
	_, _ = s.Score(context.Background(), "neural", concepts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCaching_EvictsOldest(t *testing.T) {
	s := NewCaching(NewTable(nil), func(o *CachingOptions) { o.MaxEntries = 2 })
	for _, c := range concepts[:3] {
		_, err := s.Score(context.Background(), c, concepts)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, s.Stats().Entries)
}

func TestCaching_ErrorsAreNotCached(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	inner := core.ScorerFunc(func(context.Context, core.Concept, []core.Concept) ([]core.Candidate, error) {
		calls.Add(1)
		return nil, boom
	})
	s := NewCaching(inner)

	_, err := s.Score(context.Background(), "neural", concepts)
	assert.ErrorIs(t, err, boom)
	_, err = s.Score(context.Background(), "neural", concepts)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCaching_CallerCancellationDoesNotFailOthers(t *testing.T) {
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	innerErr := make(chan error, 1)
	inner := core.ScorerFunc(func(ctx context.Context, _ core.Concept, _ []core.Concept) ([]core.Candidate, error) {
		calls.Add(1)
		close(entered)
		<-release
		innerErr <- ctx.Err()
		return []core.Candidate{{To: "neurons", Strength: 0.5, JumpDistance: 1}}, nil
	})
	s := NewCaching(inner)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Score(ctx, "neural", concepts)
		firstErr <- err
	}()
	<-entered
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	second := make(chan []core.Candidate, 1)
	go func() {
		got, err := s.Score(context.Background(), "neural", concepts)
		assert.NoError(t, err)
		second <- got
	}()
	close(release)

	assert.Len(t, <-second, 1)
	assert.NoError(t, <-innerErr)
	assert.Equal(t, int32(1), calls.Load())
}
