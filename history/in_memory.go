package history

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/conceptmesh/core"
)

// ErrNotFound is returned when a result id is unknown.
var ErrNotFound = errors.New("result not found")

// DefaultMaxEntries bounds an InMemoryStore created without options.
const DefaultMaxEntries = 1024

// InMemoryOptions configures an InMemoryStore.
type InMemoryOptions struct {
	// MaxEntries bounds the store; the oldest results are evicted first.
	// Values below 1 mean unbounded.
	MaxEntries int
}

// InMemoryStore is a naive process-local HistoryStore.
//
// Concurrency: protected by RWMutex.
// Search: linear scan with case-insensitive substring matching over the
// concepts of each result, newest first. Suitable for tests and demos; use
// history/sqlite when results must survive a restart.
type InMemoryStore struct {
	mu         sync.RWMutex
	results    []core.ProcessingResult // oldest first
	maxEntries int
}

// NewInMemoryStore creates a new in-memory history store.
func NewInMemoryStore(optFns ...func(o *InMemoryOptions)) *InMemoryStore {
	opts := InMemoryOptions{MaxEntries: DefaultMaxEntries}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{maxEntries: opts.MaxEntries}
}

// Record appends a result. Results without an id are rejected.
func (m *InMemoryStore) Record(ctx context.Context, result core.ProcessingResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if result.ID == "" {
		return fmt.Errorf("history: result has no id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, clone(result))
	if m.maxEntries > 0 && len(m.results) > m.maxEntries {
		m.results = slices.Delete(m.results, 0, len(m.results)-m.maxEntries)
	}
	return nil
}

// Recent returns up to limit results, newest first.
func (m *InMemoryStore) Recent(ctx context.Context, limit int) ([]core.ProcessingResult, error) {
	return m.Search(ctx, "", limit)
}

// Search returns up to limit results, newest first, having a concept that
// contains query. An empty query matches everything.
func (m *InMemoryStore) Search(ctx context.Context, query string, limit int) ([]core.ProcessingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	query = strings.ToLower(query)
	out := make([]core.ProcessingResult, 0, min(max(limit, 0), len(m.results)))
	for i := len(m.results) - 1; i >= 0 && len(out) < limit; i-- {
		if query == "" || matches(m.results[i], query) {
			out = append(out, clone(m.results[i]))
		}
	}
	return out, nil
}

// Delete removes a stored result by id.
func (m *InMemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.results, func(r core.ProcessingResult) bool { return r.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.results = slices.Delete(m.results, i, i+1)
	return nil
}

// Len returns the number of stored results.
func (m *InMemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.results)
}

func matches(r core.ProcessingResult, query string) bool {
	for _, c := range r.Concepts {
		if strings.Contains(strings.ToLower(string(c)), query) {
			return true
		}
	}
	return false
}

func clone(r core.ProcessingResult) core.ProcessingResult {
	r.Concepts = slices.Clone(r.Concepts)
	return r
}
