package scorer

import (
	"context"
	"slices"
	"sync"

	"github.com/hupe1980/conceptmesh/core"
)

// Table is a deterministic scorer backed by a lookup table.
type Table struct {
	mu    sync.RWMutex
	table map[core.Concept][]core.Candidate
}

// NewTable creates a Table scorer. The map is copied.
func NewTable(table map[core.Concept][]core.Candidate) *Table {
	t := &Table{table: make(map[core.Concept][]core.Candidate, len(table))}
	for from, cands := range table {
		t.table[from] = slices.Clone(cands)
	}
	return t
}

// Add appends candidates for from.
func (t *Table) Add(from core.Concept, cands ...core.Candidate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.table[from] = append(t.table[from], cands...)
}

// Score implements core.Scorer.
func (t *Table) Score(_ context.Context, from core.Concept, _ []core.Concept) ([]core.Candidate, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.table[from]), nil
}
