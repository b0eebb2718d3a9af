package scorer

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/conceptmesh/core"
	"golang.org/x/sync/singleflight"
)

// CachingOptions configures a Caching scorer.
type CachingOptions struct {
	// MaxEntries bounds the cache; the oldest entry is evicted first.
	MaxEntries int
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Hits    int64
	Misses  int64
	Shared  int64
	Entries int
}

// Caching wraps a scorer, caching results per (from, concepts) request.
// Concurrent identical requests share one inner call.
type Caching struct {
	inner core.Scorer
	opts  CachingOptions
	group singleflight.Group

	mu      sync.Mutex
	entries map[string][]core.Candidate
	order   []string
	stats   CacheStats
}

// NewCaching wraps inner.
func NewCaching(inner core.Scorer, optFns ...func(o *CachingOptions)) *Caching {
	opts := CachingOptions{MaxEntries: 4096}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.MaxEntries = max(opts.MaxEntries, 1)
	return &Caching{inner: inner, opts: opts, entries: make(map[string][]core.Candidate)}
}

// Score implements core.Scorer.
func (c *Caching) Score(ctx context.Context, from core.Concept, concepts []core.Concept) ([]core.Candidate, error) {
	key := cacheKey(from, concepts)
	if cached, ok := c.get(key); ok {
		return cached, nil
	}

	// The shared call must not inherit one caller's cancellation; every
	// caller waits on its own ctx instead.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// Double-check cache inside singleflight
		if cached, ok := c.get(key); ok {
			return cached, nil
		}
		c.mu.Lock()
		c.stats.Misses++
		c.mu.Unlock()

		cands, err := c.inner.Score(flightCtx, from, concepts)
		if err != nil {
			return nil, err
		}
		c.put(key, cands)
		return cands, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Shared {
		c.mu.Lock()
		c.stats.Shared++
		c.mu.Unlock()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	v := res.Val

	cands, ok := v.([]core.Candidate)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight group: got %T", v)
	}
	return slices.Clone(cands), nil
}

// Stats returns a snapshot of cache statistics.
func (c *Caching) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

// Purge drops every cached entry.
func (c *Caching) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.order = c.order[:0]
}

func (c *Caching) get(key string) ([]core.Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cands, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.stats.Hits++
	return slices.Clone(cands), true
}

func (c *Caching) put(key string, cands []core.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = slices.Clone(cands)
	for len(c.order) > c.opts.MaxEntries {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
}

func cacheKey(from core.Concept, concepts []core.Concept) string {
	var b strings.Builder
	b.WriteString(string(from))
	for _, c := range concepts {
		b.WriteByte(0)
		b.WriteString(string(c))
	}
	return b.String()
}
