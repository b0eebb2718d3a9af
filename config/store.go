package config

import (
	"sync/atomic"

	"github.com/hupe1980/conceptmesh/core"
)

// Store holds the active configuration behind an atomic pointer. Readers
// always observe a complete configuration; writers build a candidate, validate
// it and swap it in whole. Writers must be serialized by the owner.
type Store struct {
	current atomic.Pointer[core.Configuration]
}

// NewStore creates a Store holding a copy of cfg.
func NewStore(cfg core.Configuration) *Store {
	s := &Store{}
	s.Set(cfg)
	return s
}

// Get returns a deep copy of the active configuration.
func (s *Store) Get() core.Configuration {
	return s.current.Load().Clone()
}

// Set replaces the active configuration with a copy of cfg and returns the
// previous one.
func (s *Store) Set(cfg core.Configuration) core.Configuration {
	c := cfg.Clone()
	prev := s.current.Swap(&c)
	if prev == nil {
		return core.Configuration{}
	}
	return *prev
}
