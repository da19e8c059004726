package session

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a volatile Store keeping state in a process-local map. It
// is safe for concurrent access and best suited for tests or ephemeral demo
// services. Snapshots are cloned on both load and save so callers cannot
// mutate stored state through shared slices or maps.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]State)}
}

// Load implements Store.
func (s *InMemoryStore) Load(_ context.Context, key string) (State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[key]
	if !ok {
		return State{}, false, nil
	}
	return state.Clone(), true, nil
}

// Save implements Store.
func (s *InMemoryStore) Save(_ context.Context, key string, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := state.Clone()
	clone.Updated = time.Now().UTC()
	s.states[key] = clone
	return nil
}

// Keys returns a snapshot of all stored namespace keys, mainly for tests and
// diagnostics.
func (s *InMemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.states))
	for k := range s.states {
		keys = append(keys, k)
	}
	return keys
}
