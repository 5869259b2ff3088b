// Package memstore provides an in-memory rating.Store, used in tests and
// single-process deployments.
package memstore

import (
	"context"
	"sync"
	"time"
)

// Store is a mutex-guarded in-memory key-value store with optional TTL.
// Expired entries are dropped lazily on read.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration // zero means entries never expire
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// New creates a store whose entries never expire.
func New() *Store {
	return &Store{entries: make(map[string]entry)}
}

// NewWithTTL creates a store whose entries expire after ttl.
func NewWithTTL(ttl time.Duration) *Store {
	return &Store{entries: make(map[string]entry), ttl: ttl}
}

// Get retrieves a value. Returns (nil, false, nil) on miss or expiry.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores a value, overwriting any previous entry.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	e := entry{value: value}
	if s.ttl > 0 {
		e.expiresAt = time.Now().Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

// Delete removes an entry. Idempotent.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including not-yet-collected
// expired ones.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
