// Package memory provides a process-local key-value storage for the state
// record. It is the default backend for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
)

// Storage keeps items in a map guarded by a RWMutex.
type Storage struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewStorage creates an empty storage.
func NewStorage() *Storage {
	return &Storage{items: make(map[string][]byte)}
}

// GetItem returns a copy of the stored value or shared.ErrNotFound.
func (s *Storage) GetItem(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// SetItem stores a copy of value under key.
func (s *Storage) SetItem(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = append([]byte(nil), value...)
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (s *Storage) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

// Ping always succeeds.
func (s *Storage) Ping(context.Context) error { return nil }
