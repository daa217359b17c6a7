package redis

import (
	"context"
	"errors"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
)

// StateStorage keeps state records as Redis strings under PrefixState.
// Records never expire.
type StateStorage struct {
	cache  *Cache
	prefix string
}

// NewStateStorage creates a StateStorage.
func NewStateStorage(cache *Cache) *StateStorage {
	return &StateStorage{cache: cache, prefix: PrefixState}
}

// GetItem returns the record or an error matching shared.ErrNotFound.
func (s *StateStorage) GetItem(ctx context.Context, key string) ([]byte, error) {
	data, err := s.cache.GetBytes(ctx, s.prefix+key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.WrapError("storage", "GetItem", shared.ErrNotFound, "no record for "+key, err)
		}
		return nil, shared.WrapError("storage", "GetItem", shared.ErrServiceUnavailable, "redis read failed", err)
	}
	return data, nil
}

// SetItem overwrites the record.
func (s *StateStorage) SetItem(ctx context.Context, key string, value []byte) error {
	if err := s.cache.SetBytes(ctx, s.prefix+key, value, 0); err != nil {
		return shared.WrapError("storage", "SetItem", shared.ErrServiceUnavailable, "redis write failed", err)
	}
	return nil
}

// RemoveItem deletes the record.
func (s *StateStorage) RemoveItem(ctx context.Context, key string) error {
	if err := s.cache.Delete(ctx, s.prefix+key); err != nil {
		return shared.WrapError("storage", "RemoveItem", shared.ErrServiceUnavailable, "redis delete failed", err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (s *StateStorage) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}
