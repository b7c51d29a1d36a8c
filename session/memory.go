// Package session provides SessionStore implementations for the order
// store's write-through persistence.
package session

import (
	"context"
	"sync"

	checkout "github.com/nextcommerce/checkout-go"
)

// MemoryStore is a mutex-guarded in-memory session store.
//
// Suitable for single-process embedding and tests, where session state
// does not need to survive the process. For server-side rendering of
// checkout sessions across instances, use RedisStore.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
	}
}

// Get returns the stored value, or nil if the key is absent.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

// Set stores value under key, replacing any previous value.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Ensure MemoryStore implements SessionStore
var _ checkout.SessionStore = (*MemoryStore)(nil)
