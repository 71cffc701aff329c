package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process memory
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore creates an in-process store that purges expired entries
// every cleanupInterval
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		items: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// Get implements Store
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, found := m.items.Get(key)
	if !found {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	return data, ok, nil
}

// Set implements Store
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.items.Set(key, value, ttl)
	return nil
}

// Delete implements Store
func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.items.Delete(key)
	}
	return nil
}

// Name implements Store
func (m *MemoryStore) Name() string {
	return "memory"
}
