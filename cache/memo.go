// Package cache memoises computed values in a go-cache store.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Default lifetimes for memoised values. With no cleanup interval the store
// runs no janitor goroutine; expired entries are dropped on access.
const (
	DefaultExpiration      = gocache.NoExpiration
	DefaultCleanupInterval = time.Duration(0)
)

// Memo is a typed, concurrency-safe string-keyed cache.
type Memo[V any] struct {
	cache *gocache.Cache
}

// New returns an empty Memo. Entries live for expiration; pass
// DefaultExpiration to keep them until Flush.
func New[V any](expiration, cleanupInterval time.Duration) *Memo[V] {
	return &Memo[V]{cache: gocache.New(expiration, cleanupInterval)}
}

// Get returns the value stored under key.
func (m *Memo[V]) Get(key string) (V, bool) {
	var zero V
	value, found := m.cache.Get(key)
	if !found {
		return zero, false
	}
	v, ok := value.(V)
	if !ok {
		return zero, false
	}
	return v, true
}

// Set stores value under key with the default expiration.
func (m *Memo[V]) Set(key string, value V) {
	m.cache.SetDefault(key, value)
}

// GetOrCompute returns the value stored under key, computing and storing it
// on a miss. Concurrent misses may compute the same key more than once.
func (m *Memo[V]) GetOrCompute(key string, compute func() V) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	v := compute()
	m.Set(key, v)
	return v
}

// Len returns the number of stored entries, including expired ones not yet
// cleaned up.
func (m *Memo[V]) Len() int {
	return m.cache.ItemCount()
}

// Flush removes all entries.
func (m *Memo[V]) Flush() {
	m.cache.Flush()
}
