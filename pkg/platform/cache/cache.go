// Package cache provides a process-local TTL memoization cache.
//
// Entries are timestamped individually on Put and treated as absent once
// their window elapses (lazy expiry, no background sweep). Each consumer owns
// its own instance, so tests can run isolated caches side by side and inject
// a clock.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTL memoizes values for a fixed window per key.
type TTL[K comparable, V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[K]entry[V]
}

// Option configures a cache instance.
type Option[K comparable, V any] func(*TTL[K, V])

// WithClock overrides the time source, for tests.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *TTL[K, V]) {
		c.now = now
	}
}

// New builds a TTL cache. A non-positive ttl disables caching entirely: every
// Get misses, which keeps call sites free of special cases.
func New[K comparable, V any](ttl time.Duration, opts ...Option[K, V]) *TTL[K, V] {
	c := &TTL[K, V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[K]entry[V]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value if it is still inside its window.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok || c.ttl <= 0 {
		return zero, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; another Put may have refreshed it.
		if cur, still := c.entries[key]; still && c.now().Sub(cur.storedAt) >= c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Put stores a value, restarting its window.
func (c *TTL[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
}

// Delete removes a single key.
func (c *TTL[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry. Invoked on logout to prevent cross-session
// leakage.
func (c *TTL[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}

// Len reports live entries, counting expired-but-unswept ones.
func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
