package sandbox

import (
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	value  V
	expiry time.Time
}

func (e cacheEntry[V]) expired(now time.Time) bool {
	return !e.expiry.IsZero() && !now.Before(e.expiry)
}

// TTLCache is a thread-safe map whose entries may expire. Expired entries are
// dropped lazily on access.
type TTLCache[V any] struct {
	mu    sync.RWMutex
	items map[string]cacheEntry[V]
	now   func() time.Time
}

// NewTTLCache creates an empty cache.
func NewTTLCache[V any]() *TTLCache[V] {
	return &TTLCache[V]{
		items: make(map[string]cacheEntry[V]),
		now:   time.Now,
	}
}

// Set stores value under key. A non-positive ttl never expires.
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := cacheEntry[V]{value: value}
	if ttl > 0 {
		entry.expiry = c.now().Add(ttl)
	}
	c.items[key] = entry
}

// Get returns the live value for key and how long it has left. A zero
// remaining duration means the entry does not expire.
func (c *TTLCache[V]) Get(key string) (V, time.Duration, bool) {
	var zero V
	now := c.now()

	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return zero, 0, false
	}

	if entry.expired(now) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have replaced it.
		if cur, ok := c.items[key]; ok && cur.expired(now) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return zero, 0, false
	}

	var remaining time.Duration
	if !entry.expiry.IsZero() {
		remaining = entry.expiry.Sub(now)
	}
	return entry.value, remaining, true
}

// Delete removes key and reports whether a live entry was present.
func (c *TTLCache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		return false
	}
	delete(c.items, key)
	return !entry.expired(c.now())
}

// Len returns the number of stored entries, expired ones included.
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
