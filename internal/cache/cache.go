// Package cache provides a time-bounded key/value cache for the data tools.
// Entries expire after a fixed TTL; capacity overflow evicts the oldest
// insertion. The clock is injectable so expiry is deterministic in tests.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Injectable for deterministic TTL testing.
type Clock func() time.Time

// Option configures the Cache.
type Option func(*Cache)

// WithClock sets a custom clock.
func WithClock(clock Clock) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

type entry struct {
	value    interface{}
	storedAt time.Time
}

// Cache is a TTL-bounded key/value store. Safe for concurrent use; concurrent
// writers to the same key are last-writer-wins.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	clock   Clock
	entries map[string]*entry
	order   []string // insertion order, oldest first
}

// New creates a cache with the given capacity and TTL.
func New(maxSize int, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		ttl:     ttl,
		maxSize: maxSize,
		clock:   time.Now,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key. An entry past its TTL is never
// returned; it is dropped on access.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock().Sub(e.storedAt) >= c.ttl {
		c.remove(key)
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key, evicting expired entries first and then the
// oldest insertion if the cache is at capacity.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()

	// Replace in place keeps the original insertion slot
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.storedAt = now
		return
	}

	c.purgeExpired(now)

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		// Evict oldest insertion on overflow
		if len(c.order) > 0 {
			c.remove(c.order[0])
		}
	}

	c.entries[key] = &entry{value: value, storedAt: now}
	c.order = append(c.order, key)
}

// Len returns the number of live (non-expired) entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeExpired(c.clock())
	return len(c.entries)
}

func (c *Cache) purgeExpired(now time.Time) {
	for key, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			c.remove(key)
		}
	}
}

// remove deletes the entry and its insertion-order slot. Caller holds the lock.
func (c *Cache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
