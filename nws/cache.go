package nws

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache is an in-memory TTL store of raw API response bodies keyed by request
// signature. It is safe for concurrent use, never returns errors (a miss is an
// absent value), and is unbounded: nothing evicts entries automatically except
// Get touching an expired key. Callers that care about growth run CleanExpired
// or Clear themselves.
type Cache struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	entries map[string]cacheEntry
}

type cacheEntry struct {
	body   []byte
	expiry time.Time
}

// NewCache creates a cache backed by the real clock.
func NewCache() *Cache {
	return NewCacheWithClock(clockwork.NewRealClock())
}

// NewCacheWithClock creates a cache with an injected time source, letting
// tests advance expiry deterministically.
func NewCacheWithClock(clk clockwork.Clock) *Cache {
	return &Cache{
		clock:   clk,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached body for key. An entry whose expiry is at or before
// the current time counts as a miss and is evicted on the spot.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiry.After(c.clock.Now()) {
		delete(c.entries, key)
		return nil, false
	}
	return e.body, true
}

// Set stores body under key with the given time-to-live, overwriting any
// existing entry. The ttl is not validated: zero or negative values simply
// produce an entry that is already expired.
func (c *Cache) Set(key string, body []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		body:   body,
		expiry: c.clock.Now().Add(ttl),
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}

// CleanExpired evicts every entry whose expiry is at or before the current
// time, leaving live entries untouched.
func (c *Cache) CleanExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for key, e := range c.entries {
		if !e.expiry.After(now) {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
