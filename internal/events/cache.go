package events

import (
	"sync"
	"time"

	"campaignScope/internal/model"
)

// DefaultTTL is how long a cached event list stays fresh.
const DefaultTTL = 45 * time.Second

type cacheEntry struct {
	events    []model.Event
	fetchedAt time.Time
}

// Cache is an in-memory, TTL-bounded store of fetched event lists keyed by
// retrieval scope. Entries are superseded by Put on refresh, never evicted;
// the key space is small and bounded by the set of campaigns on display.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// NewCache builds a cache with the given TTL (DefaultTTL when zero).
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached list for key if it is younger than the TTL.
func (c *Cache) Get(key string) ([]model.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return entry.events, true
}

// Put stores the list for key, stamping it with the current time.
func (c *Cache) Put(key string, evts []model.Event) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{events: evts, fetchedAt: c.now()}
	c.mu.Unlock()
}
