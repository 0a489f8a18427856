package fetcher

import (
	"fmt"
	"sync"
	"time"

	"github.com/quantoak/nightscan/internal/contracts"
)

// cacheEntry is one cached payload. Created on successful fetch, read by all
// consumers within TTL, overwritten on expiry or refresh.
type cacheEntry struct {
	Provider  string           `json:"provider"`
	Series    contracts.Series `json:"series"`
	FetchedAt time.Time        `json:"fetched_at"`
	TTL       time.Duration    `json:"ttl"`
}

// expired reports whether the entry is past its TTL at now.
func (e cacheEntry) expired(now time.Time) bool {
	return now.Sub(e.FetchedAt) > e.TTL
}

// memoryCache is the fetcher-owned in-process cache. The fetcher is its only
// writer.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// get returns a live entry, evicting it when expired.
func (c *memoryCache) get(key string) (cacheEntry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return cacheEntry{}, false
	}

	if entry.expired(c.now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return cacheEntry{}, false
	}

	return entry, true
}

// put writes/overwrites an entry.
func (c *memoryCache) put(key string, entry cacheEntry) {
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// cacheKey builds the provider-agnostic cache key.
func cacheKey(symbol string, windowDays int) string {
	return fmt.Sprintf("history:%s:%d:daily", symbol, windowDays)
}
