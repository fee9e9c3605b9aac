package sqlcl

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

type cacheEntry struct {
	output    *Output
	timestamp time.Time
}

// Cache is a thread-safe in-memory cache of parsed outputs, keyed by
// connection string and script.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	maxAge  time.Duration
}

func NewCache(maxAge time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		maxAge:  maxAge,
	}
}

func (c *Cache) Set(connect string, script string, out *Output) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(connect, script)] = cacheEntry{
		output:    out,
		timestamp: time.Now(),
	}
}

func (c *Cache) Get(connect string, script string) (*Output, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[cacheKey(connect, script)]
	if !ok {
		return nil, false
	}

	if time.Since(entry.timestamp) > c.maxAge {
		return nil, false
	}

	return entry.output, true
}

// Removes all cache entries
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}

// Removes all cache entries older than the given duration
func (c *Cache) InvalidateOlder(olderThan time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	clearOlderThan := time.Now().Add(-olderThan)

	for key, entry := range c.entries {
		if entry.timestamp.Before(clearOlderThan) {
			delete(c.entries, key)
		}
	}
}

// Returns the cache key hash (sha256) for the given connection and script
func cacheKey(connect string, script string) string {
	data := fmt.Sprintf("%s-%s", connect, script)
	hash := sha256.Sum256([]byte(data))

	return fmt.Sprintf("%x", hash)
}
