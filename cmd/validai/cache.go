package main

import (
	"sync"
	"time"
)

type cacheEntry struct {
	content    *ExtractedContent
	insertedAt time.Time
}

// ContentCache is the process-wide extraction cache, keyed by exact URL.
// Entries older than the TTL are treated as misses; when the cache grows
// past maxEntries an opportunistic prune evicts only expired entries.
type ContentCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	hits       int64
	misses     int64
}

// NewContentCache creates a cache with the given TTL and soft size cap
func NewContentCache(ttl time.Duration, maxEntries int) *ContentCache {
	return &ContentCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Get returns the cached content for a URL if it is younger than the TTL.
// The returned value is a copy with FromCache set.
func (c *ContentCache) Get(url string) (*ExtractedContent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[url]
	if !ok || time.Since(entry.insertedAt) > c.ttl {
		c.misses++
		return nil, false
	}

	c.hits++
	copied := *entry.content
	copied.Metadata.FromCache = true
	return &copied, true
}

// Set stores extracted content for a URL
func (c *ContentCache) Set(url string, content *ExtractedContent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[url] = cacheEntry{content: content, insertedAt: time.Now()}

	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.pruneLocked()
	}
}

// Prune removes expired entries and returns how many were evicted
func (c *ContentCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pruneLocked()
}

func (c *ContentCache) pruneLocked() int {
	evicted := 0
	now := time.Now()
	for url, entry := range c.entries {
		if now.Sub(entry.insertedAt) > c.ttl {
			delete(c.entries, url)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of entries currently held
func (c *ContentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counters
func (c *ContentCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
