package pipeline

import (
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
)

// DefaultContextTTL bounds how long resolved thread context is
// trusted. Reply state changes upstream, so entries expire and the
// next run re-resolves them.
const DefaultContextTTL = 10 * time.Minute

type cacheEntry struct {
	thread   *domain.Thread
	storedAt time.Time
}

// ContextCache holds resolved thread context keyed by post URI. Each
// pipeline owns exactly one cache; it lives as long as the pipeline
// and is cleared explicitly on Reset. Workers within a batch share it,
// so access is mutex-guarded; entries are idempotent upserts and
// expire after the configured TTL.
type ContextCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewContextCache creates an empty cache. A non-positive TTL takes the
// default.
func NewContextCache(ttl time.Duration) *ContextCache {
	if ttl <= 0 {
		ttl = DefaultContextTTL
	}
	return &ContextCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached thread for a post URI. Expired entries are
// dropped and reported as misses.
func (c *ContextCache) Get(uri string) (*domain.Thread, bool) {
	c.mu.RLock()
	e, ok := c.entries[uri]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, uri)
		c.mu.Unlock()
		return nil, false
	}
	return e.thread, true
}

// Put stores the resolved thread for a post URI.
func (c *ContextCache) Put(uri string, t *domain.Thread) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[uri] = cacheEntry{thread: t, storedAt: c.now()}
}

// Len returns the number of cached entries, including any not yet
// evicted by an expiring Get.
func (c *ContextCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops every entry. Called when the owning pipeline is torn
// down or repointed at a different feed.
func (c *ContextCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
