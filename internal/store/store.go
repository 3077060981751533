// Package store holds the in-process audit result cache. Results live for
// a fixed TTL and are never persisted; losing the cache (process restart)
// just means the next request recomputes.
package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/a11yscope/api/schemas"
)

// entry pairs a cached result with its expiry instant.
type entry struct {
	result    *schemas.AuditResult
	expiresAt time.Time
}

// AuditCache maps cache keys to audit results with TTL expiry-on-read.
// Keys are unique per URL, so concurrent writers for the same key only
// ever race on equivalent values; last write wins. There is no eviction
// beyond expiry, an accepted scope limitation.
type AuditCache struct {
	ttl time.Duration
	log *zap.Logger

	// now is swappable so tests can control expiry.
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

// Option configures an AuditCache.
type Option func(*AuditCache)

// WithClock overrides the cache's clock. For tests.
func WithClock(now func() time.Time) Option {
	return func(c *AuditCache) { c.now = now }
}

// NewAuditCache builds a cache whose entries expire ttl after insertion.
func NewAuditCache(ttl time.Duration, logger *zap.Logger, opts ...Option) *AuditCache {
	c := &AuditCache{
		ttl:     ttl,
		log:     logger.Named("audit_cache"),
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the unexpired result stored under key. An expired entry is
// removed on the way out and reported as a miss.
func (c *AuditCache) Get(key string) (*schemas.AuditResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another caller may have refreshed it.
		if cur, still := c.entries[key]; still && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.log.Debug("Cache entry expired", zap.String("key", key))
		return nil, false
	}
	return e.result, true
}

// Put stores a result under key with expiry now+TTL.
func (c *AuditCache) Put(key string, result *schemas.AuditResult) {
	c.mu.Lock()
	c.entries[key] = entry{result: result, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Len reports the number of entries currently held, expired or not.
func (c *AuditCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
