package recommend

import (
	"sync"

	"github.com/xkilldash9x/a11yscope/api/schemas"
)

// Cache is a process-wide ruleID -> Recommendation map used to avoid
// repeated generative calls for the same rule within a process. Writes are
// idempotent last-write-wins; results for the same rule id are expected to
// be equivalent, so no per-key coordination is needed beyond the lock.
//
// Cache is an explicit object constructed at process start and passed to
// the components that need it, which keeps tests isolated.
type Cache struct {
	mu   sync.RWMutex
	recs map[string]schemas.Recommendation
}

// NewCache returns an empty recommendation cache.
func NewCache() *Cache {
	return &Cache{recs: make(map[string]schemas.Recommendation)}
}

// Get returns the cached recommendation for a rule id, if any.
func (c *Cache) Get(ruleID string) (schemas.Recommendation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.recs[ruleID]
	return rec, ok
}

// Put stores a recommendation under its rule id, overwriting any prior
// value.
func (c *Cache) Put(rec schemas.Recommendation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs[rec.ID] = rec
}

// Len reports the number of cached recommendations.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.recs)
}
