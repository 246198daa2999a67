package memu

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// retrieveCache memoizes retrieve results per (user, query, limit) for
// a short TTL.
//
// Ristretto cannot enumerate or delete keys by prefix, so invalidation
// works through per-user generation counters: a memorize bumps the
// user's generation, which changes every cache key that user's
// retrieves hash to. Stale entries age out via TTL and cost eviction.
type retrieveCache struct {
	cache *ristretto.Cache
	ttl   time.Duration

	mu          sync.Mutex
	generations map[string]uint64
}

func newRetrieveCache(ttl time.Duration) (*retrieveCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating retrieve cache: %w", err)
	}
	return &retrieveCache{
		cache:       cache,
		ttl:         ttl,
		generations: make(map[string]uint64),
	}, nil
}

func (c *retrieveCache) key(userID, query string, limit int) string {
	c.mu.Lock()
	gen := c.generations[userID]
	c.mu.Unlock()

	sum := sha256.Sum256(fmt.Appendf(nil, "%d:%s:%s:%d", gen, userID, query, limit))
	return hex.EncodeToString(sum[:])
}

func (c *retrieveCache) get(userID, query string, limit int) ([]RetrieveResult, bool) {
	val, ok := c.cache.Get(c.key(userID, query, limit))
	if !ok {
		return nil, false
	}
	results, ok := val.([]RetrieveResult)
	return results, ok
}

func (c *retrieveCache) set(userID, query string, limit int, results []RetrieveResult) {
	c.cache.SetWithTTL(c.key(userID, query, limit), results, 1, c.ttl)
	// Flush the admission buffer so a subsequent get observes the entry.
	c.cache.Wait()
}

// invalidate drops every cached retrieve for userID.
func (c *retrieveCache) invalidate(userID string) {
	c.mu.Lock()
	c.generations[userID]++
	c.mu.Unlock()
}

func (c *retrieveCache) close() {
	c.cache.Close()
}
