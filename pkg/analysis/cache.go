package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atlas-kg/atlas/pkg/traversal"
)

// DefaultCacheTTL bounds how long a memoized directional result is served
// before it is recomputed.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	value     *ImpactResult
	expiresAt time.Time
}

// resultCache memoizes directional impact results keyed by entity,
// direction and the option values that shape the result. Concurrent misses
// for the same key may both recompute; the last write wins.
type resultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newResultCache(ttl time.Duration) *resultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &resultCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *resultCache) get(key string) (*ImpactResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

func (c *resultCache) set(key string, value *ImpactResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// cacheKey fingerprints every option value that changes the result, so
// analyses with different depth or decay settings never collide.
// ForceRefresh is deliberately excluded.
func cacheKey(entityName string, direction traversal.Direction, opts Options) string {
	return fmt.Sprintf(
		"%s|%s|d%d|n%d|f%g|imp%t",
		entityName, direction, opts.MaxDepth, opts.MaxEntities, opts.DecayFactor, opts.IncludeImportance,
	)
}

// GetImpactAnalysisWithCache serves the directional analysis from the cache
// when a fresh entry exists, recomputing on a miss, on expiry, or when
// opts.ForceRefresh is set.
func (a *Analyzer) GetImpactAnalysisWithCache(ctx context.Context, entityName string, direction traversal.Direction, opts *Options) (*ImpactResult, error) {
	resolved, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	if direction != traversal.Upstream && direction != traversal.Downstream {
		return nil, fmt.Errorf("analysis: unknown direction %q", direction)
	}

	key := cacheKey(entityName, direction, resolved)
	if !resolved.ForceRefresh {
		if cached, ok := a.cache.get(key); ok {
			return cached, nil
		}
	}

	result := a.analyzeDirection(ctx, entityName, direction, resolved)
	if !result.Failed() {
		a.cache.set(key, result)
	}
	return result, nil
}

// ClearCache empties the result cache unconditionally. It is invoked on
// graph mutation signals and for test isolation.
func (a *Analyzer) ClearCache() {
	a.cache.clear()
}
