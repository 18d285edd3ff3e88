package usecase

import (
	"sync"
	"time"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
)

// CacheStats is a point-in-time view of cache effectiveness.
type CacheStats struct {
	HitRate               float64   `json:"hit_rate"`
	TotalHits             uint64    `json:"total_hits"`
	TotalMisses           uint64    `json:"total_misses"`
	InvalidatedCount      uint64    `json:"invalidated_count"`
	LastFullRecalculation time.Time `json:"last_full_recalculation"`
}

// BalanceCache keeps period snapshots in memory in front of the snapshot
// store. It is owned by one engine instance; independent ledgers get
// independent caches. The cache is a pure optimization: results are
// identical whether it is empty or fully warm.
type BalanceCache struct {
	mu             sync.RWMutex
	snapshots      map[domain.PeriodKey]*domain.PeriodSnapshot
	hits           uint64
	misses         uint64
	invalidated    uint64
	lastFullRecalc time.Time
}

// NewBalanceCache creates an empty BalanceCache.
func NewBalanceCache() *BalanceCache {
	return &BalanceCache{
		snapshots: make(map[domain.PeriodKey]*domain.PeriodSnapshot),
	}
}

// Get returns the cached snapshot for a period, if present. A snapshot
// marked invalidated is still returned (callers check the flag) but counts
// as a miss, since it cannot be served without recomputation. Callers must
// not mutate the returned snapshot; clone first.
func (c *BalanceCache) Get(key domain.PeriodKey) (*domain.PeriodSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, ok := c.snapshots[key]
	if !ok || snap.Invalidated {
		c.misses++
		return snap, ok
	}

	c.hits++

	return snap, true
}

// Set stores a copy of the snapshot.
func (c *BalanceCache) Set(snapshot *domain.PeriodSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshots[snapshot.PeriodKey] = snapshot.Clone()
}

// InvalidateFrom marks every cached period covering a day on or after the
// given date. Entries are marked, never deleted, and repopulated on the
// next propagation. Returns the number of periods marked.
func (c *BalanceCache) InvalidateFrom(date domain.Date) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	marked := 0

	for key, snap := range c.snapshots {
		if snap.Invalidated || !key.EndsOnOrAfter(date) {
			continue
		}

		stale := snap.Clone()
		stale.Invalidated = true
		c.snapshots[key] = stale
		marked++
	}

	c.invalidated += uint64(marked)

	return marked
}

// MarkFullRecalculation records when the last full recalculation finished.
func (c *BalanceCache) MarkFullRecalculation(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastFullRecalc = t
}

// Counters returns the raw hit/miss counters.
func (c *BalanceCache) Counters() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.hits, c.misses
}

// Stats returns a snapshot of the cache counters.
func (c *BalanceCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{
		TotalHits:             c.hits,
		TotalMisses:           c.misses,
		InvalidatedCount:      c.invalidated,
		LastFullRecalculation: c.lastFullRecalc,
	}

	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}

	return stats
}

// Len returns the number of cached periods, including invalidated ones.
func (c *BalanceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.snapshots)
}

// Clear drops every cached snapshot and resets nothing else; counters and
// the recalculation timestamp survive.
func (c *BalanceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshots = make(map[domain.PeriodKey]*domain.PeriodSnapshot)
}
