package folioval

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a price snapshot stays fresh.
const DefaultCacheTTL = 30 * time.Minute

// PriceSnapshot is a normalized price record, whatever provider it came from.
type PriceSnapshot struct {
	Instrument    string    `json:"instrument"`
	Price         float64   `json:"price"`
	AsOf          time.Time `json:"asOf"`
	Source        string    `json:"source"`
	ChangePercent Percent   `json:"changePercent,omitempty"`
}

// PriceCache absorbs provider latency between valuation passes. Staleness is
// checked lazily on Get; there is no background eviction. Implementations
// must swallow their own storage errors and report them as a miss, so the
// caller degrades to re-fetching instead of failing.
type PriceCache interface {
	// Get returns the snapshot for an instrument, or false when absent or
	// older than the TTL.
	Get(instrument string) (PriceSnapshot, bool)
	// Put stores snapshots, overwriting existing entries.
	Put(snapshots map[string]PriceSnapshot)
	// Clear drops all entries.
	Clear()
}

// MemoryCache is the in-memory PriceCache.
type MemoryCache struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]PriceSnapshot
}

// NewMemoryCache creates a cache with the given TTL; ttl <= 0 selects
// DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{ttl: ttl, now: time.Now, m: make(map[string]PriceSnapshot)}
}

func (c *MemoryCache) Get(instrument string) (PriceSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.m[instrument]
	if !ok {
		return PriceSnapshot{}, false
	}
	if c.now().Sub(snap.AsOf) >= c.ttl {
		// Stale entries are discarded on read, not evicted in background.
		delete(c.m, instrument)
		return PriceSnapshot{}, false
	}
	return snap, true
}

func (c *MemoryCache) Put(snapshots map[string]PriceSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, snap := range snapshots {
		c.m[id] = snap
	}
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]PriceSnapshot)
}
