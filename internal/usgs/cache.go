package usgs

import (
	"context"
	"math"
	"sync"
)

// PointSource is anything that can resolve a coordinate to an elevation
type PointSource interface {
	Lookup(ctx context.Context, lat, lon float64) (float64, bool)
}

// coordKey quantizes a coordinate to fixed-point microdegrees (~0.1 m) so
// cache keys hash and compare reliably without float formatting.
type coordKey struct {
	lat int64
	lon int64
}

func keyFor(lat, lon float64) coordKey {
	return coordKey{
		lat: int64(math.Round(lat * 1e6)),
		lon: int64(math.Round(lon * 1e6)),
	}
}

type lookupResult struct {
	elevation float64
	ok        bool
}

// Cache memoizes point lookups within a single run. Read-through: on miss
// it calls the underlying source and stores the outcome, no-data included,
// so a coordinate shared across trails is resolved over the network exactly
// once. Process-local, never persisted.
type Cache struct {
	source PointSource

	mu      sync.Mutex
	entries map[coordKey]lookupResult
}

// NewCache wraps a point source with per-run memoization
func NewCache(source PointSource) *Cache {
	return &Cache{
		source:  source,
		entries: make(map[coordKey]lookupResult),
	}
}

// Lookup resolves (lat, lon) through the cache
func (c *Cache) Lookup(ctx context.Context, lat, lon float64) (float64, bool) {
	key := keyFor(lat, lon)

	c.mu.Lock()
	if res, hit := c.entries[key]; hit {
		c.mu.Unlock()
		return res.elevation, res.ok
	}
	c.mu.Unlock()

	elevation, ok := c.source.Lookup(ctx, lat, lon)

	c.mu.Lock()
	c.entries[key] = lookupResult{elevation: elevation, ok: ok}
	c.mu.Unlock()

	return elevation, ok
}

// Len returns the number of cached coordinates
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
