package engine

import (
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkg/errors"

	"github.com/hailam/chessplay/internal/board"
)

// Salts folded into the cache key so that the two perspectives, and boards
// of different sizes, never share an entry.
const (
	blackSalt = 0x9E3779B97F4A7C15
	dimsSalt  = 0xC2B2AE3D27D4EB4F
)

// Cached wraps an evaluator with a bounded cache keyed on the position
// hash and perspective. It is safe for concurrent use as long as the inner
// evaluator is.
type Cached struct {
	inner  Evaluator
	cache  *ristretto.Cache[uint64, float64]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCached creates a cache holding up to maxEntries evaluations.
func NewCached(inner Evaluator, maxEntries int64) (*Cached, error) {
	if maxEntries <= 0 {
		maxEntries = 1 << 16
	}
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, float64]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating evaluation cache")
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Evaluate implements Evaluator.
func (c *Cached) Evaluate(gs *board.GameState, perspective board.Color) float64 {
	key := cacheKey(gs, perspective)
	if v, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return v
	}
	c.misses.Add(1)
	v := c.inner.Evaluate(gs, perspective)
	c.cache.Set(key, v, 1)
	return v
}

// Wait blocks until pending writes are visible to Evaluate.
func (c *Cached) Wait() {
	c.cache.Wait()
}

// Stats returns the hit and miss counts.
func (c *Cached) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Close releases the cache.
func (c *Cached) Close() error {
	c.cache.Close()
	return nil
}

func cacheKey(gs *board.GameState, perspective board.Color) uint64 {
	d := gs.Dims()
	key := gs.Hash() ^ uint64(d.Rows*board.MaxDimension+d.Cols)*dimsSalt
	if perspective == board.Black {
		key ^= blackSalt
	}
	return key
}
