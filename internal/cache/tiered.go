package cache

import (
	"context"
	"errors"
)

// TieredBlockCache checks a fast cache first and falls back to a slower one.
// Hits in the slow tier are promoted.
type TieredBlockCache struct {
	l1 BlockCache
	l2 BlockCache
}

// NewTieredBlockCache stacks l1 (RAM) in front of l2 (disk).
func NewTieredBlockCache(l1, l2 BlockCache) *TieredBlockCache {
	return &TieredBlockCache{l1: l1, l2: l2}
}

func (t *TieredBlockCache) Get(ctx context.Context, key CacheKey) ([]byte, bool) {
	if b, ok := t.l1.Get(ctx, key); ok {
		return b, true
	}
	b, ok := t.l2.Get(ctx, key)
	if ok {
		t.l1.Set(ctx, key, b)
	}
	return b, ok
}

func (t *TieredBlockCache) Set(ctx context.Context, key CacheKey, b []byte) {
	t.l1.Set(ctx, key, b)
	t.l2.Set(ctx, key, b)
}

func (t *TieredBlockCache) Invalidate(predicate func(key CacheKey) bool) {
	t.l1.Invalidate(predicate)
	t.l2.Invalidate(predicate)
}

func (t *TieredBlockCache) Close() error {
	return errors.Join(t.l1.Close(), t.l2.Close())
}

// Stats reports hits from either tier; a miss means both tiers missed.
func (t *TieredBlockCache) Stats() (hits, misses int64) {
	h1, _ := t.l1.Stats()
	h2, m2 := t.l2.Stats()
	return h1 + h2, m2
}
