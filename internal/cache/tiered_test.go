package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTieredBlockCache_Promotes(t *testing.T) {
	ctx := context.Background()
	l1 := NewLRUBlockCache(1024)
	l2, err := NewDiskBlockCache(DiskCacheConfig{RootDir: t.TempDir(), MaxSizeBytes: 1 << 20})
	require.NoError(t, err)

	key := CacheKey{Kind: CacheKindIndexBlock, Path: "src", Offset: 0}
	l2.Set(ctx, key, []byte("block"))
	l2.Flush()

	c := NewTieredBlockCache(l1, l2)
	defer c.Close()

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, "block", string(got))

	got, ok = l1.Get(ctx, key)
	require.True(t, ok, "disk hit should be promoted to RAM")
	assert.Equal(t, "block", string(got))
}

func TestTieredBlockCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	l1 := NewLRUBlockCache(1024)
	l2, err := NewDiskBlockCache(DiskCacheConfig{RootDir: t.TempDir(), MaxSizeBytes: 1 << 20})
	require.NoError(t, err)
	c := NewTieredBlockCache(l1, l2)
	defer c.Close()

	key := CacheKey{Kind: CacheKindIndexBlock, Path: "src", Offset: 0}
	c.Set(ctx, key, []byte("block"))
	c.Invalidate(ByPath("src"))

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)
}
