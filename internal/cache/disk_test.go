package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexKey(path string, off uint64) CacheKey {
	return CacheKey{Kind: CacheKindIndexBlock, Path: path, Offset: off}
}

func TestDiskBlockCache_EvictsWholeSources(t *testing.T) {
	tmpDir := t.TempDir()
	c, err := NewDiskBlockCache(DiskCacheConfig{RootDir: tmpDir, MaxSizeBytes: 1024})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, indexKey("prof", 0), make([]byte, 400))
	c.Set(ctx, indexKey("prof", 1), make([]byte, 400))
	c.Flush()
	got, ok := c.Get(ctx, indexKey("prof", 0))
	require.True(t, ok)
	assert.Len(t, got, 400)

	// 1200 bytes > 1024: every block of the older index goes.
	c.Set(ctx, indexKey("synthetic", 0), make([]byte, 400))
	c.Flush()

	_, ok = c.Get(ctx, indexKey("prof", 0))
	assert.False(t, ok)
	_, ok = c.Get(ctx, indexKey("prof", 1))
	assert.False(t, ok)
	assert.NoFileExists(t, filepath.Join(tmpDir, "index", "prof", "00000000.blk"))
	_, ok = c.Get(ctx, indexKey("synthetic", 0))
	assert.True(t, ok)
	assert.Equal(t, int64(400), c.Size())
}

func TestDiskBlockCache_OversizedSource(t *testing.T) {
	c, err := NewDiskBlockCache(DiskCacheConfig{RootDir: t.TempDir(), MaxSizeBytes: 1000})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	for off := range uint64(3) {
		c.Set(ctx, indexKey("prof", off), make([]byte, 400))
		c.Flush()
	}
	c.Set(ctx, indexKey("prof", 9), make([]byte, 2000))
	c.Flush()

	_, ok := c.Get(ctx, indexKey("prof", 0))
	assert.True(t, ok)
	_, ok = c.Get(ctx, indexKey("prof", 1))
	assert.True(t, ok)
	_, ok = c.Get(ctx, indexKey("prof", 2))
	assert.False(t, ok)
	_, ok = c.Get(ctx, indexKey("prof", 9))
	assert.False(t, ok)
	assert.Equal(t, int64(800), c.Size())
}

func TestDiskBlockCache_Reload(t *testing.T) {
	tmpDir := t.TempDir()
	config := DiskCacheConfig{RootDir: tmpDir, MaxSizeBytes: 10000}
	key := indexKey("ab/cd", 3)

	c1, err := NewDiskBlockCache(config)
	require.NoError(t, err)
	c1.Set(context.Background(), key, []byte("hello"))
	require.NoError(t, c1.Close())

	stale := filepath.Join(tmpDir, "index", "ab", "cd", tmpPrefix+"42")
	require.NoError(t, os.WriteFile(stale, []byte("partial"), 0o644))

	c2, err := NewDiskBlockCache(config)
	require.NoError(t, err)
	got, ok := c2.Get(context.Background(), key)
	assert.True(t, ok)
	assert.Equal(t, "hello", string(got))
	assert.Equal(t, int64(5), c2.Size())
	assert.NoFileExists(t, stale)
}

func TestDiskBlockCache_ReloadKeepsRecency(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	c1, err := NewDiskBlockCache(DiskCacheConfig{RootDir: tmpDir, MaxSizeBytes: 10000})
	require.NoError(t, err)
	c1.Set(ctx, indexKey("old", 0), make([]byte, 400))
	c1.Set(ctx, indexKey("new", 0), make([]byte, 400))
	require.NoError(t, c1.Close())

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(c1.pathOf(indexKey("old", 0)), past, past))

	c2, err := NewDiskBlockCache(DiskCacheConfig{RootDir: tmpDir, MaxSizeBytes: 1000})
	require.NoError(t, err)
	c2.Set(ctx, indexKey("third", 0), make([]byte, 400))
	c2.Flush()

	_, ok := c2.Get(ctx, indexKey("old", 0))
	assert.False(t, ok)
	_, ok = c2.Get(ctx, indexKey("new", 0))
	assert.True(t, ok)
}

func TestDiskBlockCache_Path(t *testing.T) {
	tmpDir := t.TempDir()
	c, err := NewDiskBlockCache(DiskCacheConfig{RootDir: tmpDir, MaxSizeBytes: 10000})
	require.NoError(t, err)

	key := indexKey("foo/bar", 7)
	c.Set(context.Background(), key, []byte("data"))
	c.Flush()

	assert.FileExists(t, filepath.Join(tmpDir, "index", "foo", "bar", "00000007.blk"))

	got, ok := c.Get(context.Background(), key)
	assert.True(t, ok)
	assert.Equal(t, "data", string(got))
}

func TestDiskBlockCache_Invalidate(t *testing.T) {
	tmpDir := t.TempDir()
	c, err := NewDiskBlockCache(DiskCacheConfig{RootDir: tmpDir, MaxSizeBytes: 10000})
	require.NoError(t, err)

	ctx := context.Background()
	c.Set(ctx, indexKey("a", 0), []byte("x"))
	c.Set(ctx, indexKey("b", 0), []byte("y"))

	c.Invalidate(ByPath("a"))

	_, ok := c.Get(ctx, indexKey("a", 0))
	assert.False(t, ok)
	assert.NoFileExists(t, filepath.Join(tmpDir, "index", "a", "00000000.blk"))
	_, ok = c.Get(ctx, indexKey("b", 0))
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Size())
}
