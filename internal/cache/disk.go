package cache

import (
	"container/list"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// DiskCacheConfig holds configuration for the disk cache.
type DiskCacheConfig struct {
	// RootDir is the directory where blocks are stored.
	RootDir string
	// MaxSizeBytes bounds the bytes kept on disk.
	MaxSizeBytes int64
	// MaxConcurrentWrites limits background disk writes.
	// Defaults to 16 if <= 0.
	MaxConcurrentWrites int64
}

const tmpPrefix = "tmp-blk-"

// DiskBlockCache keeps index file blocks on the local filesystem, laid out
// as <root>/<kind>/<path>/<offset>.blk.
//
// An index is always read from its first block to its last, so a source
// missing some of its blocks still costs a remote transfer. Eviction
// therefore drops whole sources, least recently used first.
type DiskBlockCache struct {
	mu      sync.Mutex
	root    string
	maxSize int64
	size    int64

	sources map[sourceID]*diskSource
	lru     *list.List // *diskSource, most recent at the front

	writeSem *semaphore.Weighted
	wg       sync.WaitGroup

	hits   atomic.Int64
	misses atomic.Int64
}

type sourceID struct {
	kind CacheKind
	path string
}

type diskSource struct {
	id     sourceID
	blocks map[uint64]int64 // offset -> bytes
	size   int64
	elem   *list.Element
}

// NewDiskBlockCache opens the cache at config.RootDir. Blocks left by an
// earlier process are indexed again, and interrupted writes are removed.
func NewDiskBlockCache(config DiskCacheConfig) (*DiskBlockCache, error) {
	if err := os.MkdirAll(config.RootDir, 0o755); err != nil {
		return nil, err
	}

	maxWrites := config.MaxConcurrentWrites
	if maxWrites <= 0 {
		maxWrites = 16
	}

	c := &DiskBlockCache{
		root:     config.RootDir,
		maxSize:  config.MaxSizeBytes,
		sources:  make(map[sourceID]*diskSource),
		lru:      list.New(),
		writeSem: semaphore.NewWeighted(maxWrites),
	}
	if err := c.scan(); err != nil {
		return nil, err
	}
	return c, nil
}

// scan rebuilds the index from the files on disk. Sources are ordered by
// the newest modification time among their blocks.
func (c *DiskBlockCache) scan() error {
	seen := make(map[sourceID]time.Time)
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if strings.HasPrefix(d.Name(), tmpPrefix) {
			_ = os.Remove(path)
			return nil
		}
		key, ok := c.keyOf(path)
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr
		}
		id := sourceID{key.Kind, key.Path}
		if info.ModTime().After(seen[id]) {
			seen[id] = info.ModTime()
		}
		c.add(key, info.Size())
		return nil
	})
	if err != nil {
		return err
	}

	ids := make([]sourceID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b sourceID) int { return seen[a].Compare(seen[b]) })
	for _, id := range ids {
		c.lru.MoveToFront(c.sources[id].elem)
	}
	return nil
}

func (c *DiskBlockCache) pathOf(key CacheKey) string {
	dir := key.Path
	if dir == "" {
		dir = "_"
	}
	return filepath.Join(c.root, key.Kind.String(), filepath.FromSlash(dir), fmt.Sprintf("%08d.blk", key.Offset))
}

func (c *DiskBlockCache) keyOf(path string) (CacheKey, bool) {
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return CacheKey{}, false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 3 {
		return CacheKey{}, false
	}
	kind, ok := parseKind(parts[0])
	if !ok {
		return CacheKey{}, false
	}
	var off uint64
	name := parts[len(parts)-1]
	if n, err := fmt.Sscanf(name, "%d.blk", &off); err != nil || n != 1 || !strings.HasSuffix(name, ".blk") {
		return CacheKey{}, false
	}
	p := strings.Join(parts[1:len(parts)-1], "/")
	if p == "_" {
		p = ""
	}
	return CacheKey{Kind: kind, Path: p, Offset: off}, true
}

func parseKind(s string) (CacheKind, bool) {
	for _, k := range []CacheKind{CacheKindUnknown, CacheKindIndexBlock, CacheKindBlob} {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

func (c *DiskBlockCache) Get(_ context.Context, key CacheKey) ([]byte, bool) {
	c.mu.Lock()
	src, ok := c.sources[sourceID{key.Kind, key.Path}]
	if ok {
		_, ok = src.blocks[key.Offset]
	}
	if ok {
		c.lru.MoveToFront(src.elem)
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	data, err := os.ReadFile(c.pathOf(key))
	if err != nil {
		c.mu.Lock()
		c.drop(key)
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return data, true
}

// Set writes the block in the background. Blocks are immutable, so a cached
// block is never rewritten. When all write slots are busy, or the block
// cannot fit at all, it is not cached.
func (c *DiskBlockCache) Set(_ context.Context, key CacheKey, b []byte) {
	size := int64(len(b))
	if size > c.maxSize {
		return
	}
	c.mu.Lock()
	if src, ok := c.sources[sourceID{key.Kind, key.Path}]; ok {
		c.lru.MoveToFront(src.elem)
		if _, ok := src.blocks[key.Offset]; ok {
			c.mu.Unlock()
			return
		}
	}
	c.mu.Unlock()

	if !c.writeSem.TryAcquire(1) {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.writeSem.Release(1)

		path := c.pathOf(key)
		if err := writeAtomic(path, b); err != nil {
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		c.add(key, size)
		c.shrink(sourceID{key.Kind, key.Path})
		if c.size > c.maxSize {
			// The source alone is over budget: keep its earlier blocks.
			c.drop(key)
		}
	}()
}

func writeAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, tmpPrefix+"*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Invalidate removes matching blocks and waits for pending writes first so
// a block in flight cannot reappear.
func (c *DiskBlockCache) Invalidate(predicate func(key CacheKey) bool) {
	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, src := range c.sources {
		for off := range src.blocks {
			key := CacheKey{Kind: id.kind, Path: id.path, Offset: off}
			if predicate(key) {
				c.drop(key)
			}
		}
	}
}

// Close waits for all background writes to complete.
func (c *DiskBlockCache) Close() error {
	c.wg.Wait()
	return nil
}

// Flush waits for pending writes without closing the cache.
func (c *DiskBlockCache) Flush() {
	c.wg.Wait()
}

func (c *DiskBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the bytes currently indexed on disk.
func (c *DiskBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// The helpers below must be called with mu held.

func (c *DiskBlockCache) add(key CacheKey, size int64) {
	id := sourceID{key.Kind, key.Path}
	src, ok := c.sources[id]
	if !ok {
		src = &diskSource{id: id, blocks: make(map[uint64]int64)}
		src.elem = c.lru.PushFront(src)
		c.sources[id] = src
	}
	c.lru.MoveToFront(src.elem)
	if old, ok := src.blocks[key.Offset]; ok {
		src.size -= old
		c.size -= old
	}
	src.blocks[key.Offset] = size
	src.size += size
	c.size += size
}

func (c *DiskBlockCache) drop(key CacheKey) {
	id := sourceID{key.Kind, key.Path}
	src, ok := c.sources[id]
	if !ok {
		return
	}
	size, ok := src.blocks[key.Offset]
	if !ok {
		return
	}
	_ = os.Remove(c.pathOf(key))
	delete(src.blocks, key.Offset)
	src.size -= size
	c.size -= size
	if len(src.blocks) == 0 {
		c.lru.Remove(src.elem)
		delete(c.sources, id)
	}
}

// shrink evicts least recently used sources other than keep until the
// cache fits.
func (c *DiskBlockCache) shrink(keep sourceID) {
	for c.size > c.maxSize {
		back := c.lru.Back()
		if back == nil {
			return
		}
		src := back.Value.(*diskSource)
		if src.id == keep {
			return
		}
		for off := range src.blocks {
			c.drop(CacheKey{Kind: src.id.kind, Path: src.id.path, Offset: off})
		}
	}
}
