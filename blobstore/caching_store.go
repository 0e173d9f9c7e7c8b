package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"github.com/euroargodev/argoindex/internal/cache"
	"golang.org/x/sync/errgroup"
)

// DefaultBlockSize is the block granularity of the raw index cache.
const DefaultBlockSize = 1 << 20

// CachingStore wraps a Reader and caches the bytes it returns, block by
// block. Blocks are keyed by a fingerprint of the namespace (usually the
// host) and the blob name, so a disk-backed cache survives restarts.
type CachingStore struct {
	inner     Reader
	cache     cache.BlockCache
	namespace string
	blockSize int64
}

// NewCachingStore creates a new CachingStore.
// blockSize defaults to DefaultBlockSize if <= 0.
func NewCachingStore(inner Reader, c cache.BlockCache, namespace string, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &CachingStore{
		inner:     inner,
		cache:     c,
		namespace: namespace,
		blockSize: blockSize,
	}
}

// Fingerprint returns the cache path used for the blocks of name.
func (s *CachingStore) Fingerprint(name string) string {
	sum := sha256.Sum256([]byte(s.namespace + "/" + name))
	return hex.EncodeToString(sum[:])
}

func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		inner:     b,
		cache:     s.cache,
		path:      s.Fingerprint(name),
		blockSize: s.blockSize,
	}, nil
}

func (s *CachingStore) Exists(ctx context.Context, name string) (bool, error) {
	return s.inner.Exists(ctx, name)
}

// Invalidate drops every cached block of name.
func (s *CachingStore) Invalidate(name string) {
	s.cache.Invalidate(cache.ByPath(s.Fingerprint(name)))
}

// Stats returns block cache hits and misses.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}

// CachingBlob wraps a Blob and uses the block cache for reads.
type CachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	path      string
	blockSize int64
}

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *CachingBlob) key(blk int64) cache.CacheKey {
	return cache.CacheKey{
		Kind:   cache.CacheKindIndexBlock,
		Path:   b.path,
		Offset: uint64(blk),
	}
}

func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	size := b.Size()
	if off >= size {
		return 0, io.EOF
	}
	want := min(int64(len(p)), size-off)

	startBlock := off / b.blockSize
	endBlock := (off + want - 1) / b.blockSize

	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	totalRead := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize
		intersectStart := max(blkStart, off)
		intersectEnd := min(blkStart+b.blockSize, off+want)
		if intersectEnd <= intersectStart {
			continue
		}

		blockData, err := b.fetchBlock(ctx, blk)
		if err != nil {
			return totalRead, err
		}

		srcOffset := intersectStart - blkStart
		if srcOffset >= int64(len(blockData)) {
			break
		}
		dstOffset := intersectStart - off
		copySize := min(intersectEnd-intersectStart, int64(len(blockData))-srcOffset)
		totalRead += copy(p[dstOffset:dstOffset+copySize], blockData[srcOffset:])
	}

	if totalRead < len(p) {
		return totalRead, io.EOF
	}
	return totalRead, nil
}

// fillCache loads the blocks of [startBlock, endBlock] that are missing,
// fetching each contiguous run of missing blocks with a single backend read.
func (b *CachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	type run struct{ start, count int64 }
	var missing []run

	runStart := int64(-1)
	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(ctx, b.key(blk)); ok {
			if runStart != -1 {
				missing = append(missing, run{runStart, blk - runStart})
				runStart = -1
			}
			continue
		}
		if runStart == -1 {
			runStart = blk
		}
	}
	if runStart != -1 {
		missing = append(missing, run{runStart, endBlock + 1 - runStart})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(16)

	for _, r := range missing {
		g.Go(func() error {
			byteStart := r.start * b.blockSize
			byteSize := r.count * b.blockSize
			fileSize := b.Size()
			if byteStart >= fileSize {
				return nil
			}
			byteSize = min(byteSize, fileSize-byteStart)

			buf := make([]byte, byteSize)
			n, err := b.inner.ReadAt(gctx, buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			valid := buf[:n]

			for i := int64(0); i < r.count; i++ {
				lo := i * b.blockSize
				if lo >= int64(len(valid)) {
					break
				}
				hi := min(lo+b.blockSize, int64(len(valid)))
				// Copy so one large read buffer is not pinned by many blocks.
				block := make([]byte, hi-lo)
				copy(block, valid[lo:hi])
				b.cache.Set(gctx, b.key(r.start+i), block)
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *CachingBlob) fetchBlock(ctx context.Context, blk int64) ([]byte, error) {
	if data, ok := b.cache.Get(ctx, b.key(blk)); ok {
		return data, nil
	}

	// Evicted between fillCache and now, or the block cache declined it.
	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(ctx, buf, blk*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	valid := buf[:n]
	if n > 0 {
		b.cache.Set(ctx, b.key(blk), valid)
	}
	return valid, nil
}

// ReadRange streams [off, off+length) through the block cache.
func (b *CachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	return io.NopCloser(&contextSectionReader{blob: b, ctx: ctx, off: off, limit: off + length}), nil
}

// contextSectionReader adapts CachingBlob to io.Reader. Reads are issued one
// block at a time so a streaming consumer only pulls what it needs.
type contextSectionReader struct {
	blob  *CachingBlob
	ctx   context.Context
	off   int64
	limit int64
}

func (r *contextSectionReader) Read(p []byte) (int, error) {
	limit := min(r.limit, r.blob.Size())
	if r.off >= limit {
		return 0, io.EOF
	}
	n := min(int64(len(p)), limit-r.off, r.blob.blockSize-r.off%r.blob.blockSize)
	read, err := r.blob.ReadAt(r.ctx, p[:n], r.off)
	r.off += int64(read)
	if errors.Is(err, io.EOF) && read > 0 {
		err = nil
	}
	return read, err
}
