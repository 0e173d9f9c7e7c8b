package cache

import "context"

// CacheKind separates key spaces.
type CacheKind uint8

const (
	CacheKindUnknown    CacheKind = iota
	CacheKindIndexBlock           // raw (possibly gzipped) index file blocks
	CacheKindBlob                 // generic blob store blocks
)

func (k CacheKind) String() string {
	switch k {
	case CacheKindIndexBlock:
		return "index"
	case CacheKindBlob:
		return "blob"
	default:
		return "unknown"
	}
}

// CacheKey identifies one block. It must be stable across processes so the
// disk tier can be reused by a later run.
type CacheKey struct {
	Kind CacheKind
	// Path identifies the source, usually a fingerprint of host and file name.
	Path string
	// Offset is the block index within the source.
	Offset uint64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set caches a block. Implementations may copy or retain; caller must treat b as immutable.
	Set(ctx context.Context, key CacheKey, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key CacheKey) bool)
	// Close releases any resources (e.g. background workers).
	Close() error
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}

// ByPath matches every block of the given source.
func ByPath(path string) func(CacheKey) bool {
	return func(k CacheKey) bool { return k.Path == path }
}
