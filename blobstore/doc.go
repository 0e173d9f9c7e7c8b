// Package blobstore provides the storage abstraction used by the index store.
//
// A Reader gives access to the GDAC host holding the index file. A BlobStore
// additionally accepts writes and backs the search and export caches.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem (GDAC mirror or cache directory) with mmap reads
//   - MemoryStore: in-process store, used when caching without a cache directory
//   - CachingStore: wraps a Reader with a block cache (raw index tier)
//   - httpstore.Store: HTTP(S) GDAC hosts, HEAD + range GETs
//   - ftpstore.Store: FTP GDAC hosts
//   - s3.Store, minio.Store, redis.Store: shared artifact caches
//
// # Custom Implementations
//
// Implement Reader to support other GDAC mirrors:
//
//	type Reader interface {
//	    Open(ctx, name) (Blob, error)
//	    Exists(ctx, name) (bool, error)
//	}
//
// and BlobStore for other cache backends:
//
//	type BlobStore interface {
//	    Reader
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
