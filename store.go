package argoindex

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/euroargodev/argoindex/blobstore"
	"github.com/euroargodev/argoindex/blobstore/ftpstore"
	"github.com/euroargodev/argoindex/blobstore/httpstore"
	"github.com/euroargodev/argoindex/codec"
	"github.com/euroargodev/argoindex/internal/cache"
	"github.com/euroargodev/argoindex/internal/indexfile"
	"github.com/euroargodev/argoindex/internal/resource"
)

// Store is the index store of one GDAC host and index file.
//
// A Store is not safe for concurrent use. Load, Run and the search methods
// replace the in-memory index and search result without locking, and the
// cache write-then-read-back of Run is not atomic. Cache writers in
// different processes are not coordinated either: the last write wins.
type Store interface {
	fmt.Stringer

	// Backend reports the index representation.
	Backend() Backend
	// Host is the GDAC root the store was created with.
	Host() string
	// IndexFile is the index file name, relative to Host.
	IndexFile() string
	// IndexPath is Host joined with IndexFile.
	IndexPath() string
	// State reports how far the store has progressed.
	State() State

	// Load reads the index. It is a no-op on a loaded store unless Force is
	// given. MaxRows caps the number of records read.
	Load(ctx context.Context, opts ...CallOption) error
	// Run evaluates the current search criteria. MaxRows keeps the first
	// matches in index order.
	Run(ctx context.Context, opts ...CallOption) error

	SearchWMO(ctx context.Context, wmos []int, opts ...CallOption) error
	SearchCyc(ctx context.Context, cycles []int, opts ...CallOption) error
	SearchWMOCyc(ctx context.Context, wmos, cycles []int, opts ...CallOption) error
	SearchTim(ctx context.Context, box Box, opts ...CallOption) error
	SearchLatLon(ctx context.Context, box Box, opts ...CallOption) error
	SearchLatLonTim(ctx context.Context, box Box, opts ...CallOption) error

	// ToDataFrame materializes the search result, or the index when no
	// search ran or FullIndex is given.
	ToDataFrame(ctx context.Context, opts ...CallOption) (*Frame, error)

	// URI lists the absolute paths of the search result files.
	URI() ([]string, error)
	// URIFullIndex lists the absolute paths of every index file.
	URIFullIndex() ([]string, error)
	// ReadWMO returns the sorted distinct floats of the search result, or of
	// the index.
	ReadWMO(opts ...CallOption) ([]int, error)
	// RecordsPerWMO counts rows per float.
	RecordsPerWMO(opts ...CallOption) (map[int]int, error)

	// ClearCache drops every cached artifact of the three tiers.
	ClearCache(ctx context.Context) error

	NRecords() (int, error)
	NMatch() (int, error)
	NFiles() (int, error)
	// Shape is the number of rows and columns of the index.
	Shape() (rows, cols int, err error)

	// Criteria returns the last search criteria.
	Criteria() Criteria
	// CName is the canonical name of the last search, "full" before any.
	CName() string
	// Sha is the cache key of the last search for an artifact family.
	Sha(tag Tag) string
	// SearchPath is the cache path of the search result.
	SearchPath() string
	// ExportPath is the cache path ToDataFrame would use with the same
	// options.
	ExportPath(opts ...CallOption) string

	// Close releases the block caches.
	Close() error
}

// State is the lifecycle stage of a Store.
type State uint8

const (
	StateUnloaded State = iota
	StateLoaded
	StateSearched
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateSearched:
		return "searched"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

type hostKind uint8

const (
	hostLocal hostKind = iota
	hostHTTP
	hostFTP
)

// classifyHost accepts local paths, any HTTP(S) host and FTP hosts of a
// known operator.
func classifyHost(host string, knownFTP []string) (hostKind, string, error) {
	scheme, rest, ok := strings.Cut(host, "://")
	if !ok {
		return hostLocal, host, nil
	}
	switch strings.ToLower(scheme) {
	case "file":
		return hostLocal, rest, nil
	case "http", "https":
		return hostHTTP, host, nil
	case "ftp":
		for _, name := range knownFTP {
			if name != "" && strings.Contains(host, name) {
				return hostFTP, host, nil
			}
		}
		return 0, "", fmt.Errorf("%w: unknown Argo ftp: %s", ErrPathNotFound, host)
	default:
		return 0, "", fmt.Errorf("%w: unknown protocol for an Argo index store: %s", ErrUnsupportedBackend, scheme)
	}
}

func openHost(kind hostKind, root string, o options) (blobstore.Reader, error) {
	limits := resource.Config{
		MaxConcurrentRequests: o.maxRequests,
		IOLimitBytesPerSec:    o.bytesPerSec,
	}
	switch kind {
	case hostHTTP:
		return httpstore.New(root, httpstore.WithTimeout(o.timeout), httpstore.WithLimits(limits))
	case hostFTP:
		return ftpstore.New(root, ftpstore.WithTimeout(o.timeout), ftpstore.WithLimits(limits))
	default:
		return blobstore.NewLocalStore(root), nil
	}
}

// New creates a store for the index file of host and checks that the index
// exists, raw or gzipped.
//
// Example:
//
//	s, err := argoindex.New(ctx, argoindex.DefaultHost,
//	    argoindex.WithDataset(argoindex.DatasetBGC),
//	    argoindex.WithCache(true),
//	    argoindex.WithCacheDir("/var/cache/argo"))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	if err := s.SearchWMO(ctx, []int{6902746}); err != nil {
//	    return err
//	}
//	uris, _ := s.URI()
func New(ctx context.Context, host string, optFns ...Option) (Store, error) {
	o := applyOptions(optFns)
	if _, err := ParseBackend(string(o.backend)); err != nil {
		return nil, err
	}
	if _, ok := indexfile.ConventionOf(o.indexFile).Columns(); !ok {
		return nil, fmt.Errorf("%w: %s is not a known index convention", ErrInvalidArgument, o.indexFile)
	}
	if !codec.IsBinary(o.codec) {
		return nil, fmt.Errorf("%w: codec %s cannot encode index tables", ErrInvalidArgument, o.codec.Name())
	}
	if len(host) > 1 {
		host = strings.TrimRight(host, "/")
	}

	kind, root, err := classifyHost(host, o.knownFTPHosts)
	if err != nil {
		return nil, err
	}
	reader := o.indexStore
	if reader == nil {
		if reader, err = openHost(kind, root, o); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrPathNotFound, host, err)
		}
	}

	c := &core{
		host:      host,
		indexFile: o.indexFile,
		conv:      indexfile.ConventionOf(o.indexFile),
		reader:    reader,
		cache:     o.cache,
		codec:     o.codec,
		logger:    o.logger.WithHost(host).WithIndex(o.indexFile, o.backend),
		metrics:   o.metricsCollector,
	}
	if err := c.checkIndex(ctx); err != nil {
		return nil, err
	}
	if o.cache {
		if err := c.setupCache(kind, o); err != nil {
			return nil, err
		}
	}

	if o.backend == BackendLabeled {
		return newLabeledStore(c), nil
	}
	return newTypedStore(c), nil
}

func (c *core) checkIndex(ctx context.Context) error {
	for _, name := range []string{c.indexFile, c.indexFile + ".gz"} {
		ok, err := c.reader.Exists(ctx, name)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrPathNotFound, c.IndexPath(), err)
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("%w: index file does not exist: %s", ErrPathNotFound, c.IndexPath())
}

// shardedCacheMinBytes is the RAM tier size from which blocks are spread
// over lock shards. Smaller tiers could not hold a few blocks per shard.
const shardedCacheMinBytes = 256 << 20

// setupCache wires the three tiers. Raw index blocks of remote hosts go to
// a RAM LRU, backed by disk when a cache directory is set. Search results
// and exports go to the artifact store.
func (c *core) setupCache(kind hostKind, o options) error {
	switch {
	case o.artifacts != nil:
		c.artifacts = o.artifacts
	case o.cacheDir != "":
		c.artifacts = blobstore.NewLocalStore(o.cacheDir)
	default:
		c.artifacts = blobstore.NewMemoryStore()
	}

	if kind == hostLocal {
		return nil
	}
	var blocks cache.BlockCache
	if o.memCacheBytes >= shardedCacheMinBytes {
		blocks = cache.NewShardedLRUBlockCache(o.memCacheBytes)
	} else {
		blocks = cache.NewLRUBlockCache(o.memCacheBytes)
	}
	if o.cacheDir != "" {
		disk, err := cache.NewDiskBlockCache(cache.DiskCacheConfig{
			RootDir:      filepath.Join(o.cacheDir, "index"),
			MaxSizeBytes: o.diskCacheBytes,
		})
		if err != nil {
			return fmt.Errorf("argoindex: index cache: %w", err)
		}
		blocks = cache.NewTieredBlockCache(blocks, disk)
	}
	c.blocks = blocks
	c.raw = blobstore.NewCachingStore(c.reader, blocks, c.host, 0)
	c.reader = c.raw
	return nil
}

// Close releases the block caches and waits for pending disk writes.
func (c *core) Close() error {
	if c == nil || c.blocks == nil {
		return nil
	}
	err := c.blocks.Close()
	c.blocks = nil
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, blobstore.ErrNotFound)
}
