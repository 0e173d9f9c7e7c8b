package argoindex

import (
	"fmt"
	"strings"
	"time"

	"github.com/euroargodev/argoindex/blobstore"
	"github.com/euroargodev/argoindex/codec"
)

// Backend selects the in-memory representation of the index.
type Backend string

const (
	// BackendTyped keeps typed columns and evaluates searches with roaring
	// bitmaps.
	BackendTyped Backend = "typed"
	// BackendLabeled keeps raw cells with their source row labels and
	// evaluates searches with boolean masks.
	BackendLabeled Backend = "labeled"
)

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendTyped, BackendLabeled:
		return b, nil
	case "":
		return BackendTyped, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, s)
	}
}

// Tag prefixes cache keys with the artifact family that produced them.
type Tag string

const (
	TagTyped   Tag = "pq"
	TagLabeled Tag = "pd"
	TagH5      Tag = "h5"
)

// DefaultHost is the Ifremer HTTPS GDAC.
const DefaultHost = "https://data-argo.ifremer.fr"

// DefaultKnownFTPHosts are the FTP operators the store accepts.
var DefaultKnownFTPHosts = []string{"ifremer", "usgodae"}

const (
	defaultTimeout       = 60 * time.Second
	defaultMemCacheBytes = 64 << 20
	defaultDiskCacheSize = 1 << 30
)

type options struct {
	indexFile        string
	dataset          Dataset
	backend          Backend
	cache            bool
	cacheDir         string
	artifacts        blobstore.BlobStore
	indexStore       blobstore.Reader
	codec            codec.Codec
	timeout          time.Duration
	maxRequests      int64
	bytesPerSec      int64
	memCacheBytes    int64
	diskCacheBytes   int64
	knownFTPHosts    []string
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures New.
type Option func(*options)

// WithIndexFile sets the index file name, relative to the host. It takes
// precedence over WithDataset.
func WithIndexFile(name string) Option {
	return func(o *options) {
		o.indexFile = name
	}
}

// WithDataset picks the index file of a dataset: ar_index_global_prof.txt
// for phy, argo_synthetic-profile_index.txt for bgc.
func WithDataset(d Dataset) Option {
	return func(o *options) {
		o.dataset = d
	}
}

// WithBackend selects the index representation.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithCache enables the three cache tiers: raw index blocks, search
// results and exported frames.
func WithCache(enabled bool) Option {
	return func(o *options) {
		o.cache = enabled
	}
}

// WithCacheDir keeps cached artifacts under dir:
//
//	dir/index/   raw index blocks
//	dir/search/  search results
//	dir/export/  exported frames
//
// Without a directory the caches live in memory.
func WithCacheDir(dir string) Option {
	return func(o *options) {
		o.cacheDir = dir
	}
}

// WithArtifactStore stores search results and exported frames in s instead
// of the cache directory, e.g. a shared S3 bucket or redis:
//
//	rs, _ := redis.Dial(ctx, "redis://localhost:6379/0", "argo:", 24*time.Hour)
//	s, _ := argoindex.New(ctx, argoindex.DefaultHost,
//	    argoindex.WithCache(true),
//	    argoindex.WithArtifactStore(rs))
func WithArtifactStore(s blobstore.BlobStore) Option {
	return func(o *options) {
		o.artifacts = s
	}
}

// WithIndexStore reads index files from r instead of a store derived from
// the host.
func WithIndexStore(r blobstore.Reader) Option {
	return func(o *options) {
		o.indexStore = r
	}
}

// WithCodec sets the artifact codec. If nil is passed, codec.Default is used.
// New rejects codecs for which codec.IsBinary is false.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithTimeout sets the remote I/O timeout passed to the HTTP client and the
// FTP dialer.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithRateLimit bounds concurrent requests and download throughput against
// a remote host. Zero means unlimited.
func WithRateLimit(maxRequests, bytesPerSec int64) Option {
	return func(o *options) {
		o.maxRequests = maxRequests
		o.bytesPerSec = bytesPerSec
	}
}

// WithIndexCacheSize sizes the raw index block caches: mem bytes in RAM and
// disk bytes under the cache directory. Values <= 0 keep the defaults.
func WithIndexCacheSize(mem, disk int64) Option {
	return func(o *options) {
		if mem > 0 {
			o.memCacheBytes = mem
		}
		if disk > 0 {
			o.diskCacheBytes = disk
		}
	}
}

// WithKnownFTPHosts replaces the list of FTP operators accepted as hosts.
// A host is accepted when it contains one of the names.
func WithKnownFTPHosts(names ...string) Option {
	return func(o *options) {
		o.knownFTPHosts = names
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &argoindex.BasicMetricsCollector{}
//	s, _ := argoindex.New(ctx, host, argoindex.WithMetricsCollector(metrics))
//	// ... use s ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, matches: %d\n", stats.SearchCount, stats.SearchMatches)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		dataset:          DatasetPhy,
		backend:          BackendTyped,
		codec:            codec.Default,
		timeout:          defaultTimeout,
		memCacheBytes:    defaultMemCacheBytes,
		diskCacheBytes:   defaultDiskCacheSize,
		knownFTPHosts:    DefaultKnownFTPHosts,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.indexFile == "" {
		o.indexFile = o.dataset.IndexFile()
	}
	return o
}

// CallOption tunes a single Load, Run, search or export call.
type CallOption func(*callOptions)

type callOptions struct {
	force     bool
	maxRows   int // < 0: no cap
	fullIndex bool
}

// Force reloads the index even if it is already loaded.
func Force() CallOption {
	return func(o *callOptions) { o.force = true }
}

// MaxRows caps the number of rows loaded, matched or exported.
func MaxRows(n int) CallOption {
	return func(o *callOptions) { o.maxRows = n }
}

// FullIndex makes ToDataFrame, ReadWMO and RecordsPerWMO use the index even
// when a search has run.
func FullIndex() CallOption {
	return func(o *callOptions) { o.fullIndex = true }
}

func applyCallOptions(optFns []CallOption) (callOptions, error) {
	o := callOptions{maxRows: -1}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.maxRows < -1 {
		return o, fmt.Errorf("%w: max rows %d is negative", ErrInvalidArgument, o.maxRows)
	}
	return o, nil
}
