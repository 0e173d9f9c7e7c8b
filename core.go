package argoindex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/euroargodev/argoindex/blobstore"
	"github.com/euroargodev/argoindex/codec"
	"github.com/euroargodev/argoindex/internal/cache"
	"github.com/euroargodev/argoindex/internal/indexfile"
	"github.com/euroargodev/argoindex/internal/predicate"
	"github.com/euroargodev/argoindex/internal/table"
)

// engine is what a backend contributes to the shared store logic.
type engine interface {
	backend() Backend
	tag() Tag
	// parse reads an index stream; maxRows < 0 reads every row.
	parse(src io.Reader, conv indexfile.Convention, maxRows int) (table.Table, error)
	// decode reads a search result artifact.
	decode(c codec.Codec, data []byte) (table.Table, error)
}

// core holds the state machine shared by both backends.
type core struct {
	host      string
	indexFile string
	conv      indexfile.Convention

	reader    blobstore.Reader
	raw       *blobstore.CachingStore
	blocks    cache.BlockCache
	artifacts blobstore.BlobStore
	cache     bool
	codec     codec.Codec

	logger  *Logger
	metrics MetricsCollector
	eng     engine

	state  State
	index  table.Table
	search table.Table
	query  *predicate.Query
}

// readIndex checks the header of an index stream against its convention
// and reads at most limit rows; limit < 0 reads every row.
func readIndex(src io.Reader, conv indexfile.Convention, limit int) ([]string, [][]string, error) {
	r, err := indexfile.NewReader(src)
	if err != nil {
		return nil, nil, err
	}
	if err := indexfile.CheckColumns(conv, r.Header()); err != nil {
		return nil, nil, err
	}
	if limit == 0 {
		return r.Header(), nil, nil
	}
	rows, err := r.ReadAll(max(limit, 0))
	if err != nil {
		return nil, nil, err
	}
	return r.Header(), rows, nil
}

func (c *core) Backend() Backend  { return c.eng.backend() }
func (c *core) Host() string      { return c.host }
func (c *core) IndexFile() string { return c.indexFile }
func (c *core) IndexPath() string { return c.host + "/" + c.indexFile }
func (c *core) State() State      { return c.state }

func (c *core) Load(ctx context.Context, optFns ...CallOption) error {
	o, err := applyCallOptions(optFns)
	if err != nil {
		return err
	}
	return c.load(ctx, o.force, o.maxRows)
}

func (c *core) load(ctx context.Context, force bool, maxRows int) error {
	if c.index != nil && !force {
		return nil
	}

	start := time.Now()
	var hits0, misses0 int64
	if c.raw != nil {
		hits0, misses0 = c.raw.Stats()
	}

	t, src, err := c.readIndexFile(ctx, maxRows)
	if err == nil && maxRows >= 0 && t.Len() > maxRows {
		t = t.Head(maxRows)
	}
	if err == nil && t.Len() == 0 {
		err = fmt.Errorf("%w: no data found in the index %s", ErrDataNotFound, c.IndexPath())
	}

	elapsed := time.Since(start)
	c.logger.LogLoad(ctx, src, lenOf(t), elapsed, err)
	c.metrics.RecordLoad(lenOf(t), elapsed, err)
	if c.raw != nil {
		hits, misses := c.raw.Stats()
		c.metrics.RecordCache(CacheTierIndex, hits > hits0 && misses == misses0)
	}
	if err != nil {
		return err
	}

	c.index = t
	// The previous search was computed on another index.
	c.search = nil
	c.query = nil
	c.state = StateLoaded
	return nil
}

func (c *core) readIndexFile(ctx context.Context, maxRows int) (table.Table, string, error) {
	rc, src, err := indexfile.Open(ctx, c.reader, c.indexFile)
	if err != nil {
		if isNotFound(err) {
			return nil, c.IndexPath(), fmt.Errorf("%w: %s: %w", ErrPathNotFound, c.IndexPath(), err)
		}
		return nil, c.IndexPath(), err
	}
	src = c.host + "/" + src

	t, err := c.eng.parse(rc, c.conv, maxRows)
	if cerr := rc.Close(); err == nil && cerr != nil && maxRows < 0 {
		err = cerr
	}
	if err != nil {
		return nil, src, translateError(err, src)
	}
	return t, src, nil
}

func lenOf(t table.Table) int {
	if t == nil {
		return 0
	}
	return t.Len()
}

func (c *core) Run(ctx context.Context, optFns ...CallOption) error {
	o, err := applyCallOptions(optFns)
	if err != nil {
		return err
	}
	if c.query == nil {
		return fmt.Errorf("%w: no search criteria", ErrSearchNotInitialized)
	}
	if c.index == nil {
		return ErrNotLoaded
	}
	return c.run(ctx, o.maxRows)
}

func (c *core) run(ctx context.Context, maxRows int) (err error) {
	start := time.Now()
	cname := c.CName()
	cached := false
	var result table.Table
	defer func() {
		c.logger.LogSearch(ctx, cname, lenOf(result), cached, err)
		c.metrics.RecordSearch(lenOf(result), time.Since(start), err)
	}()

	name := searchBlob(c.SearchPath())
	if c.cache {
		ok, err := c.artifacts.Exists(ctx, name)
		if err != nil {
			return err
		}
		c.metrics.RecordCache(CacheTierSearch, ok)
		if ok {
			if result, err = c.readSearch(ctx, name); err != nil {
				return err
			}
			cached = true
		}
	}

	if result == nil {
		result = c.index.Filter(c.query.Expr, maxRows)
		if c.cache && result.Len() > 0 {
			if err := c.writeArtifact(ctx, name, result); err != nil {
				return err
			}
			back, err := c.readSearch(ctx, name)
			if err != nil {
				return err
			}
			if err := checkReadBack(name, result.Len(), back.Len()); err != nil {
				return err
			}
			result = back
		}
	}

	c.search = result
	c.state = StateSearched
	return nil
}

func (c *core) readSearch(ctx context.Context, name string) (table.Table, error) {
	data, err := blobstore.ReadAll(ctx, c.artifacts, name)
	if err != nil {
		c.logger.LogCache(ctx, "read", name, err)
		return nil, err
	}
	t, err := c.eng.decode(c.codec, data)
	if err != nil {
		err = fmt.Errorf("argoindex: decode %s: %w", name, err)
	}
	c.logger.LogCache(ctx, "read", name, err)
	return t, err
}

func (c *core) writeArtifact(ctx context.Context, name string, v any) error {
	data, err := c.codec.Marshal(v)
	if err == nil {
		err = c.artifacts.Put(ctx, name, data)
	}
	c.logger.LogCache(ctx, "write", name, err)
	return err
}

// checkReadBack fails when an artifact does not decode to what was written.
func checkReadBack(name string, wrote, read int) error {
	if wrote != read {
		return fmt.Errorf("argoindex: %s read back %d rows, wrote %d", name, read, wrote)
	}
	return nil
}

func searchBlob(path string) string { return "search/" + fingerprint(path) }

func exportBlob(path string) string { return "export/" + fingerprint(path) }

func fingerprint(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])
}

func (c *core) ClearCache(ctx context.Context) error {
	if !c.cache {
		return nil
	}
	if c.raw != nil {
		c.raw.Invalidate(c.indexFile)
		c.raw.Invalidate(c.indexFile + ".gz")
	}
	return errors.Join(
		blobstore.Clear(ctx, c.artifacts, "search/"),
		blobstore.Clear(ctx, c.artifacts, "export/"),
	)
}

func (c *core) NRecords() (int, error) {
	if c.index == nil {
		return 0, fmt.Errorf("%w: load the index first", ErrNotLoaded)
	}
	return c.index.Len(), nil
}

func (c *core) NMatch() (int, error) {
	if c.search == nil {
		return 0, fmt.Errorf("%w: run a search first", ErrSearchNotInitialized)
	}
	return c.search.Len(), nil
}

func (c *core) NFiles() (int, error) {
	switch {
	case c.search != nil:
		return c.search.Len(), nil
	case c.index != nil:
		return c.index.Len(), nil
	default:
		return 0, fmt.Errorf("%w: load the index first", ErrNotLoaded)
	}
}

func (c *core) Shape() (int, int, error) {
	if c.index == nil {
		return 0, 0, fmt.Errorf("%w: load the index first", ErrNotLoaded)
	}
	return c.index.Len(), len(c.index.Columns()), nil
}

func (c *core) Criteria() Criteria {
	if c.query == nil {
		return Criteria{}
	}
	return c.query.Criteria
}

func (c *core) CName() string {
	return c.Criteria().CName()
}

func (c *core) Sha(tag Tag) string {
	return string(tag) + "-" + c.CName()
}

func (c *core) SearchPath() string {
	return c.IndexPath() + "." + c.Sha(c.eng.tag())
}

func (c *core) String() string {
	lines := []string{
		fmt.Sprintf("<argoindex.%s>", c.eng.backend()),
		"Host: " + c.host,
		"Index: " + c.indexFile,
	}
	if c.index != nil {
		lines = append(lines, fmt.Sprintf("Loaded: True (%d records)", c.index.Len()))
	} else {
		lines = append(lines, "Loaded: False")
	}
	if c.search != nil && c.index != nil {
		n := c.search.Len()
		word := "match"
		if n > 1 {
			word = "matches"
		}
		pct := float64(n) * 100 / float64(max(c.index.Len(), 1))
		lines = append(lines, fmt.Sprintf("Searched: True (%d %s, %0.4f%%)", n, word, pct))
	} else {
		lines = append(lines, "Searched: False")
	}
	return strings.Join(lines, "\n")
}
