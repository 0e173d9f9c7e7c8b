// Package httpstore reads GDAC files over HTTP(S).
//
// Existence and size come from HEAD requests. Reads use Range GETs, so a
// row-capped load or a cached block fetch only transfers the bytes it needs.
// Servers that ignore Range are handled by skipping the leading bytes.
package httpstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/euroargodev/argoindex/blobstore"
	"github.com/euroargodev/argoindex/internal/resource"
)

// Store implements blobstore.Reader for an HTTP(S) GDAC root.
type Store struct {
	base   *url.URL
	client *http.Client
	rc     *resource.Controller
	agent  string
}

var _ blobstore.Reader = (*Store)(nil)

type options struct {
	client  *http.Client
	timeout time.Duration
	limits  resource.Config
	agent   string
}

// Option configures a Store.
type Option func(*options)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLimits throttles requests and download throughput.
func WithLimits(cfg resource.Config) Option {
	return func(o *options) { o.limits = cfg }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(o *options) { o.agent = agent }
}

// New creates a store rooted at rawURL (e.g. https://data-argo.ifremer.fr).
func New(rawURL string, optFns ...Option) (*Store, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("httpstore: unsupported scheme %q", u.Scheme)
	}

	o := options{timeout: 60 * time.Second, agent: "argoindex"}
	for _, fn := range optFns {
		fn(&o)
	}
	client := o.client
	if client == nil {
		client = &http.Client{Timeout: o.timeout}
	}

	return &Store{
		base:   u,
		client: client,
		rc:     resource.NewController(o.limits),
		agent:  o.agent,
	}, nil
}

// URL returns the absolute URL of name.
func (s *Store) URL(name string) string {
	u := *s.base
	u.Path = path.Join("/", s.base.Path, name)
	return u.String()
}

func (s *Store) do(ctx context.Context, method, name string, header http.Header) (*http.Response, error) {
	if err := s.rc.AcquireRequest(ctx); err != nil {
		return nil, err
	}
	defer s.rc.ReleaseRequest()

	req, err := http.NewRequestWithContext(ctx, method, s.URL(name), nil)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", s.agent)
	return s.client.Do(req)
}

// Exists issues a HEAD request.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	resp, err := s.do(ctx, http.MethodHead, name, nil)
	if err != nil {
		return false, err
	}
	_ = resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return false, nil
	default:
		return false, &StatusError{URL: s.URL(name), Code: resp.StatusCode}
	}
}

// Open issues a HEAD request for the size. When the server does not report a
// length the whole body is downloaded into memory.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	resp, err := s.do(ctx, http.MethodHead, name, nil)
	if err != nil {
		return nil, err
	}
	_ = resp.Body.Close()

	if err := s.check(name, resp); err != nil {
		return nil, err
	}
	if resp.ContentLength >= 0 {
		return &httpBlob{store: s, name: name, size: resp.ContentLength}, nil
	}

	resp, err = s.do(ctx, http.MethodGet, name, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := s.check(name, resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resource.NewRateLimitedReader(ctx, resp.Body, s.rc))
	if err != nil {
		return nil, err
	}
	return &bufferedBlob{data: data}, nil
}

func (s *Store) check(name string, resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusPartialContent:
		return nil
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("%s: %w", s.URL(name), blobstore.ErrNotFound)
	default:
		return &StatusError{URL: s.URL(name), Code: resp.StatusCode}
	}
}

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpstore: %s: unexpected status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

type httpBlob struct {
	store *Store
	name  string
	size  int64
}

func (b *httpBlob) Close() error { return nil }

func (b *httpBlob) Size() int64 { return b.size }

// get returns the body for [off, end]. If the server replies 200 instead
// of 206, the first off bytes are discarded.
func (b *httpBlob) get(ctx context.Context, off, end int64) (io.ReadCloser, error) {
	h := http.Header{}
	h.Set("Range", fmt.Sprintf("bytes=%d-%d", off, end))
	resp, err := b.store.do(ctx, http.MethodGet, b.name, h)
	if err != nil {
		return nil, err
	}
	if err := b.store.check(b.name, resp); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}

	body := resource.NewRateLimitedReader(ctx, resp.Body, b.store.rc)
	if resp.StatusCode == http.StatusOK && off > 0 {
		if _, err := io.CopyN(io.Discard, body, off); err != nil {
			_ = body.Close()
			return nil, err
		}
	}
	return &limitedBody{Reader: io.LimitReader(body, end-off+1), Closer: body}, nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}

func (b *httpBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	end := min(off+int64(len(p))-1, b.size-1)
	body, err := b.get(ctx, off, end)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	n, err := io.ReadFull(body, p[:end-off+1])
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return n, io.EOF
		}
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *httpBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= b.size || length <= 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return b.get(ctx, off, min(off+length-1, b.size-1))
}

type bufferedBlob struct {
	data []byte
}

func (b *bufferedBlob) Close() error { return nil }

func (b *bufferedBlob) Size() int64 { return int64(len(b.data)) }

func (b *bufferedBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return bytes.NewReader(b.data).ReadAt(p, off)
}

func (b *bufferedBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= int64(len(b.data)) {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return io.NopCloser(bytes.NewReader(b.data[off:min(off+length, int64(len(b.data)))])), nil
}

func (b *bufferedBlob) Bytes() ([]byte, error) { return b.data, nil }

// IsHTTP reports whether host uses an http or https scheme.
func IsHTTP(host string) bool {
	return strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://")
}
