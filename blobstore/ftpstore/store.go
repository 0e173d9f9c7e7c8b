// Package ftpstore reads GDAC files over FTP.
//
// FTP allows one transfer per control connection, so every read dials its
// own connection. Partial reads restart the transfer at the requested offset
// (REST) and hang up once enough bytes arrived.
package ftpstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/euroargodev/argoindex/blobstore"
	"github.com/euroargodev/argoindex/internal/resource"
	"github.com/jlaffaye/ftp"
)

// conn is the part of *ftp.ServerConn the store needs.
type conn interface {
	FileSize(path string) (int64, error)
	RetrFrom(path string, offset uint64) (io.ReadCloser, error)
	Quit() error
}

type serverConn struct {
	*ftp.ServerConn
}

func (c serverConn) RetrFrom(path string, offset uint64) (io.ReadCloser, error) {
	return c.ServerConn.RetrFrom(path, offset)
}

// dialFunc opens an authenticated connection.
type dialFunc func(ctx context.Context) (conn, error)

// Store implements blobstore.Reader for an FTP GDAC root.
type Store struct {
	host string
	root string
	dial dialFunc
	rc   *resource.Controller
}

var _ blobstore.Reader = (*Store)(nil)

type options struct {
	timeout time.Duration
	limits  resource.Config
}

// Option configures a Store.
type Option func(*options)

// WithTimeout sets the dial and command timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLimits throttles connections and download throughput.
func WithLimits(cfg resource.Config) Option {
	return func(o *options) { o.limits = cfg }
}

// New creates a store for rawURL such as ftp://ftp.ifremer.fr/ifremer/argo.
// Credentials default to anonymous.
func New(rawURL string, optFns ...Option) (*Store, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "ftp" {
		return nil, fmt.Errorf("ftpstore: unsupported scheme %q", u.Scheme)
	}

	o := options{timeout: 60 * time.Second}
	for _, fn := range optFns {
		fn(&o)
	}

	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), "21")
	}
	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}

	dial := func(ctx context.Context) (conn, error) {
		c, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(o.timeout))
		if err != nil {
			return nil, err
		}
		if err := c.Login(user, pass); err != nil {
			_ = c.Quit()
			return nil, err
		}
		return serverConn{c}, nil
	}

	return newStore(u.Hostname(), u.Path, dial, resource.NewController(o.limits)), nil
}

func newStore(host, root string, dial dialFunc, rc *resource.Controller) *Store {
	if root == "" {
		root = "/"
	}
	return &Store{host: host, root: root, dial: dial, rc: rc}
}

// Host returns the server name.
func (s *Store) Host() string { return s.host }

func (s *Store) path(name string) string {
	return path.Join(s.root, name)
}

func (s *Store) connect(ctx context.Context) (conn, error) {
	if err := s.rc.AcquireRequest(ctx); err != nil {
		return nil, err
	}
	c, err := s.dial(ctx)
	if err != nil {
		s.rc.ReleaseRequest()
		return nil, err
	}
	return c, nil
}

func (s *Store) hangup(c conn) {
	_ = c.Quit()
	s.rc.ReleaseRequest()
}

func isNotFound(err error) bool {
	var te *textproto.Error
	return errors.As(err, &te) && te.Code == ftp.StatusFileUnavailable
}

func (s *Store) size(ctx context.Context, name string) (int64, error) {
	c, err := s.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer s.hangup(c)
	return c.FileSize(s.path(name))
}

// Exists asks the server for the file size.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.size(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	size, err := s.size(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("ftp://%s%s: %w", s.host, s.path(name), blobstore.ErrNotFound)
		}
		return nil, err
	}
	return &ftpBlob{store: s, name: s.path(name), size: size}, nil
}

type ftpBlob struct {
	store *Store
	name  string
	size  int64
}

func (b *ftpBlob) Close() error { return nil }

func (b *ftpBlob) Size() int64 { return b.size }

// transfer owns the connection of one RETR.
type transfer struct {
	io.Reader
	store *Store
	c     conn
	resp  io.ReadCloser
}

func (t *transfer) Close() error {
	// A transfer cut short makes the server answer 426; the data is fine.
	_ = t.resp.Close()
	t.store.hangup(t.c)
	return nil
}

func (b *ftpBlob) retr(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	c, err := b.store.connect(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := c.RetrFrom(b.name, uint64(off))
	if err != nil {
		b.store.hangup(c)
		return nil, err
	}
	body := resource.NewRateLimitedReader(ctx, resp, b.store.rc)
	return &transfer{Reader: io.LimitReader(body, length), store: b.store, c: c, resp: resp}, nil
}

func (b *ftpBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	want := min(int64(len(p)), b.size-off)
	t, err := b.retr(ctx, off, want)
	if err != nil {
		return 0, err
	}
	defer t.Close()

	n, err := io.ReadFull(t, p[:want])
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

func (b *ftpBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= b.size || length <= 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return b.retr(ctx, off, min(length, b.size-off))
}

// IsFTP reports whether host uses the ftp scheme.
func IsFTP(host string) bool {
	return strings.HasPrefix(host, "ftp://")
}
