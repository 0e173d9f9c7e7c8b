package ftpstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/textproto"
	"os"
	"sync/atomic"
	"testing"

	"github.com/euroargodev/argoindex/blobstore"
	"github.com/jlaffaye/ftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	files  map[string][]byte
	quits  *atomic.Int64
	closed *atomic.Int64
}

func (c *fakeConn) FileSize(p string) (int64, error) {
	data, ok := c.files[p]
	if !ok {
		return 0, &textproto.Error{Code: ftp.StatusFileUnavailable, Msg: "No such file"}
	}
	return int64(len(data)), nil
}

func (c *fakeConn) RetrFrom(p string, offset uint64) (io.ReadCloser, error) {
	data, ok := c.files[p]
	if !ok {
		return nil, &textproto.Error{Code: ftp.StatusFileUnavailable, Msg: "No such file"}
	}
	return &closeCounter{Reader: bytes.NewReader(data[offset:]), n: c.closed}, nil
}

func (c *fakeConn) Quit() error {
	c.quits.Add(1)
	return nil
}

type closeCounter struct {
	io.Reader
	n *atomic.Int64
}

func (c *closeCounter) Close() error {
	c.n.Add(1)
	return nil
}

func newFakeStore(files map[string][]byte) (*Store, *atomic.Int64, *atomic.Int64) {
	quits, closed := new(atomic.Int64), new(atomic.Int64)
	dial := func(context.Context) (conn, error) {
		return &fakeConn{files: files, quits: quits, closed: closed}, nil
	}
	return newStore("ftp.ifremer.fr", "/ifremer/argo", dial, nil), quits, closed
}

func TestStore_Exists(t *testing.T) {
	store, quits, _ := newFakeStore(map[string][]byte{"/ifremer/argo/ar_index_global_prof.txt": []byte("x")})
	ctx := context.Background()

	ok, err := store.Exists(ctx, "ar_index_global_prof.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "ar_index_global_prof.txt.gz")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, int64(2), quits.Load(), "every command hangs up")
}

func TestStore_OpenRead(t *testing.T) {
	store, quits, closed := newFakeStore(map[string][]byte{"/ifremer/argo/idx.txt": []byte("0123456789")})
	ctx := context.Background()

	_, err := store.Open(ctx, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	blob, err := store.Open(ctx, "idx.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(10), blob.Size())

	buf := make([]byte, 4)
	n, err := blob.ReadAt(ctx, buf, 2)
	require.NoError(t, err)
	assert.Equal(t, "2345", string(buf[:n]))

	n, err = blob.ReadAt(ctx, buf, 8)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "89", string(buf[:n]))

	rc, err := blob.ReadRange(ctx, 0, 3)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "012", string(got))

	assert.Equal(t, int64(3), closed.Load())
	assert.Equal(t, int64(5), quits.Load())
}

func TestStore_DialError(t *testing.T) {
	boom := errors.New("connection refused")
	store := newStore("h", "/", func(context.Context) (conn, error) { return nil, boom }, nil)
	_, err := store.Exists(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}

func TestNew(t *testing.T) {
	store, err := New("ftp://ftp.ifremer.fr/ifremer/argo")
	require.NoError(t, err)
	assert.Equal(t, "ftp.ifremer.fr", store.Host())
	assert.Equal(t, "/ifremer/argo/dac/x", store.path("dac/x"))

	_, err = New("https://data-argo.ifremer.fr")
	assert.Error(t, err)
}

func TestIsFTP(t *testing.T) {
	assert.True(t, IsFTP("ftp://usgodae.org/pub/outgoing/argo"))
	assert.False(t, IsFTP("https://data-argo.ifremer.fr"))
}

func TestIntegration_FTP(t *testing.T) {
	host := os.Getenv("ARGOINDEX_FTP_TEST_HOST")
	if host == "" {
		t.Skip("Skipping FTP integration test: ARGOINDEX_FTP_TEST_HOST not set")
	}
	store, err := New(host)
	require.NoError(t, err)

	ctx := context.Background()
	blob, err := store.Open(ctx, "ar_index_global_prof.txt")
	require.NoError(t, err)

	buf := make([]byte, 64)
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, byte('#'), buf[0])
}
