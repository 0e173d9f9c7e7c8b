package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/euroargodev/argoindex/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore_Integration requires a running MinIO instance.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	ctx := context.Background()
	store, err := Dial(ctx, endpoint, "minioadmin", "minioadmin", "test-argoindex", "test-prefix/", false)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "search/test", data))

	ok, err := store.Exists(ctx, "search/test")
	require.NoError(t, err)
	assert.True(t, ok)

	blob, err := store.Open(ctx, "search/test")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, len(data))
	n, err := blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, data, buf)

	rc, err := blob.ReadRange(ctx, 6, 5)
	require.NoError(t, err)
	part, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(part))
	require.NoError(t, rc.Close())
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "search/")
	require.NoError(t, err)
	assert.Contains(t, names, "search/test")

	require.NoError(t, blobstore.Clear(ctx, store, "search/"))
	ok, err = store.Exists(ctx, "search/test")
	require.NoError(t, err)
	assert.False(t, ok)
}
