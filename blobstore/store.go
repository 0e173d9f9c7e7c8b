package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrReadOnly is returned by stores that only support reads.
var ErrReadOnly = errors.New("blobstore: read-only store")

// Reader is the read side of a store: everything the index loader needs from
// a GDAC host (local mirror, HTTP or FTP).
type Reader interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Exists reports whether the blob is present.
	Exists(ctx context.Context, name string) (bool, error)
}

// BlobStore is a read-write store used for cached artifacts.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	Reader
	// Put writes a blob atomically, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns all blob names with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer
	// ReadAt reads len(p) bytes starting at off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange returns a reader for [off, off+length).
	// Closing the reader early stops the transfer for remote stores.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is an optional interface for Blobs that support memory mapping.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// ReadAll reads a whole blob.
func ReadAll(ctx context.Context, r Reader, name string) ([]byte, error) {
	b, err := r.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}

	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Clear deletes every blob under prefix.
func Clear(ctx context.Context, s BlobStore, prefix string) error {
	names, err := s.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := s.Delete(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// StreamReader returns a reader over a whole blob that closes the blob
// together with the stream.
func StreamReader(ctx context.Context, r Reader, name string) (io.ReadCloser, error) {
	b, err := r.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return &blobStream{ReadCloser: rc, blob: b}, nil
}

type blobStream struct {
	io.ReadCloser
	blob Blob
}

func (s *blobStream) Close() error {
	err := s.ReadCloser.Close()
	if cerr := s.blob.Close(); err == nil {
		err = cerr
	}
	return err
}
