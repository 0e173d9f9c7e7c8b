// Package redis provides a BlobStore backed by Redis.
//
// Artifacts are stored as plain string values under a key prefix, with an
// optional TTL so a shared cache can age out stale searches.
package redis

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/euroargodev/argoindex/blobstore"
	"github.com/redis/go-redis/v9"
)

// Store implements blobstore.BlobStore on top of a Redis client.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ blobstore.BlobStore = (*Store)(nil)

// NewStore creates a Redis blob store. A zero ttl keeps entries forever.
func NewStore(client redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

// Dial connects to a Redis URL such as redis://localhost:6379/0 and pings it.
func Dial(ctx context.Context, url, prefix string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewStore(client, prefix, ttl), nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, blobstore.ErrNotFound
	}
	size, err := s.client.StrLen(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	return &redisBlob{client: s.client, key: key, size: size}, nil
}

func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(name)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Put replaces the value in one SET, which Redis applies atomically.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return s.client.Set(ctx, s.key(name), data, s.ttl).Err()
}

func (s *Store) Delete(ctx context.Context, name string) error {
	return s.client.Del(ctx, s.key(name)).Err()
}

// List scans for keys under prefix. Glob metacharacters in the prefix are
// escaped so names are matched literally.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	pattern := globEscape(s.key(prefix)) + "*"

	var names []string
	iter := s.client.Scan(ctx, 0, pattern, 500).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// redisBlob reads ranges with GETRANGE.
type redisBlob struct {
	client redis.UniversalClient
	key    string
	size   int64
}

func (b *redisBlob) Close() error { return nil }

func (b *redisBlob) Size() int64 { return b.size }

func (b *redisBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	end := min(off+int64(len(p))-1, b.size-1)
	data, err := b.client.GetRange(ctx, b.key, off, end).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, blobstore.ErrNotFound
		}
		return 0, err
	}
	n := copy(p, data)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *redisBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= b.size || length <= 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	end := min(off+length-1, b.size-1)
	data, err := b.client.GetRange(ctx, b.key, off, end).Bytes()
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
