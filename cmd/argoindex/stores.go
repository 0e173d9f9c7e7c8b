package main

import (
	"context"
	"fmt"
	"io"

	"github.com/euroargodev/argoindex/blobstore"
	"github.com/euroargodev/argoindex/blobstore/minio"
	"github.com/euroargodev/argoindex/blobstore/redis"
	"github.com/euroargodev/argoindex/blobstore/s3"
	"github.com/euroargodev/argoindex/config"
)

// openArtifacts builds the artifact store named by the configuration. The
// returned closer is never nil.
func openArtifacts(ctx context.Context, cfg *config.Config) (blobstore.BlobStore, io.Closer, error) {
	a := cfg.Artifacts
	switch a.Store {
	case config.StoreLocal:
		return blobstore.NewLocalStore(cfg.CacheDir), nopCloser{}, nil
	case config.StoreMemory:
		return blobstore.NewMemoryStore(), nopCloser{}, nil
	case config.StoreRedis:
		st, err := redis.Dial(ctx, a.URL, a.Prefix, a.TTL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis artifact store: %w", err)
		}
		return st, st, nil
	case config.StoreS3:
		opts := []s3.Option{s3.WithPrefix(a.Prefix)}
		if a.Region != "" {
			opts = append(opts, s3.WithRegion(a.Region))
		}
		if a.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(a.Endpoint))
		}
		st, err := s3.New(ctx, a.Bucket, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("s3 artifact store: %w", err)
		}
		return st, nopCloser{}, nil
	case config.StoreMinio:
		st, err := minio.Dial(ctx, a.Endpoint, a.AccessKey, a.SecretKey, a.Bucket, a.Prefix, a.UseSSL)
		if err != nil {
			return nil, nil, fmt.Errorf("minio artifact store: %w", err)
		}
		return st, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown artifact store %q", a.Store)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
