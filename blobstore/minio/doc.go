// Package minio provides a BlobStore implementation using the MinIO client.
//
// It serves as a shared search and export cache on MinIO or any other
// S3-compatible object store (Ceph, Garage, SeaweedFS) without pulling in
// the AWS SDK.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "argo-cache", "argoindex/")
//	idx, err := argoindex.New(ctx, gdac, argoindex.WithCache(true), argoindex.WithArtifactStore(store))
//
// Dial wraps client construction for the common access-key setup.
package minio
