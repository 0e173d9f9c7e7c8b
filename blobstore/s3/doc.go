// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// It is used as a shared artifact cache: search results and exported frames
// computed by one process can be reused by another pointing at the same
// bucket and prefix.
//
// # Usage
//
//	store, err := s3.New(ctx, "argo-cache",
//	    s3.WithPrefix("argoindex/"),
//	    s3.WithRegion("eu-west-1"),
//	)
//
//	idx, err := argoindex.New(ctx, "https://data-argo.ifremer.fr",
//	    argoindex.WithCache(true),
//	    argoindex.WithArtifactStore(store),
//	)
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads through the SDK upload manager
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
