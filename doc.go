// Package argoindex provides a searchable store over the profile index files
// of an Argo GDAC (Global Data Assembly Center).
//
// A store reads one index file, the core "ar_index_global_prof.txt", the
// synthetic "argo_synthetic-profile_index.txt" or the bio
// "argo_bio-profile_index.txt", from a local mirror, an HTTP(S) host or a
// known FTP host. The gzip sibling of the file is preferred when present.
//
// # Quick Start
//
//	ctx := context.Background()
//	s, _ := argoindex.New(ctx, argoindex.DefaultHost)
//	defer s.Close()
//
//	_ = s.SearchWMO(ctx, []int{6902746})
//	uris, _ := s.URI()
//	frame, _ := s.ToDataFrame(ctx)
//
// Box searches take [lon_min, lon_max, lat_min, lat_max] and an optional
// date range. Bounds are inclusive:
//
//	box := argoindex.NewTimeBox(-60, -55, 40, 45, start, end)
//	_ = s.SearchLatLonTim(ctx, box)
//
// # Backends
//
// Two in-memory representations are available. BackendTyped keeps typed
// columns and filters with roaring bitmaps. BackendLabeled keeps raw rows
// with their position in the index file and filters with boolean masks.
// Both give the same results.
//
// # Caching
//
// WithCache turns on three cache tiers:
//
//   - raw index blocks of remote hosts, in memory and under the cache
//     directory when one is set;
//   - search results, keyed by the index path, the backend and the
//     canonical name of the search;
//   - exported frames.
//
// Search results and frames go to an artifact store: WithArtifactStore, a
// directory given by WithCacheDir, or memory. Artifacts are encoded with
// codec.Default.
//
// # Thread Safety
//
// A Store is not safe for concurrent use. Use one store per goroutine.
package argoindex
