// Package testutil builds GDAC index fixtures for tests.
//
// This package is intended for use in tests only.
//
// # Fixed fixtures
//
//	dir := t.TempDir()
//	testutil.WriteMirror(t, dir, testutil.CoreIndex, testutil.Gzip)
//
// # Random fixtures
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.Records(500)
//	text := testutil.IndexText(testutil.CoreHeader, rows)
package testutil
