// Package mmap maps local index files into memory.
//
// GDAC index files are a few hundred megabytes and are read front to back,
// so the mapping is opened read-only and usually advised as sequential:
//
//	m, err := mmap.Open("/data/gdac/ar_index_global_prof.txt")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix platforms use mmap(2) and madvise(2); Windows uses
// CreateFileMapping/MapViewOfFile and ignores access hints.
package mmap
