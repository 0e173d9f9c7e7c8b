package argoindex

import (
	"sync/atomic"
	"time"
)

// CacheTier names one of the three artifact caches.
type CacheTier uint8

const (
	// CacheTierIndex holds raw index file blocks.
	CacheTierIndex CacheTier = iota
	// CacheTierSearch holds search results.
	CacheTierSearch
	// CacheTierExport holds materialized frames.
	CacheTierExport
)

func (t CacheTier) String() string {
	switch t {
	case CacheTierIndex:
		return "index"
	case CacheTierSearch:
		return "search"
	case CacheTierExport:
		return "export"
	default:
		return "unknown"
	}
}

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordLoad is called after each index load that touched the backing
	// store. rows is the number of records loaded.
	RecordLoad(rows int, duration time.Duration, err error)

	// RecordSearch is called after each search run.
	RecordSearch(matches int, duration time.Duration, err error)

	// RecordExport is called after each dataframe export.
	RecordExport(rows int, duration time.Duration, err error)

	// RecordCache is called on every artifact cache lookup.
	RecordCache(tier CacheTier, hit bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordExport(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCache(CacheTier, bool)            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
	LoadRecords      atomic.Int64
	LoadTotalNanos   atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchMatches    atomic.Int64
	SearchTotalNanos atomic.Int64
	ExportCount      atomic.Int64
	ExportErrors     atomic.Int64
	CacheHits        [3]atomic.Int64
	CacheMisses      [3]atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(rows int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadRecords.Add(int64(rows))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(matches int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.SearchMatches.Add(int64(matches))
}

// RecordExport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExport(rows int, duration time.Duration, err error) {
	b.ExportCount.Add(1)
	if err != nil {
		b.ExportErrors.Add(1)
	}
}

// RecordCache implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCache(tier CacheTier, hit bool) {
	if int(tier) >= len(b.CacheHits) {
		return
	}
	if hit {
		b.CacheHits[tier].Add(1)
	} else {
		b.CacheMisses[tier].Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		LoadCount:      b.LoadCount.Load(),
		LoadErrors:     b.LoadErrors.Load(),
		LoadRecords:    b.LoadRecords.Load(),
		LoadAvgNanos:   avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		SearchCount:    b.SearchCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchMatches:  b.SearchMatches.Load(),
		SearchAvgNanos: avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		ExportCount:    b.ExportCount.Load(),
		ExportErrors:   b.ExportErrors.Load(),
	}
	for i := range b.CacheHits {
		s.CacheHits[i] = b.CacheHits[i].Load()
		s.CacheMisses[i] = b.CacheMisses[i].Load()
	}
	return s
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state. Cache
// counters are indexed by CacheTier.
type BasicMetricsStats struct {
	LoadCount      int64
	LoadErrors     int64
	LoadRecords    int64
	LoadAvgNanos   int64
	SearchCount    int64
	SearchErrors   int64
	SearchMatches  int64
	SearchAvgNanos int64
	ExportCount    int64
	ExportErrors   int64
	CacheHits      [3]int64
	CacheMisses    [3]int64
}
