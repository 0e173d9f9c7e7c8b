// Package table holds the in-memory forms of a loaded index.
//
// Columnar keeps typed columns and evaluates predicates with roaring
// bitmaps. Labeled keeps the raw cells of every row together with the row's
// label (its position in the source index) and evaluates predicates with
// boolean masks. Both satisfy Table, so the store above them does not care
// which one it holds.
package table

import (
	"math"
	"time"

	"github.com/euroargodev/argoindex/internal/predicate"
)

// Row is one index record.
type Row struct {
	File              string
	Date              time.Time // zero when missing
	Latitude          float64   // NaN when missing
	Longitude         float64   // NaN when missing
	Ocean             string
	ProfilerType      string
	Institution       string
	Parameters        string
	ParameterDataMode string
	DateUpdate        time.Time
}

// Table is a read-only index table.
type Table interface {
	// Len is the number of rows.
	Len() int
	// Columns lists the column names in file order.
	Columns() []string
	// File returns the file cell of row i.
	File(i int) string
	// Row decodes row i.
	Row(i int) Row
	// Filter returns the first limit rows matching e, in table order. A
	// negative limit keeps every match.
	Filter(e predicate.Expr, limit int) Table
	// Head returns the first n rows.
	Head(n int) Table
	// Count returns how many rows match e.
	Count(e predicate.Expr) int
	MarshalBinary() ([]byte, error)
}

// NoDate marks a missing timestamp in a Columnar date column.
const NoDate = math.MinInt64

func unixOrNone(t time.Time, ok bool) int64 {
	if !ok {
		return NoDate
	}
	return t.Unix()
}

func timeOrZero(v int64) time.Time {
	if v == NoDate {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}

func position(header []string) map[string]int {
	pos := make(map[string]int, len(header))
	for i, c := range header {
		pos[c] = i
	}
	return pos
}

func cell(row []string, pos map[string]int, col string) string {
	i, ok := pos[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
