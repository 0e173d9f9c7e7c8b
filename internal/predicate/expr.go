// Package predicate builds row predicates over the GDAC profile index.
//
// Builders validate their arguments and return a Query: the Criteria that
// describe the search (and name its cache entries) plus an expression tree
// that each table backend evaluates its own way.
package predicate

import (
	"fmt"
	"strings"
	"time"
)

// Expr is a boolean expression over index rows.
type Expr interface {
	fmt.Stringer
	expr()
}

// Or matches rows matching any of its terms.
type Or []Expr

// And matches rows matching all of its terms.
type And []Expr

// FileContains matches rows whose file column contains Pattern literally.
type FileContains struct {
	Pattern string
}

// Field names a comparable index column.
type Field uint8

const (
	FieldDate Field = iota
	FieldLatitude
	FieldLongitude
)

func (f Field) String() string {
	switch f {
	case FieldDate:
		return "date"
	case FieldLatitude:
		return "latitude"
	case FieldLongitude:
		return "longitude"
	default:
		return "unknown"
	}
}

// Op is a comparison operator. Both are inclusive.
type Op uint8

const (
	GE Op = iota
	LE
)

func (o Op) String() string {
	if o == GE {
		return ">="
	}
	return "<="
}

// Compare matches rows where Field Op bound holds. Date comparisons use Time,
// coordinate comparisons use Value. Missing cells never match.
type Compare struct {
	Field Field
	Op    Op
	Value float64
	Time  time.Time
}

func (Or) expr()           {}
func (And) expr()          {}
func (FileContains) expr() {}
func (Compare) expr()      {}

func (e Or) String() string  { return join(e, " OR ") }
func (e And) String() string { return join(e, " AND ") }

func (e FileContains) String() string {
	return fmt.Sprintf("file ~ %q", e.Pattern)
}

func (e Compare) String() string {
	if e.Field == FieldDate {
		return fmt.Sprintf("%s %s %s", e.Field, e.Op, e.Time.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("%s %s %g", e.Field, e.Op, e.Value)
}

// Holds evaluates a coordinate comparison against v.
func (e Compare) Holds(v float64) bool {
	if v != v { // NaN
		return false
	}
	if e.Op == GE {
		return v >= e.Value
	}
	return v <= e.Value
}

// HoldsInt evaluates a comparison of two ordered integers, such as unix
// seconds or packed YYYYMMDDHHMMSS stamps.
func (e Compare) HoldsInt(v, bound int64) bool {
	if e.Op == GE {
		return v >= bound
	}
	return v <= bound
}

func join[T Expr](terms []T, sep string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}
