package table

import (
	"slices"
	"strings"

	"github.com/euroargodev/argoindex/internal/indexfile"
	"github.com/euroargodev/argoindex/internal/predicate"
	"github.com/euroargodev/argoindex/persistence"
)

// Labeled is a row-oriented frame of raw cells. Each row keeps its label,
// the position it had in the index it was loaded from. Dates are compared as
// packed YYYYMMDDHHMMSS integers.
type Labeled struct {
	columns []string
	labels  []int
	cells   [][]string
	pos     map[string]int
}

var _ Table = (*Labeled)(nil)

// NewLabeled wraps parsed rows, labeled 0..n-1.
func NewLabeled(header []string, rows [][]string) *Labeled {
	labels := make([]int, len(rows))
	for i := range labels {
		labels[i] = i
	}
	return newLabeled(slices.Clone(header), labels, rows)
}

func newLabeled(columns []string, labels []int, cells [][]string) *Labeled {
	return &Labeled{columns: columns, labels: labels, cells: cells, pos: position(columns)}
}

func (l *Labeled) Len() int { return len(l.cells) }

func (l *Labeled) Columns() []string { return slices.Clone(l.columns) }

// Labels returns the source label of each row.
func (l *Labeled) Labels() []int { return slices.Clone(l.labels) }

func (l *Labeled) get(i int, col string) string {
	return cell(l.cells[i], l.pos, col)
}

func (l *Labeled) File(i int) string { return l.get(i, indexfile.ColFile) }

func (l *Labeled) Row(i int) Row {
	date, _ := indexfile.ParseDate(l.get(i, indexfile.ColDate))
	update, _ := indexfile.ParseDate(l.get(i, indexfile.ColDateUpdate))
	return Row{
		File:              l.File(i),
		Date:              date,
		Latitude:          indexfile.ParseCoord(l.get(i, indexfile.ColLatitude)),
		Longitude:         indexfile.ParseCoord(l.get(i, indexfile.ColLongitude)),
		Ocean:             l.get(i, indexfile.ColOcean),
		ProfilerType:      l.get(i, indexfile.ColProfilerType),
		Institution:       l.get(i, indexfile.ColInstitution),
		Parameters:        l.get(i, indexfile.ColParameters),
		ParameterDataMode: l.get(i, indexfile.ColParameterDataMode),
		DateUpdate:        update,
	}
}

// Mask evaluates e on every row.
func (l *Labeled) Mask(e predicate.Expr) []bool {
	mask := make([]bool, l.Len())
	switch e := e.(type) {
	case predicate.Or:
		for _, term := range e {
			for i, ok := range l.Mask(term) {
				mask[i] = mask[i] || ok
			}
		}
	case predicate.And:
		for i := range mask {
			mask[i] = true
		}
		for _, term := range e {
			for i, ok := range l.Mask(term) {
				mask[i] = mask[i] && ok
			}
		}
	case predicate.FileContains:
		for i := range mask {
			mask[i] = strings.Contains(l.File(i), e.Pattern)
		}
	case predicate.Compare:
		l.compare(e, mask)
	}
	return mask
}

func (l *Labeled) compare(e predicate.Compare, mask []bool) {
	switch e.Field {
	case predicate.FieldDate:
		bound := indexfile.Packed(e.Time)
		for i := range mask {
			v, ok := indexfile.ParsePacked(l.get(i, indexfile.ColDate))
			mask[i] = ok && e.HoldsInt(v, bound)
		}
	case predicate.FieldLatitude:
		for i := range mask {
			mask[i] = e.Holds(indexfile.ParseCoord(l.get(i, indexfile.ColLatitude)))
		}
	case predicate.FieldLongitude:
		for i := range mask {
			mask[i] = e.Holds(indexfile.ParseCoord(l.get(i, indexfile.ColLongitude)))
		}
	}
}

func (l *Labeled) Filter(e predicate.Expr, limit int) Table {
	var rows []int
	for i, ok := range l.Mask(e) {
		if limit >= 0 && len(rows) == limit {
			break
		}
		if ok {
			rows = append(rows, i)
		}
	}
	return l.Take(rows)
}

func (l *Labeled) Count(e predicate.Expr) int {
	n := 0
	for _, ok := range l.Mask(e) {
		if ok {
			n++
		}
	}
	return n
}

func (l *Labeled) Head(n int) Table {
	n = min(max(n, 0), l.Len())
	return newLabeled(slices.Clone(l.columns), slices.Clone(l.labels[:n]), l.cells[:n:n])
}

// Take returns the given rows with their labels.
func (l *Labeled) Take(rows []int) *Labeled {
	return newLabeled(slices.Clone(l.columns), pick(l.labels, rows), pick(l.cells, rows))
}

// MarshalBinary encodes the frame, labels included, as a labeled artifact.
func (l *Labeled) MarshalBinary() ([]byte, error) {
	return persistence.Encode(persistence.KindLabeled, l.Len(), func(w *persistence.Writer) {
		w.Strings(l.columns)
		w.Ints(l.labels)
		for _, row := range l.cells {
			w.Strings(row)
		}
	})
}

// UnmarshalBinary decodes a labeled artifact.
func (l *Labeled) UnmarshalBinary(data []byte) error {
	var (
		columns []string
		labels  []int
		cells   [][]string
	)
	_, err := persistence.Decode(data, persistence.KindLabeled, func(r *persistence.Reader) error {
		columns = r.Strings()
		labels = r.Ints()
		cells = make([][]string, 0, len(labels))
		for range labels {
			cells = append(cells, r.Strings())
		}
		return r.Err()
	})
	if err != nil {
		return err
	}
	*l = *newLabeled(columns, labels, cells)
	return nil
}
