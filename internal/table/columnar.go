package table

import (
	"slices"
	"strings"

	"github.com/euroargodev/argoindex/internal/bitmap"
	"github.com/euroargodev/argoindex/internal/indexfile"
	"github.com/euroargodev/argoindex/internal/predicate"
	"github.com/euroargodev/argoindex/persistence"
)

// Columnar is a typed column table. Dates are UTC unix seconds.
type Columnar struct {
	columns []string

	file              []string
	date              []int64
	latitude          []float64
	longitude         []float64
	ocean             []string
	profilerType      []string
	institution       []string
	parameters        []string
	parameterDataMode []string
	dateUpdate        []int64
}

var _ Table = (*Columnar)(nil)

// NewColumnar converts parsed rows. Cells of columns absent from header are
// left empty.
func NewColumnar(header []string, rows [][]string) *Columnar {
	pos := position(header)
	n := len(rows)
	c := &Columnar{
		columns:           slices.Clone(header),
		file:              make([]string, n),
		date:              make([]int64, n),
		latitude:          make([]float64, n),
		longitude:         make([]float64, n),
		ocean:             make([]string, n),
		profilerType:      make([]string, n),
		institution:       make([]string, n),
		parameters:        make([]string, n),
		parameterDataMode: make([]string, n),
		dateUpdate:        make([]int64, n),
	}
	for i, row := range rows {
		c.file[i] = cell(row, pos, indexfile.ColFile)
		c.date[i] = unixOrNone(indexfile.ParseDate(cell(row, pos, indexfile.ColDate)))
		c.latitude[i] = indexfile.ParseCoord(cell(row, pos, indexfile.ColLatitude))
		c.longitude[i] = indexfile.ParseCoord(cell(row, pos, indexfile.ColLongitude))
		c.ocean[i] = cell(row, pos, indexfile.ColOcean)
		c.profilerType[i] = cell(row, pos, indexfile.ColProfilerType)
		c.institution[i] = cell(row, pos, indexfile.ColInstitution)
		c.parameters[i] = cell(row, pos, indexfile.ColParameters)
		c.parameterDataMode[i] = cell(row, pos, indexfile.ColParameterDataMode)
		c.dateUpdate[i] = unixOrNone(indexfile.ParseDate(cell(row, pos, indexfile.ColDateUpdate)))
	}
	return c
}

func (c *Columnar) Len() int { return len(c.file) }

func (c *Columnar) Columns() []string { return slices.Clone(c.columns) }

func (c *Columnar) File(i int) string { return c.file[i] }

func (c *Columnar) Row(i int) Row {
	return Row{
		File:              c.file[i],
		Date:              timeOrZero(c.date[i]),
		Latitude:          c.latitude[i],
		Longitude:         c.longitude[i],
		Ocean:             c.ocean[i],
		ProfilerType:      c.profilerType[i],
		Institution:       c.institution[i],
		Parameters:        c.parameters[i],
		ParameterDataMode: c.parameterDataMode[i],
		DateUpdate:        timeOrZero(c.dateUpdate[i]),
	}
}

// Eval returns the rows matching e.
func (c *Columnar) Eval(e predicate.Expr) *bitmap.Bitmap {
	switch e := e.(type) {
	case predicate.Or:
		bs := make([]*bitmap.Bitmap, len(e))
		for i, term := range e {
			bs[i] = c.Eval(term)
		}
		return bitmap.FastOr(bs...)
	case predicate.And:
		if len(e) == 0 {
			return bitmap.Range(c.Len())
		}
		bs := make([]*bitmap.Bitmap, len(e))
		for i, term := range e {
			bs[i] = c.Eval(term)
		}
		return bitmap.FastAnd(bs...)
	case predicate.FileContains:
		b := bitmap.New()
		for i, f := range c.file {
			if strings.Contains(f, e.Pattern) {
				b.Add(uint32(i))
			}
		}
		return b
	case predicate.Compare:
		return c.compare(e)
	default:
		return bitmap.New()
	}
}

func (c *Columnar) compare(e predicate.Compare) *bitmap.Bitmap {
	b := bitmap.New()
	switch e.Field {
	case predicate.FieldDate:
		bound := e.Time.Unix()
		for i, d := range c.date {
			if d != NoDate && e.HoldsInt(d, bound) {
				b.Add(uint32(i))
			}
		}
	case predicate.FieldLatitude:
		for i, v := range c.latitude {
			if e.Holds(v) {
				b.Add(uint32(i))
			}
		}
	case predicate.FieldLongitude:
		for i, v := range c.longitude {
			if e.Holds(v) {
				b.Add(uint32(i))
			}
		}
	}
	return b
}

func (c *Columnar) Filter(e predicate.Expr, limit int) Table {
	return c.Take(c.Eval(e).First(limit))
}

func (c *Columnar) Count(e predicate.Expr) int {
	return c.Eval(e).Cardinality()
}

func (c *Columnar) Head(n int) Table {
	n = min(max(n, 0), c.Len())
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return c.Take(rows)
}

// Take returns the given rows, in the given order.
func (c *Columnar) Take(rows []int) *Columnar {
	out := &Columnar{columns: slices.Clone(c.columns)}
	out.file = pick(c.file, rows)
	out.date = pick(c.date, rows)
	out.latitude = pick(c.latitude, rows)
	out.longitude = pick(c.longitude, rows)
	out.ocean = pick(c.ocean, rows)
	out.profilerType = pick(c.profilerType, rows)
	out.institution = pick(c.institution, rows)
	out.parameters = pick(c.parameters, rows)
	out.parameterDataMode = pick(c.parameterDataMode, rows)
	out.dateUpdate = pick(c.dateUpdate, rows)
	return out
}

func pick[T any](col []T, rows []int) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = col[r]
	}
	return out
}

// MarshalBinary encodes the table as a columnar artifact.
func (c *Columnar) MarshalBinary() ([]byte, error) {
	return persistence.Encode(persistence.KindColumnar, c.Len(), func(w *persistence.Writer) {
		w.Strings(c.columns)
		w.Strings(c.file)
		w.Int64s(c.date)
		w.Float64s(c.latitude)
		w.Float64s(c.longitude)
		w.Strings(c.ocean)
		w.Strings(c.profilerType)
		w.Strings(c.institution)
		w.Strings(c.parameters)
		w.Strings(c.parameterDataMode)
		w.Int64s(c.dateUpdate)
	})
}

// UnmarshalBinary decodes a columnar artifact.
func (c *Columnar) UnmarshalBinary(data []byte) error {
	rows, err := persistence.Decode(data, persistence.KindColumnar, func(r *persistence.Reader) error {
		c.columns = r.Strings()
		c.file = r.Strings()
		c.date = r.Int64s()
		c.latitude = r.Float64s()
		c.longitude = r.Float64s()
		c.ocean = r.Strings()
		c.profilerType = r.Strings()
		c.institution = r.Strings()
		c.parameters = r.Strings()
		c.parameterDataMode = r.Strings()
		c.dateUpdate = r.Int64s()
		return r.Err()
	})
	if err != nil {
		return err
	}
	for _, n := range []int{len(c.date), len(c.latitude), len(c.longitude), len(c.ocean),
		len(c.profilerType), len(c.institution), len(c.parameters), len(c.parameterDataMode), len(c.dateUpdate)} {
		if n != rows || len(c.file) != rows {
			return persistence.ErrCorrupt
		}
	}
	return nil
}
