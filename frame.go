package argoindex

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/euroargodev/argoindex/blobstore"
	"github.com/euroargodev/argoindex/internal/indexfile"
	"github.com/euroargodev/argoindex/internal/table"
	"github.com/euroargodev/argoindex/persistence"
	"github.com/euroargodev/argoindex/reftable"
)

// Frame column names that differ from the index file.
const (
	ColInstitutionCode = "institution_code"
	ColProfilerCode    = "profiler_code"
	ColWMO             = "wmo"
	ColInstitution     = "institution"
	ColProfiler        = "profiler"
)

// Profile is one materialized index record.
type Profile struct {
	File      string
	Date      time.Time // zero when missing
	Latitude  float64   // NaN when missing
	Longitude float64   // NaN when missing
	Ocean     string
	// ProfilerCode and InstitutionCode are the raw index codes.
	ProfilerCode      string
	InstitutionCode   string
	Parameters        string
	ParameterDataMode string
	DateUpdate        time.Time

	WMO         int
	Institution string
	Profiler    string
}

// Frame is the user-facing rendition of an index or search result.
type Frame struct {
	Columns  []string
	Profiles []Profile
}

// Len is the number of profiles.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Profiles)
}

// WMOs returns the float number of each profile.
func (f *Frame) WMOs() []int {
	out := make([]int, f.Len())
	for i, p := range f.Profiles {
		out[i] = p.WMO
	}
	return out
}

func frameColumns(src []string) []string {
	out := make([]string, 0, len(src)+3)
	for _, c := range src {
		switch c {
		case indexfile.ColInstitution:
			out = append(out, ColInstitutionCode)
		case indexfile.ColProfilerType:
			out = append(out, ColProfilerCode)
		default:
			out = append(out, c)
		}
	}
	return append(out, ColWMO, ColInstitution, ColProfiler)
}

// wmoOf reads the float number from a "dac/wmo/profiles/file" path.
func wmoOf(file string) (int, error) {
	parts := strings.Split(file, "/")
	if len(parts) < 2 {
		return 0, fmt.Errorf("%w: %q has no float directory", ErrSchema, file)
	}
	wmo, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q has no float directory: %w", ErrSchema, file, err)
	}
	return wmo, nil
}

func materialize(t table.Table) (*Frame, error) {
	f := &Frame{
		Columns:  frameColumns(t.Columns()),
		Profiles: make([]Profile, t.Len()),
	}
	for i := range f.Profiles {
		r := t.Row(i)
		wmo, err := wmoOf(r.File)
		if err != nil {
			return nil, err
		}
		f.Profiles[i] = Profile{
			File:              r.File,
			Date:              r.Date,
			Latitude:          r.Latitude,
			Longitude:         r.Longitude,
			Ocean:             r.Ocean,
			ProfilerCode:      r.ProfilerType,
			InstitutionCode:   r.Institution,
			Parameters:        r.Parameters,
			ParameterDataMode: r.ParameterDataMode,
			DateUpdate:        r.DateUpdate,
			WMO:               wmo,
			Institution:       reftable.Institution(r.Institution),
			Profiler:          reftable.Profiler(r.ProfilerType),
		}
	}
	return f, nil
}

func unixOf(t time.Time) int64 {
	if t.IsZero() {
		return table.NoDate
	}
	return t.Unix()
}

func timeOf(v int64) time.Time {
	if v == table.NoDate {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}

// MarshalBinary encodes the frame as an export artifact.
func (f *Frame) MarshalBinary() ([]byte, error) {
	n := f.Len()
	col := func(get func(p *Profile) string) []string {
		out := make([]string, n)
		for i := range f.Profiles {
			out[i] = get(&f.Profiles[i])
		}
		return out
	}
	ints := func(get func(p *Profile) int64) []int64 {
		out := make([]int64, n)
		for i := range f.Profiles {
			out[i] = get(&f.Profiles[i])
		}
		return out
	}
	floats := func(get func(p *Profile) float64) []float64 {
		out := make([]float64, n)
		for i := range f.Profiles {
			out[i] = get(&f.Profiles[i])
		}
		return out
	}
	return persistence.Encode(persistence.KindFrame, n, func(w *persistence.Writer) {
		w.Strings(f.Columns)
		w.Strings(col(func(p *Profile) string { return p.File }))
		w.Int64s(ints(func(p *Profile) int64 { return unixOf(p.Date) }))
		w.Float64s(floats(func(p *Profile) float64 { return p.Latitude }))
		w.Float64s(floats(func(p *Profile) float64 { return p.Longitude }))
		w.Strings(col(func(p *Profile) string { return p.Ocean }))
		w.Strings(col(func(p *Profile) string { return p.ProfilerCode }))
		w.Strings(col(func(p *Profile) string { return p.InstitutionCode }))
		w.Strings(col(func(p *Profile) string { return p.Parameters }))
		w.Strings(col(func(p *Profile) string { return p.ParameterDataMode }))
		w.Int64s(ints(func(p *Profile) int64 { return unixOf(p.DateUpdate) }))
		w.Int64s(ints(func(p *Profile) int64 { return int64(p.WMO) }))
		w.Strings(col(func(p *Profile) string { return p.Institution }))
		w.Strings(col(func(p *Profile) string { return p.Profiler }))
	})
}

// UnmarshalBinary decodes an export artifact.
func (f *Frame) UnmarshalBinary(data []byte) error {
	var (
		columns                         []string
		file, ocean, profCode, instCode []string
		params, modes, inst, prof       []string
		date, update, wmo               []int64
		lat, lon                        []float64
	)
	rows, err := persistence.Decode(data, persistence.KindFrame, func(r *persistence.Reader) error {
		columns = r.Strings()
		file = r.Strings()
		date = r.Int64s()
		lat = r.Float64s()
		lon = r.Float64s()
		ocean = r.Strings()
		profCode = r.Strings()
		instCode = r.Strings()
		params = r.Strings()
		modes = r.Strings()
		update = r.Int64s()
		wmo = r.Int64s()
		inst = r.Strings()
		prof = r.Strings()
		return r.Err()
	})
	if err != nil {
		return err
	}
	lens := []int{len(file), len(date), len(lat), len(lon), len(ocean), len(profCode), len(instCode),
		len(params), len(modes), len(update), len(wmo), len(inst), len(prof)}
	if slices.ContainsFunc(lens, func(n int) bool { return n != rows }) {
		return persistence.ErrCorrupt
	}

	profiles := make([]Profile, rows)
	for i := range profiles {
		if wmo[i] < 0 || wmo[i] > math.MaxInt32 {
			return persistence.ErrCorrupt
		}
		profiles[i] = Profile{
			File:              file[i],
			Date:              timeOf(date[i]),
			Latitude:          lat[i],
			Longitude:         lon[i],
			Ocean:             ocean[i],
			ProfilerCode:      profCode[i],
			InstitutionCode:   instCode[i],
			Parameters:        params[i],
			ParameterDataMode: modes[i],
			DateUpdate:        timeOf(update[i]),
			WMO:               int(wmo[i]),
			Institution:       inst[i],
			Profiler:          prof[i],
		}
	}
	*f = Frame{Columns: columns, Profiles: profiles}
	return nil
}

// ExportPath is the cache path of the frame ToDataFrame builds with the
// same options.
func (c *core) ExportPath(optFns ...CallOption) string {
	o, _ := applyCallOptions(optFns)
	return c.exportPath(o)
}

func (c *core) exportPath(o callOptions) string {
	base := c.IndexPath() + "/"
	if c.search != nil && !o.fullIndex {
		base += c.Sha(c.eng.tag())
	} else {
		base += string(c.eng.tag()) + "-full"
	}
	if o.maxRows >= 0 {
		return base + "/export." + strconv.Itoa(o.maxRows)
	}
	return base + ".export"
}

// ToDataFrame materializes the search result, or the index when no search
// has run or FullIndex is given. MaxRows keeps the first rows. With the
// cache on, the frame is written to and read back from the artifact store.
func (c *core) ToDataFrame(ctx context.Context, optFns ...CallOption) (f *Frame, err error) {
	o, err := applyCallOptions(optFns)
	if err != nil {
		return nil, err
	}

	var src table.Table
	if c.search != nil && !o.fullIndex {
		if c.search.Len() == 0 {
			return nil, fmt.Errorf("%w: no data found in the index corresponding to your search criteria. Search definition: %s",
				ErrDataNotFound, c.CName())
		}
		src = c.search
	} else {
		if c.index == nil {
			if err := c.load(ctx, false, o.maxRows); err != nil {
				return nil, err
			}
		}
		src = c.index
	}

	start := time.Now()
	path := c.exportPath(o)
	cached := false
	defer func() {
		c.logger.LogExport(ctx, path, f.Len(), cached, err)
		c.metrics.RecordExport(f.Len(), time.Since(start), err)
	}()

	name := exportBlob(path)
	if c.cache {
		ok, err := c.artifacts.Exists(ctx, name)
		if err != nil {
			return nil, err
		}
		c.metrics.RecordCache(CacheTierExport, ok)
		if ok {
			cached = true
			return c.readFrame(ctx, name)
		}
	}

	if o.maxRows >= 0 {
		src = src.Head(o.maxRows)
	}
	f, err = materialize(src)
	if err != nil {
		return nil, err
	}
	if c.cache {
		if err := c.writeArtifact(ctx, name, f); err != nil {
			return nil, err
		}
		back, err := c.readFrame(ctx, name)
		if err != nil {
			return nil, err
		}
		if err := checkReadBack(name, f.Len(), back.Len()); err != nil {
			return nil, err
		}
		return back, nil
	}
	return f, nil
}

func (c *core) readFrame(ctx context.Context, name string) (*Frame, error) {
	data, err := blobstore.ReadAll(ctx, c.artifacts, name)
	if err == nil {
		var f Frame
		if err = c.codec.Unmarshal(data, &f); err == nil {
			c.logger.LogCache(ctx, "read", name, nil)
			return &f, nil
		}
		err = fmt.Errorf("argoindex: decode %s: %w", name, err)
	}
	c.logger.LogCache(ctx, "read", name, err)
	return nil, err
}
