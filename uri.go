package argoindex

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// FileInfo is what a GDAC file path tells about the file.
type FileInfo struct {
	// Origin is the part of the path before "/dac/", usually the host.
	Origin string
	DAC    string
	WMO    int
	// Name is the base name, e.g. "R6902746_001D.nc".
	Name string
	// Prefix holds the data mode letters of a mono-profile file: "R", "D",
	// "BR", "SD" and so on.
	Prefix     string
	Cycle      int // -1 for multi-profile and other float files
	Descending bool
	// Mono is set for single-profile files under "profiles/".
	Mono bool
}

// SplitPath parses a GDAC path of the form
// "<origin>/dac/<dac>/<wmo>/[profiles/]<name>".
func SplitPath(path string) (FileInfo, error) {
	origin, rest, ok := strings.Cut(path, "/dac/")
	if !ok {
		if !strings.HasPrefix(path, "dac/") {
			return FileInfo{}, fmt.Errorf("%w: %q is not a GDAC dac path", ErrInvalidArgument, path)
		}
		rest = strings.TrimPrefix(path, "dac/")
	}
	parts := strings.Split(rest, "/")
	if len(parts) < 3 {
		return FileInfo{}, fmt.Errorf("%w: %q is not a GDAC float path", ErrInvalidArgument, path)
	}
	wmo, err := strconv.Atoi(parts[1])
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %q has no float number: %w", ErrInvalidArgument, path, err)
	}
	fi := FileInfo{
		Origin: origin,
		DAC:    parts[0],
		WMO:    wmo,
		Name:   parts[len(parts)-1],
		Cycle:  -1,
	}
	if len(parts) == 4 && parts[2] == "profiles" {
		if err := fi.parseMono(); err != nil {
			return FileInfo{}, fmt.Errorf("%w: %q: %w", ErrInvalidArgument, path, err)
		}
	}
	return fi, nil
}

// parseMono reads "<prefix><wmo>_<cyc>[D].nc".
func (fi *FileInfo) parseMono() error {
	stem, ok := strings.CutSuffix(fi.Name, ".nc")
	if !ok {
		return fmt.Errorf("%s is not a netCDF file", fi.Name)
	}
	head, cyc, ok := strings.Cut(stem, "_")
	if !ok {
		return fmt.Errorf("%s has no cycle number", fi.Name)
	}
	fi.Prefix = strings.TrimSuffix(head, strconv.Itoa(fi.WMO))
	if cyc, ok = strings.CutSuffix(cyc, "D"); ok {
		fi.Descending = true
	}
	n, err := strconv.Atoi(cyc)
	if err != nil {
		return fmt.Errorf("%s has no cycle number: %w", fi.Name, err)
	}
	fi.Cycle = n
	fi.Mono = true
	return nil
}

// MultiPath is the path of the multi-profile file of the float, for the
// given dataset.
func (fi FileInfo) MultiPath(ds Dataset) string {
	return strings.Join([]string{fi.Origin, "dac", fi.DAC, strconv.Itoa(fi.WMO), strconv.Itoa(fi.WMO) + ds.multiSuffix()}, "/")
}

// URIMono2Multi rewrites mono-profile paths into the multi-profile file of
// each float. The result is sorted and has no duplicates. Whether the files
// exist is not checked.
func URIMono2Multi(uris []string, ds Dataset) ([]string, error) {
	ds, err := ParseDataset(string(ds))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(uris))
	for _, u := range uris {
		fi, err := SplitPath(u)
		if err != nil {
			return nil, err
		}
		out = append(out, fi.MultiPath(ds))
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (c *core) uris(files func(i int) string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = c.host + "/dac/" + files(i)
	}
	return out
}

func (c *core) URI() ([]string, error) {
	if c.search == nil {
		return nil, fmt.Errorf("%w: run a search first", ErrSearchNotInitialized)
	}
	return c.uris(c.search.File, c.search.Len()), nil
}

func (c *core) URIFullIndex() ([]string, error) {
	if c.index == nil {
		return nil, fmt.Errorf("%w: load the index first", ErrNotLoaded)
	}
	return c.uris(c.index.File, c.index.Len()), nil
}

func (c *core) wmoSource(o callOptions) (func(i int) string, int, error) {
	switch {
	case c.search != nil && !o.fullIndex:
		return c.search.File, c.search.Len(), nil
	case c.index != nil:
		return c.index.File, c.index.Len(), nil
	default:
		return nil, 0, fmt.Errorf("%w: load the index first", ErrNotLoaded)
	}
}

func (c *core) RecordsPerWMO(optFns ...CallOption) (map[int]int, error) {
	o, err := applyCallOptions(optFns)
	if err != nil {
		return nil, err
	}
	file, n, err := c.wmoSource(o)
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int)
	for i := 0; i < n; i++ {
		wmo, err := wmoOf(file(i))
		if err != nil {
			return nil, err
		}
		counts[wmo]++
	}
	return counts, nil
}

func (c *core) ReadWMO(optFns ...CallOption) ([]int, error) {
	counts, err := c.RecordsPerWMO(optFns...)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(counts))
	for wmo := range counts {
		out = append(out, wmo)
	}
	slices.Sort(out)
	return out, nil
}
