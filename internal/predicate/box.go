package predicate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Box is an index box: [lon_min, lon_max, lat_min, lat_max] optionally
// extended with [date_min, date_max].
type Box struct {
	LonMin, LonMax float64
	LatMin, LatMax float64
	// HasTime marks a 6-element box.
	HasTime    bool
	Start, End time.Time
}

// NewBox builds a 4-element box.
func NewBox(lonMin, lonMax, latMin, latMax float64) Box {
	return Box{LonMin: lonMin, LonMax: lonMax, LatMin: latMin, LatMax: latMax}
}

// NewTimeBox builds a 6-element box.
func NewTimeBox(lonMin, lonMax, latMin, latMax float64, start, end time.Time) Box {
	return Box{
		LonMin: lonMin, LonMax: lonMax,
		LatMin: latMin, LatMax: latMax,
		HasTime: true,
		Start:   start.UTC(), End: end.UTC(),
	}
}

// Len is the number of box elements, 4 or 6.
func (b Box) Len() int {
	if b.HasTime {
		return 6
	}
	return 4
}

// Validate checks ranges and ordering.
func (b Box) Validate() error {
	switch {
	case !inRange(b.LonMin, -180, 360) || !inRange(b.LonMax, -180, 360):
		return invalid("box", b, "longitude must be within [-180, 360]")
	case !inRange(b.LatMin, -90, 90) || !inRange(b.LatMax, -90, 90):
		return invalid("box", b, "latitude must be within [-90, 90]")
	case b.LonMin > b.LonMax:
		return invalid("box", b, "lon_min must not exceed lon_max")
	case b.LatMin > b.LatMax:
		return invalid("box", b, "lat_min must not exceed lat_max")
	case b.HasTime && (b.Start.IsZero() || b.End.IsZero()):
		return invalid("box", b, "dates are required")
	case b.HasTime && b.Start.After(b.End):
		return invalid("box", b, "date_min must not be after date_max")
	}
	return nil
}

func (b Box) String() string {
	s := fmt.Sprintf("[%g, %g, %g, %g", b.LonMin, b.LonMax, b.LatMin, b.LatMax)
	if b.HasTime {
		s += fmt.Sprintf(", %s, %s", FormatTime(b.Start), FormatTime(b.End))
	}
	return s + "]"
}

func inRange(v, lo, hi float64) bool {
	return v == v && v >= lo && v <= hi
}

// ParseBox parses 4 or 6 textual box elements, as given on a command line.
func ParseBox(fields []string) (Box, error) {
	if len(fields) != 4 && len(fields) != 6 {
		return Box{}, invalid("box", fields, "expected 4 or 6 elements")
	}
	var v [4]float64
	for i := range v {
		f, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return Box{}, invalid("box", fields, fmt.Sprintf("element %d is not numeric", i))
		}
		v[i] = f
	}
	b := NewBox(v[0], v[1], v[2], v[3])
	if len(fields) == 6 {
		start, err := ParseTime(fields[4])
		if err != nil {
			return Box{}, err
		}
		end, err := ParseTime(fields[5])
		if err != nil {
			return Box{}, err
		}
		b = NewTimeBox(v[0], v[1], v[2], v[3], start, end)
	}
	return b, b.Validate()
}

var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"20060102150405",
	"20060102",
	"2006-01",
	"2006",
}

// ParseTime parses a box date. Values without a zone are UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, invalid("date", s, "unrecognized date format")
}
