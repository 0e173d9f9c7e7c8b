package argoindex

import (
	"context"
	"time"

	"github.com/euroargodev/argoindex/internal/predicate"
)

// Box is a search box: [lon_min, lon_max, lat_min, lat_max], optionally
// extended with [date_min, date_max]. Bounds are inclusive.
type Box = predicate.Box

// Criteria describes the last search of a store.
type Criteria = predicate.Criteria

// Kind tags Criteria.
type Kind = predicate.Kind

const (
	KindNone     = predicate.KindNone
	KindWMO      = predicate.KindWMO
	KindWMOCycle = predicate.KindWMOCycle
	KindCycle    = predicate.KindCycle
	KindBox      = predicate.KindBox
)

// NewBox builds a 4-element box.
func NewBox(lonMin, lonMax, latMin, latMax float64) Box {
	return predicate.NewBox(lonMin, lonMax, latMin, latMax)
}

// NewTimeBox builds a 6-element box.
func NewTimeBox(lonMin, lonMax, latMin, latMax float64, start, end time.Time) Box {
	return predicate.NewTimeBox(lonMin, lonMax, latMin, latMax, start, end)
}

// ParseBox parses 4 or 6 textual box elements. Dates accept the usual
// ISO-8601 layouts.
func ParseBox(fields []string) (Box, error) {
	b, err := predicate.ParseBox(fields)
	if err != nil {
		return Box{}, translateError(err, "")
	}
	return b, nil
}

// Coordinate and date formatting used in canonical names.
var (
	FormatLon  = predicate.FormatLon
	FormatLat  = predicate.FormatLat
	FormatPrs  = predicate.FormatPrs
	FormatTime = predicate.FormatTime
)

// SearchWMO selects the profiles of the given floats.
func (c *core) SearchWMO(ctx context.Context, wmos []int, opts ...CallOption) error {
	return c.searchWith(ctx, opts, func() (*predicate.Query, error) {
		return predicate.ByWMO(wmos)
	})
}

// SearchCyc selects the given cycles of every float.
func (c *core) SearchCyc(ctx context.Context, cycles []int, opts ...CallOption) error {
	return c.searchWith(ctx, opts, func() (*predicate.Query, error) {
		return predicate.ByCycle(cycles)
	})
}

// SearchWMOCyc selects the given cycles of the given floats.
func (c *core) SearchWMOCyc(ctx context.Context, wmos, cycles []int, opts ...CallOption) error {
	return c.searchWith(ctx, opts, func() (*predicate.Query, error) {
		return predicate.ByWMOCycle(wmos, cycles)
	})
}

// SearchTim selects profiles by date only. The box must carry dates.
func (c *core) SearchTim(ctx context.Context, box Box, opts ...CallOption) error {
	return c.searchWith(ctx, opts, func() (*predicate.Query, error) {
		return predicate.ByTime(box)
	})
}

// SearchLatLon selects profiles inside the box, ignoring its dates.
func (c *core) SearchLatLon(ctx context.Context, box Box, opts ...CallOption) error {
	return c.searchWith(ctx, opts, func() (*predicate.Query, error) {
		return predicate.ByLatLon(box)
	})
}

// SearchLatLonTim selects profiles inside the box and its date range.
func (c *core) SearchLatLonTim(ctx context.Context, box Box, opts ...CallOption) error {
	return c.searchWith(ctx, opts, func() (*predicate.Query, error) {
		return predicate.ByLatLonTime(box)
	})
}

// searchWith validates the arguments before touching the index, so a bad
// argument leaves the previous search in place.
func (c *core) searchWith(ctx context.Context, optFns []CallOption, build func() (*predicate.Query, error)) error {
	o, err := applyCallOptions(optFns)
	if err != nil {
		return err
	}
	q, err := build()
	if err != nil {
		return translateError(err, "")
	}
	if err := c.load(ctx, o.force, -1); err != nil {
		return err
	}
	c.query = q
	return c.run(ctx, o.maxRows)
}
