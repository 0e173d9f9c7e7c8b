package table

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/euroargodev/argoindex/internal/indexfile"
	"github.com/euroargodev/argoindex/internal/predicate"
	"github.com/euroargodev/argoindex/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, header string, rows []string) (*Columnar, *Labeled) {
	t.Helper()
	r, err := indexfile.NewReader(strings.NewReader(testutil.IndexText(header, rows)))
	require.NoError(t, err)
	cells, err := r.ReadAll(0)
	require.NoError(t, err)
	return NewColumnar(r.Header(), cells), NewLabeled(r.Header(), cells)
}

func files(tb Table) []string {
	out := make([]string, tb.Len())
	for i := range out {
		out[i] = tb.File(i)
	}
	return out
}

// mustQuery unwraps a builder result; it panics on a bad fixture query.
func mustQuery(q *predicate.Query, err error) predicate.Expr {
	if err != nil {
		panic(err)
	}
	return q.Expr
}

func TestBackendsAgree(t *testing.T) {
	col, lab := load(t, testutil.CoreHeader, testutil.CoreRows)
	start := time.Date(2007, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2007, 9, 1, 0, 0, 0, 0, time.UTC)

	exprs := map[string]predicate.Expr{
		"wmo":        mustQuery(predicate.ByWMO([]int{1901393, 2902696})),
		"cycle 7":    mustQuery(predicate.ByCycle([]int{7})),
		"cycle 1234": mustQuery(predicate.ByCycle([]int{1234})),
		"wmo cyc":    mustQuery(predicate.ByWMOCycle([]int{6902746}, []int{7, 1007})),
		"box":        mustQuery(predicate.ByLatLon(predicate.NewBox(-60, -55, 40, 45))),
		"time":       mustQuery(predicate.ByTime(predicate.NewTimeBox(-180, 180, -90, 90, start, end))),
		"box time":   mustQuery(predicate.ByLatLonTime(predicate.NewTimeBox(-60, -55, 40, 45, start, end))),
	}
	for name, e := range exprs {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, files(col.Filter(e, -1)), files(lab.Filter(e, -1)))
			assert.Equal(t, col.Count(e), lab.Count(e))
			assert.Equal(t, files(col.Filter(e, 1)), files(lab.Filter(e, 1)))
		})
	}
}

func TestBoxInclusive(t *testing.T) {
	col, _ := load(t, testutil.CoreHeader, testutil.CoreRows)
	e := mustQuery(predicate.ByLatLon(predicate.NewBox(-60, -55, 40, 45)))
	got := files(col.Filter(e, -1))
	assert.Equal(t, []string{
		"aoml/1901393/profiles/R1901393_001.nc",
		"aoml/1901393/profiles/R1901393_007.nc",
		"aoml/1901393/profiles/D1901393_012.nc",
	}, got)
}

func TestCyclePaddingDoesNotCrossMatch(t *testing.T) {
	col, _ := load(t, testutil.CoreHeader, testutil.CoreRows)
	got := files(col.Filter(mustQuery(predicate.ByCycle([]int{7})), -1))
	assert.Equal(t, []string{
		"aoml/1901393/profiles/R1901393_007.nc",
		"coriolis/6902746/profiles/R6902746_007.nc",
	}, got)

	got = files(col.Filter(mustQuery(predicate.ByCycle([]int{234})), -1))
	assert.Empty(t, got)
}

func TestMissingPositionNeverMatches(t *testing.T) {
	col, lab := load(t, testutil.CoreHeader, testutil.CoreRows)
	e := mustQuery(predicate.ByLatLon(predicate.NewBox(-180, 360, -90, 90)))
	assert.Equal(t, len(testutil.CoreRows)-1, col.Count(e))
	assert.Equal(t, len(testutil.CoreRows)-1, lab.Count(e))
	assert.True(t, math.IsNaN(col.Row(6).Latitude))
	assert.True(t, math.IsNaN(lab.Row(6).Longitude))
}

func TestLabelsFollowRows(t *testing.T) {
	_, lab := load(t, testutil.CoreHeader, testutil.CoreRows)
	e := mustQuery(predicate.ByWMO([]int{6902746}))
	got := lab.Filter(e, -1).(*Labeled)
	assert.Equal(t, []int{4, 5, 6}, got.Labels())
	assert.Equal(t, []int{0, 1}, lab.Head(2).(*Labeled).Labels())
}

func TestRowDecoding(t *testing.T) {
	col, lab := load(t, testutil.BGCHeader, testutil.SyntheticRows)
	for _, tb := range []Table{col, lab} {
		r := tb.Row(0)
		assert.Equal(t, "PRES TEMP PSAL DOXY", r.Parameters)
		assert.Equal(t, "RRRA", r.ParameterDataMode)
		assert.Equal(t, time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), r.Date)
		assert.Equal(t, -10.5, r.Latitude)
		assert.Equal(t, "844", r.ProfilerType)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	col, lab := load(t, testutil.CoreHeader, testutil.CoreRows)

	data, err := col.MarshalBinary()
	require.NoError(t, err)
	var col2 Columnar
	require.NoError(t, col2.UnmarshalBinary(data))
	assert.Equal(t, files(col), files(&col2))
	assert.Equal(t, col.Columns(), col2.Columns())
	assert.True(t, math.IsNaN(col2.Row(6).Latitude))
	assert.Equal(t, col.Row(0), col2.Row(0))

	sub := lab.Filter(mustQuery(predicate.ByWMO([]int{6902746})), -1).(*Labeled)
	data, err = sub.MarshalBinary()
	require.NoError(t, err)
	var lab2 Labeled
	require.NoError(t, lab2.UnmarshalBinary(data))
	assert.Equal(t, sub.Labels(), lab2.Labels())
	assert.Equal(t, files(sub), files(&lab2))

	assert.Error(t, col2.UnmarshalBinary(data))
}

func TestRandomIndexAgreement(t *testing.T) {
	rng := testutil.NewRNG(4711)
	col, lab := load(t, testutil.CoreHeader, rng.Records(400))
	for _, wmo := range testutil.WMOPool() {
		e := mustQuery(predicate.ByWMO([]int{wmo}))
		got := col.Filter(e, -1)
		assert.Equal(t, files(got), files(lab.Filter(e, -1)))
		for i := 0; i < got.Len(); i++ {
			assert.Equal(t, strconv.Itoa(wmo), strings.Split(got.File(i), "/")[1])
		}
	}

	b := predicate.NewBox(-30, 30, -20, 20)
	e := mustQuery(predicate.ByLatLon(b))
	got := col.Filter(e, -1)
	for i := 0; i < got.Len(); i++ {
		r := got.Row(i)
		assert.True(t, r.Longitude >= b.LonMin && r.Longitude <= b.LonMax)
		assert.True(t, r.Latitude >= b.LatMin && r.Latitude <= b.LatMax)
	}
	assert.Equal(t, got.Len(), lab.Count(e))
}
