package bitmap

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitmap_SetOps(t *testing.T) {
	a := Of(1, 2, 3, 10)
	b := Of(2, 3, 4)

	c := a.Clone()
	c.And(b)
	assert.Equal(t, []int{2, 3}, c.First(-1))

	d := a.Clone()
	d.Or(b)
	assert.Equal(t, []int{1, 2, 3, 4, 10}, d.First(-1))

	assert.Equal(t, 4, a.Cardinality(), "clones must not alias")
}

func TestFastOrAnd(t *testing.T) {
	u := FastOr(Of(5), Of(1), Of(3, 5))
	assert.Equal(t, []int{1, 3, 5}, u.First(-1))

	i := FastAnd(Range(10), Of(3, 12), Of(3, 4))
	assert.Equal(t, []int{3}, i.First(-1))

	assert.True(t, FastAnd().IsEmpty())
	assert.True(t, FastOr().IsEmpty())
}

func TestRange(t *testing.T) {
	r := Range(4)
	assert.Equal(t, 4, r.Cardinality())
	assert.True(t, r.Contains(3))
	assert.False(t, r.Contains(4))
	assert.True(t, Range(0).IsEmpty())
}

func TestFirst(t *testing.T) {
	b := Of(9, 1, 7, 3)
	assert.Equal(t, []int{1, 3}, b.First(2))
	assert.Equal(t, []int{1, 3, 7, 9}, b.First(100))
	assert.Empty(t, b.First(0))
	assert.Empty(t, New().First(5))
}

func TestIterator(t *testing.T) {
	got := slices.Collect(Of(4, 2, 8).Iterator())
	assert.Equal(t, []uint32{2, 4, 8}, got)
}

func TestBinaryRoundTrip(t *testing.T) {
	b := Of(1, 100, 100000)
	data, err := b.MarshalBinary()
	require.NoError(t, err)

	var out Bitmap
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Equal(t, b.First(-1), out.First(-1))
}
