// Package bitmap wraps roaring bitmaps as sets of index row positions.
package bitmap

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap is a set of row positions.
type Bitmap struct {
	rb *roaring.Bitmap
}

// New creates an empty bitmap.
func New() *Bitmap {
	return &Bitmap{rb: roaring.New()}
}

// Of creates a bitmap holding ids.
func Of(ids ...uint32) *Bitmap {
	return &Bitmap{rb: roaring.BitmapOf(ids...)}
}

// Range creates a bitmap holding [0, n).
func Range(n int) *Bitmap {
	b := New()
	b.rb.AddRange(0, uint64(n))
	return b
}

// Add adds a row.
func (b *Bitmap) Add(id uint32) {
	b.rb.Add(id)
}

// Contains checks if a row is in the bitmap.
func (b *Bitmap) Contains(id uint32) bool {
	return b.rb.Contains(id)
}

// IsEmpty returns true if the bitmap is empty.
func (b *Bitmap) IsEmpty() bool {
	return b.rb.IsEmpty()
}

// Cardinality returns the number of rows in the bitmap.
func (b *Bitmap) Cardinality() int {
	return int(b.rb.GetCardinality())
}

// Clone returns a deep copy of the bitmap.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{rb: b.rb.Clone()}
}

// And intersects b with other in place.
func (b *Bitmap) And(other *Bitmap) {
	b.rb.And(other.rb)
}

// Or merges other into b in place.
func (b *Bitmap) Or(other *Bitmap) {
	b.rb.Or(other.rb)
}

// FastOr unions many bitmaps at once.
func FastOr(bs ...*Bitmap) *Bitmap {
	rbs := make([]*roaring.Bitmap, len(bs))
	for i, b := range bs {
		rbs[i] = b.rb
	}
	return &Bitmap{rb: roaring.FastOr(rbs...)}
}

// FastAnd intersects many bitmaps at once.
func FastAnd(bs ...*Bitmap) *Bitmap {
	if len(bs) == 0 {
		return New()
	}
	rbs := make([]*roaring.Bitmap, len(bs))
	for i, b := range bs {
		rbs[i] = b.rb
	}
	return &Bitmap{rb: roaring.FastAnd(rbs...)}
}

// Iterator yields rows in ascending order.
func (b *Bitmap) Iterator() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// First returns up to n rows in ascending order. n < 0 returns all rows.
func (b *Bitmap) First(n int) []int {
	total := b.Cardinality()
	if n < 0 || n > total {
		n = total
	}
	out := make([]int, 0, n)
	if n == 0 {
		return out
	}
	for id := range b.Iterator() {
		out = append(out, int(id))
		if len(out) == n {
			break
		}
	}
	return out
}

// MarshalBinary encodes the bitmap in the portable roaring format.
func (b *Bitmap) MarshalBinary() ([]byte, error) {
	return b.rb.ToBytes()
}

// UnmarshalBinary decodes the portable roaring format.
func (b *Bitmap) UnmarshalBinary(data []byte) error {
	if b.rb == nil {
		b.rb = roaring.New()
	}
	return b.rb.UnmarshalBinary(data)
}
