package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Writer appends columns to an artifact body. Errors are sticky: once a
// write fails, later writes are no-ops and Err reports the first failure.
type Writer struct {
	cw  *ChecksumWriter
	err error
	tmp [binary.MaxVarintLen64]byte
}

// Encode builds an artifact of kind holding rows rows. body writes the
// columns.
func Encode(kind Kind, rows int, body func(w *Writer)) ([]byte, error) {
	if rows < 0 || uint64(rows) > math.MaxUint32 {
		return nil, fmt.Errorf("persistence: row count %d out of range", rows)
	}
	var payload bytes.Buffer
	w := &Writer{cw: NewChecksumWriter(&payload)}
	body(w)
	if w.err != nil {
		return nil, w.err
	}

	header := FileHeader{
		Magic:    MagicNumber,
		Version:  Version,
		Kind:     kind,
		Rows:     uint32(rows),
		BodySize: uint32(payload.Len()),
		Checksum: w.cw.Sum(),
	}
	out := bytes.NewBuffer(make([]byte, 0, headerSize+payload.Len()))
	if err := binary.Write(out, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	out.Write(payload.Bytes())
	return out.Bytes(), nil
}

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.cw.Write(p)
}

// Uvarint writes an unsigned varint.
func (w *Writer) Uvarint(v uint64) {
	n := binary.PutUvarint(w.tmp[:], v)
	w.write(w.tmp[:n])
}

// String writes a length-prefixed string.
func (w *Writer) String(s string) {
	w.Uvarint(uint64(len(s)))
	w.write([]byte(s))
}

// Strings writes a length-prefixed string column.
func (w *Writer) Strings(v []string) {
	w.Uvarint(uint64(len(v)))
	for _, s := range v {
		w.String(s)
	}
}

// Ints writes a length-prefixed column of non-negative ints.
func (w *Writer) Ints(v []int) {
	w.Uvarint(uint64(len(v)))
	for _, n := range v {
		if n < 0 {
			if w.err == nil {
				w.err = fmt.Errorf("persistence: negative value %d in int column", n)
			}
			return
		}
		w.Uvarint(uint64(n))
	}
}

// Int64s writes a length-prefixed column of fixed-width int64 values.
func (w *Writer) Int64s(v []int64) {
	w.Uvarint(uint64(len(v)))
	buf := make([]byte, 8*len(v))
	for i, n := range v {
		binary.LittleEndian.PutUint64(buf[8*i:], uint64(n))
	}
	w.write(buf)
}

// Float64s writes a length-prefixed column of float64 values. NaN survives
// the round trip.
func (w *Writer) Float64s(v []float64) {
	w.Uvarint(uint64(len(v)))
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(f))
	}
	w.write(buf)
}

// Err returns the first write error.
func (w *Writer) Err() error {
	return w.err
}

// Reader consumes the columns of an artifact body. Errors are sticky like
// Writer's.
type Reader struct {
	data []byte
	off  int
	err  error
}

// Decode validates an artifact of kind and hands its body to body. It
// returns the row count recorded in the header.
func Decode(data []byte, kind Kind, body func(r *Reader) error) (int, error) {
	if len(data) < headerSize {
		return 0, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(data))
	}
	var header FileHeader
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &header); err != nil {
		return 0, err
	}
	if header.Magic != MagicNumber {
		return 0, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != Version {
		return 0, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}
	if header.Kind != kind {
		return 0, fmt.Errorf("%w: got %s, want %s", ErrInvalidKind, header.Kind, kind)
	}
	payload := data[headerSize:]
	if uint64(len(payload)) != uint64(header.BodySize) {
		return 0, fmt.Errorf("%w: body is %d bytes, header says %d", ErrCorrupt, len(payload), header.BodySize)
	}
	if err := VerifyChecksum(payload, header.Checksum); err != nil {
		return 0, err
	}

	r := &Reader{data: payload}
	if err := body(r); err != nil {
		return 0, err
	}
	if r.err != nil {
		return 0, r.err
	}
	return int(header.Rows), nil
}

func (r *Reader) fail(what string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: truncated %s at offset %d", ErrCorrupt, what, r.off)
	}
}

func (r *Reader) take(n int, what string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.fail(what)
		return nil
	}
	p := r.data[r.off : r.off+n]
	r.off += n
	return p
}

// Uvarint reads an unsigned varint.
func (r *Reader) Uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.data[r.off:])
	if n <= 0 {
		r.fail("varint")
		return 0
	}
	r.off += n
	return v
}

func (r *Reader) count(width int) int {
	n := r.Uvarint()
	if r.err != nil {
		return 0
	}
	if n > uint64(len(r.data)-r.off)/uint64(max(width, 1)) {
		r.fail("column")
		return 0
	}
	return int(n)
}

// String reads a length-prefixed string.
func (r *Reader) String() string {
	n := r.count(1)
	return string(r.take(n, "string"))
}

// Strings reads a string column.
func (r *Reader) Strings() []string {
	n := r.count(1)
	out := make([]string, n)
	for i := range out {
		out[i] = r.String()
	}
	return out
}

// Ints reads a column written by Writer.Ints.
func (r *Reader) Ints() []int {
	n := r.count(1)
	out := make([]int, n)
	for i := range out {
		out[i] = int(r.Uvarint())
	}
	return out
}

// Int64s reads a fixed-width int64 column.
func (r *Reader) Int64s() []int64 {
	n := r.count(8)
	p := r.take(8*n, "int64 column")
	out := make([]int64, n)
	for i := range out {
		if p == nil {
			break
		}
		out[i] = int64(binary.LittleEndian.Uint64(p[8*i:]))
	}
	return out
}

// Float64s reads a float64 column.
func (r *Reader) Float64s() []float64 {
	n := r.count(8)
	p := r.take(8*n, "float64 column")
	out := make([]float64, n)
	for i := range out {
		if p == nil {
			break
		}
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(p[8*i:]))
	}
	return out
}

// Err returns the first read error.
func (r *Reader) Err() error {
	return r.err
}
