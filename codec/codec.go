// Package codec encodes the artifacts the store caches: search results and
// exported frames.
//
// A Codec turns a value into bytes. Compressed wraps another codec and
// frames its output with an LZ4 or ZSTD block; the frame records the
// algorithm, so any Compressed codec decodes any frame.
package codec

import (
	"encoding"
	"errors"
	"fmt"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ErrUnsupported is returned when a codec cannot handle a value's type.
var ErrUnsupported = errors.New("codec: unsupported value")

// Binary encodes values that implement encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler.
type Binary struct{}

// Marshal encodes v with its MarshalBinary method.
func (Binary) Marshal(v any) ([]byte, error) {
	m, ok := v.(encoding.BinaryMarshaler)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a BinaryMarshaler", ErrUnsupported, v)
	}
	return m.MarshalBinary()
}

// Unmarshal decodes data into v with its UnmarshalBinary method.
func (Binary) Unmarshal(data []byte, v any) error {
	u, ok := v.(encoding.BinaryUnmarshaler)
	if !ok {
		return fmt.Errorf("%w: %T is not a BinaryUnmarshaler", ErrUnsupported, v)
	}
	return u.UnmarshalBinary(data)
}

// Name returns "binary".
func (Binary) Name() string { return "binary" }

// ByName returns a built-in codec by its stable name: json, binary,
// binary+lz4 or binary+zstd.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "binary":
		return Binary{}, true
	case "binary+lz4":
		return Compressed{Inner: Binary{}, Compression: CompressionLZ4}, true
	case "binary+zstd":
		return Compressed{Inner: Binary{}, Compression: CompressionZSTD}, true
	default:
		return nil, false
	}
}

// IsBinary reports whether c encodes through BinaryMarshaler, directly or
// under compression. Only such codecs can carry index tables.
func IsBinary(c Codec) bool {
	switch c := c.(type) {
	case Binary:
		return true
	case Compressed:
		return IsBinary(c.Inner)
	default:
		return false
	}
}

// Default is the codec the store uses for artifacts.
var Default Codec = Compressed{Inner: Binary{}, Compression: CompressionZSTD}
