// Package persistence implements the binary artifact format used to cache
// search results and exported frames.
//
// An artifact is a fixed header followed by a body of length-prefixed
// columns. The header carries a CRC32 of the body so a truncated or corrupt
// cache entry fails to decode instead of yielding a short table.
package persistence

import "errors"

const (
	// MagicNumber identifies artifact files (ASCII: "AIX1").
	MagicNumber = 0x41495831
	// Version is the current artifact format version.
	Version = 0x00010000
)

// Kind identifies the payload of an artifact.
type Kind uint8

const (
	KindColumnar Kind = 1
	KindLabeled  Kind = 2
	KindFrame    Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindColumnar:
		return "columnar"
	case KindLabeled:
		return "labeled"
	case KindFrame:
		return "frame"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
	ErrInvalidKind    = errors.New("unexpected artifact kind")
	ErrCorrupt        = errors.New("corrupt artifact")
)

// FileHeader is the 24-byte header at the start of every artifact.
type FileHeader struct {
	Magic    uint32
	Version  uint32
	Kind     Kind
	Padding  [3]byte
	Rows     uint32
	BodySize uint32
	Checksum uint32 // CRC32 of the body
}

const headerSize = 24
