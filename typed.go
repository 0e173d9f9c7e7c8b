package argoindex

import (
	"bytes"
	"io"

	"github.com/euroargodev/argoindex/codec"
	"github.com/euroargodev/argoindex/internal/indexfile"
	"github.com/euroargodev/argoindex/internal/table"
)

// typedStore keeps the index as typed columns and filters with bitmaps.
type typedStore struct {
	*core
}

func newTypedStore(c *core) *typedStore {
	s := &typedStore{core: c}
	c.eng = s
	return s
}

func (s *typedStore) backend() Backend { return BackendTyped }

func (s *typedStore) tag() Tag { return TagTyped }

func (s *typedStore) parse(src io.Reader, conv indexfile.Convention, maxRows int) (table.Table, error) {
	if maxRows >= 0 {
		// Only the head of the stream is pulled from the host.
		head, err := indexfile.Head(src, maxRows)
		if err != nil {
			return nil, err
		}
		src = bytes.NewReader(head)
	}
	header, rows, err := readIndex(src, conv, maxRows)
	if err != nil {
		return nil, err
	}
	return table.NewColumnar(header, rows), nil
}

func (s *typedStore) decode(c codec.Codec, data []byte) (table.Table, error) {
	var t table.Columnar
	if err := c.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
