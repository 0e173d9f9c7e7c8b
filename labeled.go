package argoindex

import (
	"io"

	"github.com/euroargodev/argoindex/codec"
	"github.com/euroargodev/argoindex/internal/indexfile"
	"github.com/euroargodev/argoindex/internal/table"
)

// labeledStore keeps the raw cells of the index together with the row
// labels, and filters with boolean masks.
type labeledStore struct {
	*core
}

func newLabeledStore(c *core) *labeledStore {
	s := &labeledStore{core: c}
	c.eng = s
	return s
}

func (s *labeledStore) backend() Backend { return BackendLabeled }

func (s *labeledStore) tag() Tag { return TagLabeled }

func (s *labeledStore) parse(src io.Reader, conv indexfile.Convention, maxRows int) (table.Table, error) {
	header, rows, err := readIndex(src, conv, maxRows)
	if err != nil {
		return nil, err
	}
	return table.NewLabeled(header, rows), nil
}

func (s *labeledStore) decode(c codec.Codec, data []byte) (table.Table, error) {
	var t table.Labeled
	if err := c.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
