// Package indexfile reads GDAC index files: comma separated text with an
// 8-line preamble before the column header, optionally gzip compressed.
package indexfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/euroargodev/argoindex/blobstore"
	"github.com/klauspost/compress/gzip"
)

// PreambleLines is the number of comment lines before the header row.
const PreambleLines = 8

// ErrNoHeader is returned when the file ends before its header row.
var ErrNoHeader = errors.New("index file has no header row")

// Open opens name on r, preferring the gzip sibling name+".gz". It returns
// the decompressed stream and the path actually read.
func Open(ctx context.Context, r blobstore.Reader, name string) (io.ReadCloser, string, error) {
	gz := name + ".gz"
	ok, err := r.Exists(ctx, gz)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		rc, err := blobstore.StreamReader(ctx, r, name)
		if err != nil {
			return nil, "", err
		}
		return rc, name, nil
	}

	rc, err := blobstore.StreamReader(ctx, r, gz)
	if err != nil {
		return nil, "", err
	}
	zr, err := gzip.NewReader(rc)
	if err != nil {
		_ = rc.Close()
		return nil, "", fmt.Errorf("%s: %w", gz, err)
	}
	return &gzipStream{Reader: zr, src: rc}, gz, nil
}

type gzipStream struct {
	*gzip.Reader
	src io.ReadCloser
}

func (s *gzipStream) Close() error {
	err := s.Reader.Close()
	if cerr := s.src.Close(); err == nil {
		err = cerr
	}
	return err
}

// Head copies the preamble, the header and at most n data rows of src. The
// rest of src is left unread, so the caller can close it and stop a remote
// transfer early.
func Head(src io.Reader, n int) ([]byte, error) {
	var buf bytes.Buffer
	br := bufio.NewReader(src)
	for lines := 0; lines < n+PreambleLines+1; lines++ {
		line, err := br.ReadBytes('\n')
		buf.Write(line)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Reader yields the data rows of an index file.
type Reader struct {
	csv    *csv.Reader
	header []string
}

// NewReader skips the preamble of src and reads the header row.
func NewReader(src io.Reader) (*Reader, error) {
	br := bufio.NewReader(src)
	for i := 0; i < PreambleLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrNoHeader
			}
			return nil, err
		}
	}

	cr := csv.NewReader(br)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	cr.FieldsPerRecord = len(header)
	return &Reader{csv: cr, header: header}, nil
}

// Header returns the column names.
func (r *Reader) Header() []string {
	return r.header
}

// Read returns the next row, or io.EOF.
func (r *Reader) Read() ([]string, error) {
	return r.csv.Read()
}

// ReadAll reads up to limit rows; limit <= 0 reads every row.
func (r *Reader) ReadAll(limit int) ([][]string, error) {
	var rows [][]string
	for limit <= 0 || len(rows) < limit {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParsePacked parses a YYYYMMDDHHMMSS stamp into its integer form.
func ParsePacked(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 14 {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseDate parses a YYYYMMDDHHMMSS stamp as UTC.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation("20060102150405", strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Packed encodes t as a YYYYMMDDHHMMSS integer.
func Packed(t time.Time) int64 {
	v, _ := strconv.ParseInt(t.UTC().Format("20060102150405"), 10, 64)
	return v
}

// ParseCoord parses a latitude or longitude. Missing or malformed cells are
// NaN.
func ParseCoord(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
