package argoindex

import (
	"errors"
	"fmt"
	"strings"

	"github.com/euroargodev/argoindex/internal/indexfile"
	"github.com/euroargodev/argoindex/internal/predicate"
)

var (
	// ErrPathNotFound is returned when the host or the index file cannot be
	// reached.
	ErrPathNotFound = errors.New("path not found")

	// ErrSchema is returned when an index file does not carry the columns of
	// its convention.
	ErrSchema = errors.New("invalid index schema")

	// ErrDataNotFound is returned for an empty index, or when materializing
	// a search without matches.
	ErrDataNotFound = errors.New("data not found")

	// ErrInvalidArgument is returned for malformed WMO, cycle or box
	// arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedBackend is returned for a host protocol the store cannot
	// serve, or an unknown backend name.
	ErrUnsupportedBackend = errors.New("unsupported backend")

	// ErrNotLoaded is returned when an operation needs the index and it has
	// not been loaded yet.
	ErrNotLoaded = errors.New("index not loaded")

	// ErrSearchNotInitialized is returned when an operation needs a search
	// and none has run.
	ErrSearchNotInitialized = errors.New("search not initialized")
)

// SchemaError lists the columns that made an index header invalid.
//
// errors.Is(err, ErrSchema) holds for every SchemaError.
type SchemaError struct {
	Path       string
	Convention string
	Missing    []string
	Unexpected []string
	cause      error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", ErrSchema, e.Path)
	if len(e.Missing) == 0 && len(e.Unexpected) == 0 {
		fmt.Fprintf(&b, ": unknown convention %q", e.Convention)
		return b.String()
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing %s", strings.Join(e.Missing, ","))
	}
	if len(e.Unexpected) > 0 {
		fmt.Fprintf(&b, ": unexpected %s", strings.Join(e.Unexpected, ","))
	}
	return b.String()
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

func (e *SchemaError) Unwrap() error { return e.cause }

// translateError maps errors of the internal packages onto the public
// taxonomy.
func translateError(err error, path string) error {
	if err == nil {
		return nil
	}

	var ce *indexfile.ColumnsError
	if errors.As(err, &ce) {
		return &SchemaError{
			Path:       path,
			Convention: string(ce.Convention),
			Missing:    ce.Missing,
			Unexpected: ce.Unexpected,
			cause:      err,
		}
	}
	if errors.Is(err, indexfile.ErrNoHeader) {
		return &SchemaError{Path: path, Convention: string(indexfile.ConventionOf(path)), Missing: []string{"header"}, cause: err}
	}
	if errors.Is(err, predicate.ErrInvalid) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return err
}
