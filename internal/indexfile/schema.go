package indexfile

import (
	"fmt"
	"path"
	"slices"
	"strings"
)

// Convention identifies an index layout by the index file name stem.
type Convention string

const (
	Core      Convention = "ar_index_global_prof"
	Synthetic Convention = "argo_synthetic-profile_index"
	Bio       Convention = "argo_bio-profile_index"
)

// Column names.
const (
	ColFile              = "file"
	ColDate              = "date"
	ColLatitude          = "latitude"
	ColLongitude         = "longitude"
	ColOcean             = "ocean"
	ColProfilerType      = "profiler_type"
	ColInstitution       = "institution"
	ColParameters        = "parameters"
	ColParameterDataMode = "parameter_data_mode"
	ColDateUpdate        = "date_update"
)

var coreColumns = []string{
	ColFile, ColDate, ColLatitude, ColLongitude, ColOcean,
	ColProfilerType, ColInstitution, ColDateUpdate,
}

var bgcColumns = []string{
	ColFile, ColDate, ColLatitude, ColLongitude, ColOcean,
	ColProfilerType, ColInstitution, ColParameters, ColParameterDataMode, ColDateUpdate,
}

// ConventionOf derives the convention from an index file name, e.g.
// "ar_index_global_prof.txt" gives Core.
func ConventionOf(indexFile string) Convention {
	stem, _, _ := strings.Cut(path.Base(indexFile), ".")
	return Convention(stem)
}

// Columns returns the expected columns in file order.
func (c Convention) Columns() ([]string, bool) {
	switch c {
	case Core:
		return slices.Clone(coreColumns), true
	case Synthetic, Bio:
		return slices.Clone(bgcColumns), true
	default:
		return nil, false
	}
}

// IsBGC reports whether rows carry parameter columns.
func (c Convention) IsBGC() bool {
	return c == Synthetic || c == Bio
}

// ColumnsError reports a header that does not match its convention.
type ColumnsError struct {
	Convention Convention
	Missing    []string
	Unexpected []string
}

func (e *ColumnsError) Error() string {
	if _, ok := e.Convention.Columns(); !ok {
		return fmt.Sprintf("unknown index convention %q", e.Convention)
	}
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ","))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Unexpected, ","))
	}
	return fmt.Sprintf("unexpected column names for %s index: %s", e.Convention, strings.Join(parts, "; "))
}

// CheckColumns compares a header with the columns of its convention, in any
// order.
func CheckColumns(c Convention, header []string) error {
	want, ok := c.Columns()
	if !ok {
		return &ColumnsError{Convention: c}
	}
	var missing, unexpected []string
	for _, col := range want {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	for _, col := range header {
		if !slices.Contains(want, col) {
			unexpected = append(unexpected, col)
		}
	}
	if len(missing) > 0 || len(unexpected) > 0 {
		return &ColumnsError{Convention: c, Missing: missing, Unexpected: unexpected}
	}
	return nil
}
