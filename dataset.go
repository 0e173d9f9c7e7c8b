package argoindex

import (
	"fmt"
	"strings"

	"github.com/euroargodev/argoindex/internal/indexfile"
)

// Dataset selects the family of profile files a request is about.
type Dataset string

const (
	// DatasetPhy is the core physical dataset.
	DatasetPhy Dataset = "phy"
	// DatasetBGC is the biogeochemical synthetic-profile dataset.
	DatasetBGC Dataset = "bgc"
)

// Index file names of the GDAC profile indexes.
const (
	CoreIndexFile      = string(indexfile.Core) + ".txt"
	SyntheticIndexFile = string(indexfile.Synthetic) + ".txt"
	BioIndexFile       = string(indexfile.Bio) + ".txt"
)

// ParseDataset validates a dataset name.
func ParseDataset(s string) (Dataset, error) {
	switch d := Dataset(strings.ToLower(strings.TrimSpace(s))); d {
	case DatasetPhy, DatasetBGC:
		return d, nil
	case "":
		return DatasetPhy, nil
	default:
		return "", fmt.Errorf("%w: unknown dataset %q", ErrInvalidArgument, s)
	}
}

// IndexFile is the profile index describing the dataset.
func (d Dataset) IndexFile() string {
	if d == DatasetBGC {
		return SyntheticIndexFile
	}
	return CoreIndexFile
}

// multiSuffix is the file name suffix of the multi-profile file of a float.
func (d Dataset) multiSuffix() string {
	if d == DatasetBGC {
		return "_Sprof.nc"
	}
	return "_prof.nc"
}
