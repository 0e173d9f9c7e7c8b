package argoindex

import (
	"context"
	"fmt"
)

// MonoToMultiThreshold is the number of box matches above which ResolveBox
// switches to multi-profile files.
const MonoToMultiThreshold = 25

// Resolution is the list of files a data request has to load.
type Resolution struct {
	URIs []string
	// PostFilter is set when URIs point to multi-profile files that also
	// hold profiles outside the requested box, so the loaded data must be
	// filtered again.
	PostFilter bool
}

// ResolveWMO lists the files of a float request. Without cycles it returns
// the multi-profile file of each float, otherwise the matching mono-profile
// files.
func ResolveWMO(ctx context.Context, s Store, ds Dataset, wmos, cycles []int) (Resolution, error) {
	if len(cycles) > 0 {
		if err := s.SearchWMOCyc(ctx, wmos, cycles); err != nil {
			return Resolution{}, err
		}
		uris, err := s.URI()
		return Resolution{URIs: uris}, err
	}
	if err := s.SearchWMO(ctx, wmos); err != nil {
		return Resolution{}, err
	}
	uris, err := s.URI()
	if err != nil {
		return Resolution{}, err
	}
	multi, err := URIMono2Multi(uris, ds)
	return Resolution{URIs: multi}, err
}

// ResolveBox lists the files of a box request. A 4-element box searches by
// position only, a 6-element box by position and date. Above
// MonoToMultiThreshold matches the multi-profile files are returned instead
// and PostFilter is set.
func ResolveBox(ctx context.Context, s Store, ds Dataset, box Box) (Resolution, error) {
	var err error
	if box.HasTime {
		err = s.SearchLatLonTim(ctx, box)
	} else {
		err = s.SearchLatLon(ctx, box)
	}
	if err != nil {
		return Resolution{}, err
	}
	uris, err := s.URI()
	if err != nil {
		return Resolution{}, err
	}
	if len(uris) <= MonoToMultiThreshold {
		return Resolution{URIs: uris}, nil
	}
	multi, err := URIMono2Multi(uris, ds)
	if err != nil {
		return Resolution{}, fmt.Errorf("argoindex: resolve box %s: %w", box, err)
	}
	return Resolution{URIs: multi, PostFilter: true}, nil
}
