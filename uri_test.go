package argoindex_test

import (
	"context"
	"testing"

	"github.com/euroargodev/argoindex"
	"github.com/euroargodev/argoindex/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path string
		want argoindex.FileInfo
	}{
		{
			path: "https://data-argo.ifremer.fr/dac/coriolis/6902746/profiles/BR6902746_001D.nc",
			want: argoindex.FileInfo{
				Origin: "https://data-argo.ifremer.fr", DAC: "coriolis", WMO: 6902746,
				Name: "BR6902746_001D.nc", Prefix: "BR", Cycle: 1, Descending: true, Mono: true,
			},
		},
		{
			path: "/data/gdac/dac/aoml/1901393/profiles/D1901393_1234.nc",
			want: argoindex.FileInfo{
				Origin: "/data/gdac", DAC: "aoml", WMO: 1901393,
				Name: "D1901393_1234.nc", Prefix: "D", Cycle: 1234, Mono: true,
			},
		},
		{
			path: "ftp://ftp.ifremer.fr/ifremer/argo/dac/meds/12345/12345_prof.nc",
			want: argoindex.FileInfo{
				Origin: "ftp://ftp.ifremer.fr/ifremer/argo", DAC: "meds", WMO: 12345,
				Name: "12345_prof.nc", Cycle: -1,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.want.Name, func(t *testing.T) {
			got, err := argoindex.SplitPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "https://host/other/file.nc", "dac/aoml/notanumber/x.nc", "dac/aoml/1901393/profiles/R1901393.nc"} {
		_, err := argoindex.SplitPath(bad)
		assert.ErrorIs(t, err, argoindex.ErrInvalidArgument, bad)
	}
}

func TestURIMono2Multi(t *testing.T) {
	uris := []string{
		"host/dac/coriolis/6902746/profiles/R6902746_007.nc",
		"host/dac/aoml/1901393/profiles/R1901393_001.nc",
		"host/dac/coriolis/6902746/profiles/R6902746_1007.nc",
	}
	got, err := argoindex.URIMono2Multi(uris, argoindex.DatasetPhy)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"host/dac/aoml/1901393/1901393_prof.nc",
		"host/dac/coriolis/6902746/6902746_prof.nc",
	}, got)

	got, err = argoindex.URIMono2Multi(uris[:1], argoindex.DatasetBGC)
	require.NoError(t, err)
	assert.Equal(t, []string{"host/dac/coriolis/6902746/6902746_Sprof.nc"}, got)

	_, err = argoindex.URIMono2Multi(uris, "ref")
	assert.ErrorIs(t, err, argoindex.ErrInvalidArgument)
}

func TestResolveWMO(t *testing.T) {
	ctx := context.Background()
	dir := mirror(t, testutil.CoreIndex, testutil.Both)
	s := newStore(t, argoindex.BackendTyped, dir, testutil.CoreIndex)

	res, err := argoindex.ResolveWMO(ctx, s, argoindex.DatasetPhy, []int{6902746, 1901393}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		dir + "/dac/aoml/1901393/1901393_prof.nc",
		dir + "/dac/coriolis/6902746/6902746_prof.nc",
	}, res.URIs)
	assert.False(t, res.PostFilter)

	res, err = argoindex.ResolveWMO(ctx, s, argoindex.DatasetPhy, []int{6902746}, []int{7})
	require.NoError(t, err)
	assert.Equal(t, []string{dir + "/dac/coriolis/6902746/profiles/R6902746_007.nc"}, res.URIs)
}

func TestResolveBox(t *testing.T) {
	ctx := context.Background()

	small := mirror(t, testutil.CoreIndex, testutil.Both)
	s := newStore(t, argoindex.BackendLabeled, small, testutil.CoreIndex)
	res, err := argoindex.ResolveBox(ctx, s, argoindex.DatasetPhy, argoindex.NewBox(-60, -55, 40, 45))
	require.NoError(t, err)
	assert.Len(t, res.URIs, 3)
	assert.False(t, res.PostFilter)

	rows := testutil.NewRNG(99).Records(500)
	large := testutil.Fixture{Name: testutil.CoreFile, Header: testutil.CoreHeader, Rows: rows}
	s = newStore(t, argoindex.BackendTyped, mirror(t, large, testutil.Gzip), large)
	res, err = argoindex.ResolveBox(ctx, s, argoindex.DatasetBGC, argoindex.NewBox(-180, 180, -90, 90))
	require.NoError(t, err)
	assert.True(t, res.PostFilter)
	assert.LessOrEqual(t, len(res.URIs), len(testutil.WMOPool()))
	for _, u := range res.URIs {
		fi, err := argoindex.SplitPath(u)
		require.NoError(t, err)
		assert.False(t, fi.Mono)
	}
}
