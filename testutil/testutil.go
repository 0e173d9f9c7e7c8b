package testutil

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// Index file names.
const (
	CoreFile      = "ar_index_global_prof.txt"
	SyntheticFile = "argo_synthetic-profile_index.txt"
)

// CoreHeader and BGCHeader are the header rows of the two conventions.
const (
	CoreHeader = "file,date,latitude,longitude,ocean,profiler_type,institution,date_update"
	BGCHeader  = "file,date,latitude,longitude,ocean,profiler_type,institution,parameters,parameter_data_mode,date_update"
)

const preamble = `# Title : Profile directory file of the Argo Global Data Assembly Center
# Description : The directory file describes all individual profile files of the argo GDAC ftp site.
# Project : ARGO
# Format version : 2.0
# Date of update : 20220101000000
# FTP root number 1 : ftp://ftp.ifremer.fr/ifremer/argo/dac
# FTP root number 2 : ftp://usgodae.org/pub/outgoing/argo/dac
# GDAC node : CORIOLIS
`

// CoreRows is the fixed core-profile fixture. Rows 0-2 sit on or inside the
// box [-60, -55, 40, 45] and the dates 2007-08-01 / 2007-09-01; row 10 is
// just outside it. Row 6 has no position.
var CoreRows = []string{
	"aoml/1901393/profiles/R1901393_001.nc,20070801120000,40.000,-60.000,A,846,AO,20180101000000",
	"aoml/1901393/profiles/R1901393_007.nc,20070815000000,42.000,-57.000,A,846,AO,20180101000000",
	"aoml/1901393/profiles/D1901393_012.nc,20070901000000,45.000,-55.000,A,846,AO,20180101000000",
	"aoml/1901393/profiles/R1901393_1234.nc,20100101000000,50.000,-50.000,A,846,AO,20180101000000",
	"coriolis/6902746/profiles/R6902746_007.nc,20180101000000,-10.500,10.250,I,844,IF,20190101000000",
	"coriolis/6902746/profiles/R6902746_1007.nc,20180105000000,-11.000,11.000,I,844,IF,20190101000000",
	"coriolis/6902746/profiles/R6902746_008D.nc,20180110000000,,,I,844,IF,20190101000000",
	"jma/2902696/profiles/R2902696_001.nc,20200101000000,30.000,140.000,P,999,XX,20200201000000",
	"jma/2902696/profiles/R2902696_002.nc,20200111000000,31.000,141.000,P,?,JA,20200201000000",
	"aoml/5904985/profiles/R5904985_003.nc,20150601000000,0.000,-30.000,A,851,AO,20160101000000",
	"meds/12345/profiles/R12345_010.nc,19990101000000,45.500,-55.500,A,845,ME,20000101000000",
}

// SyntheticRows is the fixed BGC synthetic-profile fixture.
var SyntheticRows = []string{
	"coriolis/6902746/profiles/SR6902746_001.nc,20180101000000,-10.500,10.250,I,844,IF,PRES TEMP PSAL DOXY,RRRA,20190101000000",
	"coriolis/6902746/profiles/SR6902746_002.nc,20180111000000,-10.700,10.400,I,844,IF,PRES TEMP PSAL DOXY,RRRA,20190101000000",
	"aoml/5904985/profiles/SD5904985_003.nc,20150601000000,0.000,-30.000,A,851,AO,PRES TEMP PSAL NITRATE,DDDA,20160101000000",
}

// Fixture is an index file to write into a mirror.
type Fixture struct {
	Name   string
	Header string
	Rows   []string
}

var (
	CoreIndex      = Fixture{Name: CoreFile, Header: CoreHeader, Rows: CoreRows}
	SyntheticIndex = Fixture{Name: SyntheticFile, Header: BGCHeader, Rows: SyntheticRows}
)

// Variant selects which files WriteMirror creates.
type Variant uint8

const (
	// Raw writes the plain text file only.
	Raw Variant = 1 << iota
	// Gzip writes the .gz sibling only.
	Gzip
	// Both writes both files.
	Both = Raw | Gzip
)

// IndexText renders a complete index file.
func IndexText(header string, rows []string) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString(header)
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	return b.String()
}

// GzipBytes compresses data.
func GzipBytes(t testing.TB, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// WriteMirror writes f into dir as a GDAC host would serve it.
func WriteMirror(t testing.TB, dir string, f Fixture, v Variant) {
	t.Helper()
	text := []byte(IndexText(f.Header, f.Rows))
	if v&Raw != 0 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f.Name), text, 0o644))
	}
	if v&Gzip != 0 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f.Name+".gz"), GzipBytes(t, text), 0o644))
	}
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

var (
	dacs     = []string{"aoml", "coriolis", "jma", "csiro", "bodc"}
	wmoPool  = []int{1901393, 6902746, 2902696, 5904985, 3901530, 12345, 4902911, 7900591}
	oceans   = []string{"A", "I", "P"}
	profiles = []string{"846", "844", "851", "999", "?"}
	insts    = []string{"AO", "IF", "JA", "CS", "BO", "XX"}
	epoch    = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
)

// WMOPool returns the float identifiers Records draws from.
func WMOPool() []int {
	return append([]int(nil), wmoPool...)
}

// Records generates n random core-profile rows. Positions are rounded to the
// 3 decimals GDAC files use; about one row in fifty has no position.
func (r *RNG) Records(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]string, n)
	for i := range rows {
		wmo := wmoPool[r.rand.Intn(len(wmoPool))]
		dac := dacs[wmo%len(dacs)]
		cyc := r.rand.Intn(1100)
		mode := "R"
		if r.rand.Intn(3) == 0 {
			mode = "D"
		}
		name := fmt.Sprintf("%s%d_%03d.nc", mode, wmo, cyc)
		if cyc >= 1000 {
			name = fmt.Sprintf("%s%d_%04d.nc", mode, wmo, cyc)
		}
		when := epoch.Add(time.Duration(r.rand.Int63n(int64(20*365*24*time.Hour))) / time.Second * time.Second)
		lat, lon := "", ""
		if r.rand.Intn(50) != 0 {
			lat = fmt.Sprintf("%.3f", r.rand.Float64()*180-90)
			lon = fmt.Sprintf("%.3f", r.rand.Float64()*360-180)
		}
		rows[i] = strings.Join([]string{
			fmt.Sprintf("%s/%d/profiles/%s", dac, wmo, name),
			when.Format("20060102150405"),
			lat, lon,
			oceans[r.rand.Intn(len(oceans))],
			profiles[r.rand.Intn(len(profiles))],
			insts[r.rand.Intn(len(insts))],
			when.Add(24 * time.Hour).Format("20060102150405"),
		}, ",")
	}
	return rows
}
