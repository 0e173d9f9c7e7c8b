// Package reftable translates the institution and profiler codes found in
// GDAC index files into names. The tables are embedded and decoded on first
// use.
package reftable

import (
	_ "embed"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/euroargodev/argoindex/codec"
)

// Unknown is returned for codes missing from a table.
const Unknown = "Unknown"

// NotKnown is the profiler code GDAC files use for an unknown platform. It
// maps to itself.
const NotKnown = "?"

var (
	//go:embed institutions.json
	institutionsJSON []byte
	//go:embed profilers.json
	profilersJSON []byte
)

var (
	loadOnce     sync.Once
	institutions map[string]string
	profilers    map[int]string
	loadErr      error
)

func load() {
	loadOnce.Do(func() {
		var dec codec.JSON
		if err := dec.Unmarshal(institutionsJSON, &institutions); err != nil {
			loadErr = fmt.Errorf("reftable: institutions: %w", err)
			return
		}
		var raw map[string]string
		if err := dec.Unmarshal(profilersJSON, &raw); err != nil {
			loadErr = fmt.Errorf("reftable: profilers: %w", err)
			return
		}
		profilers = make(map[int]string, len(raw))
		for k, v := range raw {
			if k == NotKnown {
				continue
			}
			n, err := strconv.Atoi(k)
			if err != nil {
				loadErr = fmt.Errorf("reftable: profiler code %q: %w", k, err)
				return
			}
			profilers[n] = v
		}
	})
}

// Err reports whether the embedded tables decoded cleanly.
func Err() error {
	load()
	return loadErr
}

// Institution returns the name for an institution code.
func Institution(code string) string {
	load()
	if name, ok := institutions[strings.TrimSpace(code)]; ok {
		return name
	}
	return Unknown
}

// Profiler returns the name for a profiler code. Codes are looked up as
// integers, so "846" and "846.0" are the same platform.
func Profiler(code string) string {
	load()
	code = strings.TrimSpace(code)
	if code == NotKnown {
		return NotKnown
	}
	n, ok := ProfilerCode(code)
	if !ok {
		return Unknown
	}
	if name, ok := profilers[n]; ok {
		return name
	}
	return Unknown
}

// ProfilerCode parses a profiler code cell.
func ProfilerCode(code string) (int, bool) {
	if n, err := strconv.Atoi(code); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(code, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// Institutions returns a copy of the institution table.
func Institutions() map[string]string {
	load()
	out := make(map[string]string, len(institutions))
	for k, v := range institutions {
		out[k] = v
	}
	return out
}

// Profilers returns a copy of the profiler table.
func Profilers() map[int]string {
	load()
	out := make(map[int]string, len(profilers))
	for k, v := range profilers {
		out[k] = v
	}
	return out
}
