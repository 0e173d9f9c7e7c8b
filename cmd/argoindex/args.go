package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/euroargodev/argoindex"
)

// parseInts reads integers given as separate arguments or comma lists.
func parseInts(args []string) ([]int, error) {
	var out []int
	for _, a := range args {
		for _, f := range strings.Split(a, ",") {
			if f = strings.TrimSpace(f); f == "" {
				continue
			}
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not an integer", argoindex.ErrInvalidArgument, f)
			}
			out = append(out, n)
		}
	}
	return out, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05")
}
