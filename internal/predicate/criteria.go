package predicate

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Kind tags a search description.
type Kind uint8

const (
	KindNone Kind = iota
	KindWMO
	KindWMOCycle
	KindCycle
	KindBox
)

func (k Kind) String() string {
	switch k {
	case KindWMO:
		return "WMO"
	case KindWMOCycle:
		return "WMO+CYC"
	case KindCycle:
		return "CYC"
	case KindBox:
		return "BOX"
	default:
		return "none"
	}
}

// Criteria describes the last executed search.
type Criteria struct {
	Kind   Kind
	WMOs   []int
	Cycles []int
	Box    Box
}

// CName is the canonical encoding of the criteria, used for display and for
// cache keys. The zero Criteria encodes as "full".
func (c Criteria) CName() string {
	switch c.Kind {
	case KindBox:
		b := c.Box
		s := fmt.Sprintf("x=%0.2f/%0.2f;y=%0.2f/%0.2f", b.LonMin, b.LonMax, b.LatMin, b.LatMax)
		if b.HasTime {
			s += fmt.Sprintf(";t=%s/%s", FormatTime(b.Start), FormatTime(b.End))
		}
		return s
	case KindWMO:
		if len(c.WMOs) == 1 {
			return "WMO" + strconv.Itoa(c.WMOs[0])
		}
		return joinPrefixed("WMO", sorted(c.WMOs), ";")
	case KindWMOCycle:
		cycles := joinPrefixed("CYC", sorted(c.Cycles), "_")
		// WMOs keep their input order here.
		parts := make([]string, len(c.WMOs))
		for i, w := range c.WMOs {
			parts[i] = "WMO" + strconv.Itoa(w) + "_" + cycles
		}
		return strings.Join(parts, ";")
	case KindCycle:
		if len(c.Cycles) == 1 {
			return "CYC" + strconv.Itoa(c.Cycles[0])
		}
		return joinPrefixed("CYC", sorted(c.Cycles), ";")
	default:
		return "full"
	}
}

func sorted(v []int) []int {
	out := slices.Clone(v)
	slices.Sort(out)
	return out
}

func joinPrefixed(prefix string, v []int, sep string) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = prefix + strconv.Itoa(n)
	}
	return strings.Join(parts, sep)
}
