package predicate

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalid is the root of all argument validation failures.
var ErrInvalid = errors.New("invalid search argument")

// ArgumentError describes a rejected search argument.
type ArgumentError struct {
	Arg    string
	Value  any
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Arg, e.Value, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalid }

func invalid(arg string, v any, reason string) error {
	return &ArgumentError{Arg: arg, Value: v, Reason: reason}
}

// Query couples the search description with its row expression.
type Query struct {
	Criteria Criteria
	Expr     Expr
}

// CheckWMO validates float identifiers: positive integers of 5 or 7 digits.
func CheckWMO(wmos []int) error {
	if len(wmos) == 0 {
		return invalid("WMO", wmos, "at least one WMO is required")
	}
	for _, w := range wmos {
		if w <= 0 {
			return invalid("WMO", w, "must be a positive integer")
		}
		if n := len(strconv.Itoa(w)); n != 5 && n != 7 {
			return invalid("WMO", w, "must have 5 or 7 digits")
		}
	}
	return nil
}

// CheckCycle validates cycle numbers.
func CheckCycle(cycles []int) error {
	if len(cycles) == 0 {
		return invalid("cycle", cycles, "at least one cycle is required")
	}
	for _, c := range cycles {
		if c < 0 {
			return invalid("cycle", c, "must be a non-negative integer")
		}
	}
	return nil
}

// CyclePattern is the file name suffix of a mono-profile file for cycle c.
func CyclePattern(c int) string {
	if c < 1000 {
		return fmt.Sprintf("_%03d.nc", c)
	}
	return fmt.Sprintf("_%04d.nc", c)
}

// WMOPattern is the path segment holding float wmo.
func WMOPattern(wmo int) string {
	return "/" + strconv.Itoa(wmo) + "/"
}

// ByWMO selects the files of any of wmos.
func ByWMO(wmos []int) (*Query, error) {
	if err := CheckWMO(wmos); err != nil {
		return nil, err
	}
	or := make(Or, 0, len(wmos))
	for _, w := range wmos {
		or = append(or, FileContains{Pattern: WMOPattern(w)})
	}
	return &Query{
		Criteria: Criteria{Kind: KindWMO, WMOs: clone(wmos)},
		Expr:     or,
	}, nil
}

// ByCycle selects the mono-profile files of any of cycles, across floats.
func ByCycle(cycles []int) (*Query, error) {
	if err := CheckCycle(cycles); err != nil {
		return nil, err
	}
	or := make(Or, 0, len(cycles))
	for _, c := range cycles {
		or = append(or, FileContains{Pattern: CyclePattern(c)})
	}
	return &Query{
		Criteria: Criteria{Kind: KindCycle, Cycles: clone(cycles)},
		Expr:     or,
	}, nil
}

// ByWMOCycle selects the files of every (wmo, cycle) pair.
func ByWMOCycle(wmos, cycles []int) (*Query, error) {
	if err := CheckWMO(wmos); err != nil {
		return nil, err
	}
	if err := CheckCycle(cycles); err != nil {
		return nil, err
	}
	or := make(Or, 0, len(wmos)*len(cycles))
	for _, w := range wmos {
		for _, c := range cycles {
			or = append(or, FileContains{Pattern: strconv.Itoa(w) + CyclePattern(c)})
		}
	}
	return &Query{
		Criteria: Criteria{Kind: KindWMOCycle, WMOs: clone(wmos), Cycles: clone(cycles)},
		Expr:     or,
	}, nil
}

// ByTime selects rows dated within the box time range. The box must carry
// dates.
func ByTime(b Box) (*Query, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if !b.HasTime {
		return nil, invalid("box", b, "a time search needs 6 elements")
	}
	return &Query{
		Criteria: Criteria{Kind: KindBox, Box: b},
		Expr:     And(timeTerms(b.Start, b.End)),
	}, nil
}

// ByLatLon selects rows inside the box horizontal bounds.
func ByLatLon(b Box) (*Query, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &Query{
		Criteria: Criteria{Kind: KindBox, Box: b},
		Expr:     And(spaceTerms(b)),
	}, nil
}

// ByLatLonTime selects rows inside the box bounds and time range.
func ByLatLonTime(b Box) (*Query, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if !b.HasTime {
		return nil, invalid("box", b, "a time search needs 6 elements")
	}
	return &Query{
		Criteria: Criteria{Kind: KindBox, Box: b},
		Expr:     And(append(timeTerms(b.Start, b.End), spaceTerms(b)...)),
	}, nil
}

func timeTerms(start, end time.Time) []Expr {
	return []Expr{
		Compare{Field: FieldDate, Op: GE, Time: start},
		Compare{Field: FieldDate, Op: LE, Time: end},
	}
}

func spaceTerms(b Box) []Expr {
	return []Expr{
		Compare{Field: FieldLongitude, Op: GE, Value: b.LonMin},
		Compare{Field: FieldLongitude, Op: LE, Value: b.LonMax},
		Compare{Field: FieldLatitude, Op: GE, Value: b.LatMin},
		Compare{Field: FieldLatitude, Op: LE, Value: b.LatMax},
	}
}

func clone(v []int) []int {
	out := make([]int, len(v))
	copy(out, v)
	return out
}
