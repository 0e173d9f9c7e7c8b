package predicate

import (
	"fmt"
	"math"
	"time"
)

// FormatLon encodes a longitude shifted to [0, 360) as a 5-digit integer of
// hundredths.
func FormatLon(x float64) string {
	if x < 0 {
		x += 360
	}
	return fmt.Sprintf("%05d", int64(x*100))
}

// FormatLat encodes a latitude as a 5-digit integer of hundredths. Negative
// values keep their sign inside the 5-character width, so the string does not
// carry a fixed number of digits; callers track the hemisphere themselves.
func FormatLat(x float64) string {
	return fmt.Sprintf("%05d", int64(x*100))
}

// FormatPrs encodes a pressure magnitude as a 5-digit integer of tenths.
func FormatPrs(x float64) string {
	return fmt.Sprintf("%05d", int64(math.Abs(x)*10))
}

// FormatTime encodes a date as YYYY-MM-DD.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
