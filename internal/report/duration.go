package report

import (
	"fmt"
	"time"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	secondsPerWeek   = 7 * secondsPerDay
	secondsPerMonth  = 30 * secondsPerDay
	secondsPerYear   = 365 * secondsPerDay
)

// bucket thresholds are checked largest first; the remainder is expressed in
// the next smaller unit.
var buckets = []struct {
	threshold uint64
	size      uint64
	unit      string
	next      uint64
	nextUnit  string
}{
	{secondsPerYear, secondsPerYear, "y", secondsPerMonth, "mo"},
	{3 * secondsPerMonth, secondsPerMonth, "mo", secondsPerWeek, "w"},
	{2 * secondsPerWeek, secondsPerWeek, "w", secondsPerDay, "d"},
	{secondsPerDay, secondsPerDay, "d", secondsPerHour, "h"},
	{secondsPerHour, secondsPerHour, "h", secondsPerMinute, "min"},
	{secondsPerMinute, secondsPerMinute, "min", 1, "s"},
}

// VagueDuration renders a signed second count using the largest applicable
// unit, e.g. "3d", or "3d4h" with the remainder.
func VagueDuration(seconds int64, withRemainder bool) string {
	sign := ""
	// The magnitude is unsigned so that math.MinInt64 does not overflow.
	mag := uint64(seconds)
	if seconds < 0 {
		sign = "-"
		mag = -mag
	}
	for _, b := range buckets {
		if mag < b.threshold {
			continue
		}
		v := mag / b.size
		if !withRemainder {
			return fmt.Sprintf("%s%d%s", sign, v, b.unit)
		}
		rest := (mag - v*b.size) / b.next
		return fmt.Sprintf("%s%d%s%d%s", sign, v, b.unit, rest, b.nextUnit)
	}
	return fmt.Sprintf("%s%ds", sign, mag)
}

// FormatDuration renders a duration attribute value. It shares the vague
// duration algorithm.
func FormatDuration(seconds int64, withRemainder bool) string {
	return VagueDuration(seconds, withRemainder)
}

// vagueBetween renders to - from, truncated to whole seconds.
func vagueBetween(from, to time.Time, withRemainder bool) string {
	return VagueDuration(int64(to.Sub(from)/time.Second), withRemainder)
}

func formatDate(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
