// Package prayer holds the prayer-time vocabulary and the primitive
// conversions everything else is built on: clock-string parsing, padding
// resolution and duration formatting.
package prayer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Prayer names as they appear in upstream Mawaqit data.
const (
	Fajr    = "fajr"
	Sunset  = "sunset"
	Dohr    = "dohr"
	Asr     = "asr"
	Maghreb = "maghreb"
	Icha    = "icha"
)

// AllNames lists every key upstream data can carry, in chronological order.
// Slot math depends on this order, never on map iteration order.
var AllNames = []string{Fajr, Sunset, Dohr, Asr, Maghreb, Icha}

// MinAfterPadding is the floor applied to the resolved "after" padding of
// every prayer, for uniform calendar legibility. The "before" side is
// never floored.
const MinAfterPadding = 10

// Order returns the canonical prayer order for slot generation. Sunset is
// informational and only participates when explicitly included.
func Order(includeSunset bool) []string {
	if includeSunset {
		return []string{Fajr, Sunset, Dohr, Asr, Maghreb, Icha}
	}
	return []string{Fajr, Dohr, Asr, Maghreb, Icha}
}

// TimeSet maps prayer names to "HH:MM" strings for one calendar day.
type TimeSet map[string]string

// Filter returns a copy of the set restricted to the given prayer order.
func (ts TimeSet) Filter(order []string) TimeSet {
	out := make(TimeSet, len(order))
	for _, name := range order {
		if v, ok := ts[name]; ok && v != "" {
			out[name] = v
		}
	}
	return out
}

// ParseError reports a malformed "HH:MM" value. It is recovered locally by
// skipping the offending prayer; it never aborts a whole day.
type ParseError struct {
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time %q: %s", e.Value, e.Reason)
}

// ParseClock parses an "HH:MM" string into an instant on the given
// reference date in the given location.
func ParseClock(s string, ref time.Time, loc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, &ParseError{Value: s, Reason: "empty value"}
	}

	parts := strings.Split(trimmed, ":")
	if len(parts) != 2 {
		return time.Time{}, &ParseError{Value: s, Reason: "expected HH:MM"}
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, &ParseError{Value: s, Reason: "hour is not a number"}
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, &ParseError{Value: s, Reason: "minute is not a number"}
	}
	if hour < 0 || hour > 23 {
		return time.Time{}, &ParseError{Value: s, Reason: "hour out of range"}
	}
	if minute < 0 || minute > 59 {
		return time.Time{}, &ParseError{Value: s, Reason: "minute out of range"}
	}

	return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, loc), nil
}

// FormatDuration renders a duration as "<H>h<MM>" with zero-padded minutes,
// e.g. "2h05". Zero or negative durations render as "0h00".
func FormatDuration(d time.Duration) string {
	totalMinutes := int(d.Minutes())
	if totalMinutes <= 0 {
		return "0h00"
	}
	return fmt.Sprintf("%dh%02d", totalMinutes/60, totalMinutes%60)
}
