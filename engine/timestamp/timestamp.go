// Package timestamp formats instants as fixed-width strings that sort the same way the instants do.
//
// Audit records store their time as text and every range query over them is a plain
// string comparison, so for two instants a and b in the same location with years in
// [0, 9999]: a <= b if and only if Format(a) <= Format(b).
package timestamp

import (
	"fmt"
	"time"
)

// Layout is the fixed-width format: YYYY-MM-DD HH:MM:SS.
const Layout = "2006-01-02 15:04:05"

// dayLen is the length of the YYYY-MM-DD prefix.
const dayLen = len("2006-01-02")

// Format formats t using [Layout].
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse parses a [Layout] string in the local time zone.
func Parse(s string) (time.Time, error) {
	return ParseIn(s, time.Local)
}

// ParseIn parses a [Layout] string in the given location.
func ParseIn(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// DayBucket returns the YYYY-MM-DD prefix of a formatted timestamp.
func DayBucket(ts string) string {
	if len(ts) < dayLen {
		return ts
	}
	return ts[:dayLen]
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// StartOfWeek returns midnight of the most recent weekStart day at or before t.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	offset := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}
