package logcolor

import (
	"fmt"
	"strings"
	"time"
)

// Layouts tried by ParseTimestamp. Zoned layouts come first; the rest are
// interpreted in the caller's location. Fractional seconds are accepted
// after any seconds field.
var (
	zonedLayouts = []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05Z0700",
		"2006-01-02T15:04Z07:00",
		"2006-01-02T15:04Z0700",
		"20060102T150405Z07:00",
		"20060102T150405Z0700",
		"20060102150405Z07:00",
		"20060102150405Z0700",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"20060102T150405",
		"20060102T1504",
		"20060102150405",
		"200601021504",
		"2006-01-02",
	}
)

// ParseTimestamp parses the timestamp forms recognized in log lines. A
// trailing parenthesized suffix is ignored. Timestamps without a zone are
// read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(StripRelativeSuffix(s))
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StripRelativeSuffix removes a trailing "(...)" annotation such as "(2h30m)".
func StripRelativeSuffix(s string) string {
	base, _ := SplitRelativeSuffix(s)
	return base
}

// SplitRelativeSuffix splits "ts(2h30m)" into "ts" and "(2h30m)".
func SplitRelativeSuffix(s string) (base, suffix string) {
	if !strings.HasSuffix(s, ")") {
		return s, ""
	}
	i := strings.LastIndexByte(s, '(')
	if i <= 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// FormatRelative renders how long ago ts was relative to now. Future
// timestamps get a leading "-".
func FormatRelative(ts, now time.Time) string {
	d := now.Sub(ts)
	if d < 0 {
		return "-" + formatElapsed(-d)
	}
	return formatElapsed(d)
}

func formatElapsed(d time.Duration) string {
	const (
		day  = 24 * time.Hour
		year = 365 * day
	)
	switch {
	case d >= year:
		return fmt.Sprintf("%dy%dd", d/year, (d%year)/day)
	case d >= day:
		return fmt.Sprintf("%dd%dh", d/day, (d%day)/time.Hour)
	case d >= time.Hour:
		return fmt.Sprintf("%dh%dm", d/time.Hour, (d%time.Hour)/time.Minute)
	case d >= time.Minute:
		return fmt.Sprintf("%dm%ds", d/time.Minute, (d%time.Minute)/time.Second)
	default:
		tenths := d / (100 * time.Millisecond)
		return fmt.Sprintf("%d.%ds", tenths/10, tenths%10)
	}
}
