package report

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders d as a human list of years/days/hours/minutes/
// seconds, largest unit first, zero-valued units omitted, and "less than a
// second" for anything under one second.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "less than a second"
	}

	total := int64(d.Seconds())
	years := total / (365 * 24 * 3600)
	total -= years * 365 * 24 * 3600
	days := total / (24 * 3600)
	total -= days * 24 * 3600
	hours := total / 3600
	total -= hours * 3600
	minutes := total / 60
	total -= minutes * 60
	seconds := total

	var parts []string
	parts = appendUnit(parts, years, "year")
	parts = appendUnit(parts, days, "day")
	parts = appendUnit(parts, hours, "hour")
	parts = appendUnit(parts, minutes, "minute")
	parts = appendUnit(parts, seconds, "second")

	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

func appendUnit(parts []string, value int64, unit string) []string {
	if value == 0 {
		return parts
	}
	if value == 1 {
		return append(parts, fmt.Sprintf("1 %s", unit))
	}
	return append(parts, fmt.Sprintf("%d %ss", value, unit))
}
