// Package timeutil provides timezone utilities for the school's local time.
// Calendar days, greetings and "today" all follow the campus clock rather
// than the server's, so every helper converts into SchoolTZ first.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// SchoolTZ is the campus timezone. It defaults to UTC and is set once at
// startup through SetLocation, before any request is served.
var SchoolTZ = time.UTC

// SetLocation loads an IANA timezone name and makes it the campus timezone.
func SetLocation(name string) error {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", name, err)
	}
	SchoolTZ = loc
	return nil
}

// Now returns the current time in the campus timezone.
func Now() time.Time {
	return time.Now().In(SchoolTZ)
}

// ToSchool converts a time to the campus timezone.
func ToSchool(t time.Time) time.Time {
	return t.In(SchoolTZ)
}

// Date creates midnight of the given date in the campus timezone.
// Out-of-range days normalize the way time.Date does.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, SchoolTZ)
}

// StartOfDay returns the start of the day (00:00:00) in the campus timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToSchool(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, SchoolTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the campus timezone.
func EndOfDay(t time.Time) time.Time {
	local := ToSchool(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, SchoolTZ)
}

// AddDays returns midnight n calendar days after t.
func AddDays(t time.Time, n int) time.Time {
	return StartOfDay(t).AddDate(0, 0, n)
}

// StartOfMonth returns the first day of the month at midnight.
func StartOfMonth(t time.Time) time.Time {
	local := ToSchool(t)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, SchoolTZ)
}

// EndOfMonth returns the last instant of the month.
func EndOfMonth(t time.Time) time.Time {
	start := StartOfMonth(t)
	return EndOfDay(start.AddDate(0, 1, -1))
}

// DaysOfMonth returns midnight of every day in t's month, in order.
func DaysOfMonth(t time.Time) []time.Time {
	start := StartOfMonth(t)
	end := EndOfMonth(t)

	days := make([]time.Time, 0, 31)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// IsSameDay checks if two times fall on the same calendar day on campus.
// Time of day is ignored.
func IsSameDay(t1, t2 time.Time) bool {
	a, b := ToSchool(t1), ToSchool(t2)
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// IsToday checks if t is on the same campus day as now.
func IsToday(t time.Time) bool {
	return IsSameDay(t, Now())
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatMonth is the month format used in queries (YYYY-MM).
	FormatMonth = "2006-01"
	// FormatLongDate is used for notification detail headers.
	FormatLongDate = "Monday, January 2, 2006 at 3:04 PM"
	// FormatShortDate is a short format (Jan 2).
	FormatShortDate = "Jan 2"
)

// FormatDateStr formats a time as YYYY-MM-DD in the campus timezone.
func FormatDateStr(t time.Time) string {
	return ToSchool(t).Format(FormatDate)
}

// FormatLong formats a time like "Monday, March 4, 2024 at 9:30 AM".
func FormatLong(t time.Time) string {
	return ToSchool(t).Format(FormatLongDate)
}

// ParseDate parses YYYY-MM-DD as midnight in the campus timezone.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, SchoolTZ)
}

// ParseMonth parses YYYY-MM as the first day of that month.
func ParseMonth(value string) (time.Time, error) {
	return time.ParseInLocation(FormatMonth, value, SchoolTZ)
}

// FormatRelative returns a human-readable age of t relative to now,
// e.g. "just now", "5m ago", "2h ago", "yesterday", "3d ago".
func FormatRelative(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		return formatFutureDuration(-d)
	}
	return formatPastDuration(d)
}

func formatPastDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}

func formatFutureDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("in %dh", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "tomorrow"
		}
		return fmt.Sprintf("in %dd", days)
	}
}

// Greeting returns the salutation for the campus hour of t.
func Greeting(t time.Time) string {
	hour := ToSchool(t).Hour()
	switch {
	case hour < 12:
		return "Good Morning"
	case hour < 17:
		return "Good Afternoon"
	default:
		return "Good Evening"
	}
}
