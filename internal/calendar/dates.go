package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ISODate is the layout of date-only values in data files.
const ISODate = "2006-01-02"

// Layouts without a zone, interpreted in the caller's location.
var localLayouts = []string{
	ISODate,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

var weekdayShort = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// ParseDate parses an ISO 8601 date or date-time. Values without a zone
// are taken to be in loc; values with a zone are converted into loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// layoutOf returns the layout s is written in, ISODate when none matches.
func layoutOf(s string) string {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return time.RFC3339
	}
	for _, layout := range localLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return layout
		}
	}
	return ISODate
}

// Day returns midnight of t's calendar day in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns midnight of the first day of the month.
func StartOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, loc)
}

// EndOfMonth returns midnight of the last day of the month.
func EndOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
}

// DaysInRange enumerates calendar days from start to end inclusive.
func DaysInRange(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil
	}
	days := make([]time.Time, 0, 31)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// SameDay reports whether a and b fall on the same calendar day, each
// read in its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// FormatLong renders "2025년 3월 1일 (토)".
func FormatLong(t time.Time) string {
	return fmt.Sprintf("%d년 %d월 %d일 (%s)", t.Year(), int(t.Month()), t.Day(), weekdayShort[t.Weekday()])
}

// FormatShort renders "3월 1일 (토)".
func FormatShort(t time.Time) string {
	return fmt.Sprintf("%d월 %d일 (%s)", int(t.Month()), t.Day(), weekdayShort[t.Weekday()])
}

// MonthLabel renders a 0-indexed month as "3월". Out-of-range input is
// clamped.
func MonthLabel(month int) string {
	return fmt.Sprintf("%d월", ClampMonth(month)+1)
}

// WeekdayLabels returns the weekday header, Sunday first.
func WeekdayLabels() []string {
	out := make([]string, len(weekdayShort))
	copy(out, weekdayShort[:])
	return out
}
