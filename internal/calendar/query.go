package calendar

import (
	"time"

	"churchsite/internal/model"
)

// YearSource resolves the calendar partition of a year. *store.Dataset
// implements it.
type YearSource interface {
	CalendarEvents(year int) []model.CalendarEvent
}

// Query answers calendar questions over one data snapshot. Months are
// 0-indexed (0 = January) throughout.
type Query struct {
	src    YearSource
	loc    *time.Location
	expand bool
}

type Option func(*Query)

// WithLocation sets the zone in which event dates are compared.
func WithLocation(loc *time.Location) Option {
	return func(q *Query) {
		if loc != nil {
			q.loc = loc
		}
	}
}

// WithRecurrenceExpansion makes recurring events appear on every
// repetition date inside their year instead of only on the stored date.
func WithRecurrenceExpansion(on bool) Option {
	return func(q *Query) { q.expand = on }
}

func NewQuery(src YearSource, opts ...Option) *Query {
	q := &Query{src: src, loc: time.Local}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Location returns the zone dates are compared in.
func (q *Query) Location() *time.Location {
	return q.loc
}

// EventsForYear returns the year's events; unknown years yield an empty
// slice.
func (q *Query) EventsForYear(year int) []model.CalendarEvent {
	events := q.src.CalendarEvents(year)
	if events == nil {
		return []model.CalendarEvent{}
	}
	if q.expand {
		return ExpandRecurring(events, year, q.loc)
	}
	return events
}

// EventsForMonth returns the year's events dated inside the month.
// Year and month are compared as calendar fields, so an entry filed under
// the wrong year partition never matches.
func (q *Query) EventsForMonth(year, month int) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0)
	if month < 0 || month > 11 {
		return out
	}

	for _, ev := range q.EventsForYear(year) {
		t, err := ParseDate(ev.Date, q.loc)
		if err != nil {
			continue
		}
		if t.Year() == year && int(t.Month())-1 == month {
			out = append(out, ev)
		}
	}
	return out
}

// EventsForDay returns the month's events dated exactly on the day. Days
// that do not exist in the month (e.g. February 30) match nothing.
func (q *Query) EventsForDay(year, month, day int) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0)
	target, ok := validDate(year, month, day, q.loc)
	if !ok {
		return out
	}

	for _, ev := range q.EventsForMonth(year, month) {
		t, err := ParseDate(ev.Date, q.loc)
		if err != nil {
			continue
		}
		if SameDay(t, target) {
			out = append(out, ev)
		}
	}
	return out
}

// FilterByDepartment keeps events of departmentID plus church-wide events.
// The "all" filter returns events unchanged.
func FilterByDepartment(events []model.CalendarEvent, departmentID string) []model.CalendarEvent {
	if departmentID == model.AllDepartments {
		return events
	}
	out := make([]model.CalendarEvent, 0, len(events))
	for _, ev := range events {
		if ev.Department == departmentID || ev.Department == model.AllDepartments {
			out = append(out, ev)
		}
	}
	return out
}

func validDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 0 || month > 11 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month())-1 != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
