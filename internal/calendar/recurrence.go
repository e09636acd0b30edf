package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	appLog "churchsite/internal/log"
	"churchsite/internal/model"
)

// maxOccurrencesPerEvent caps expansion of a single event.
const maxOccurrencesPerEvent = 400

func frequency(kind model.RecurrenceKind) (rrule.Frequency, bool) {
	switch kind {
	case model.RecurWeekly:
		return rrule.WEEKLY, true
	case model.RecurMonthly:
		return rrule.MONTHLY, true
	default:
		return 0, false
	}
}

// endOfDay returns the last second of t's calendar day.
func endOfDay(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, 1).Add(-time.Second)
}

// recurrenceEnd parses the end date of r. A zero time means open-ended.
func recurrenceEnd(r *model.Recurrence, loc *time.Location) (time.Time, error) {
	if r.EndDate == "" {
		return time.Time{}, nil
	}
	until, err := ParseDate(r.EndDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("recurrence end date: %w", err)
	}
	return until, nil
}

// RRule returns the RFC 5545 RRULE value (without DTSTART) for r, or ""
// when r does not repeat. For all-day events UNTIL is a DATE matching a
// DATE-valued DTSTART; otherwise it is the end of the end date in UTC.
// An unparseable end date is an error, as in Occurrences.
func RRule(r *model.Recurrence, allDay bool, loc *time.Location) (string, error) {
	if !r.Repeats() {
		return "", nil
	}
	freq, _ := frequency(r.Kind)
	opt := rrule.ROption{Freq: freq}

	until, err := recurrenceEnd(r, loc)
	if err != nil {
		return "", err
	}
	if until.IsZero() {
		return opt.RRuleString(), nil
	}
	if allDay {
		return opt.RRuleString() + ";UNTIL=" + until.Format(rrule.DateFormat), nil
	}
	opt.Until = endOfDay(until)
	return opt.RRuleString(), nil
}

// Occurrences returns the start times of ev inside [from, to]. A
// non-recurring event yields its stored date when that falls in range.
func Occurrences(ev model.CalendarEvent, from, to time.Time, loc *time.Location) ([]time.Time, error) {
	start, err := ParseDate(ev.Date, loc)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, errors.New("occurrences: range end is before range start")
	}

	if !ev.Recurring.Repeats() {
		if start.Before(from) || start.After(to) {
			return nil, nil
		}
		return []time.Time{start}, nil
	}

	freq, _ := frequency(ev.Recurring.Kind)
	opt := rrule.ROption{
		Freq:    freq,
		Dtstart: start,
	}
	until, err := recurrenceEnd(ev.Recurring, loc)
	if err != nil {
		return nil, err
	}
	if !until.IsZero() {
		opt.Until = endOfDay(until)
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, err
	}
	times := r.Between(from, to, true)
	if len(times) > maxOccurrencesPerEvent {
		appLog.Error("recurrence expansion truncated", errors.New("max occurrences reached"),
			"id", ev.ID, "cap", maxOccurrencesPerEvent)
		times = times[:maxOccurrencesPerEvent]
	}
	return times, nil
}

// ExpandRecurring replaces each recurring event with one copy per
// repetition inside year. The copy on the stored date keeps the event id;
// the others get "<id>@<date>". Copies keep the stored date's layout, so a
// time of day carries over. Events that fail to expand are kept as stored.
func ExpandRecurring(events []model.CalendarEvent, year int, loc *time.Location) []model.CalendarEvent {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	to := endOfDay(time.Date(year, time.December, 31, 0, 0, 0, 0, loc))

	out := make([]model.CalendarEvent, 0, len(events))
	for _, ev := range events {
		if !ev.Recurring.Repeats() {
			out = append(out, ev)
			continue
		}

		times, err := Occurrences(ev, from, to, loc)
		if err != nil {
			appLog.Error("recurrence expansion failed; keeping stored date", err, "id", ev.ID, "date", ev.Date)
			out = append(out, ev)
			continue
		}

		layout := layoutOf(ev.Date)
		for _, t := range times {
			inst := ev
			date := t.Format(ISODate)
			if date != storedDay(ev.Date, loc) {
				inst.ID = ev.ID + "@" + date
			}
			inst.Date = t.Format(layout)
			out = append(out, inst)
		}
	}
	return out
}

func storedDay(s string, loc *time.Location) string {
	t, err := ParseDate(s, loc)
	if err != nil {
		return s
	}
	return t.Format(ISODate)
}
