package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"churchsite/internal/calendar"
	appLog "churchsite/internal/log"
	"churchsite/internal/model"
)

// defaultDuration applies to timed events without an end time.
const defaultDuration = time.Hour

// ExportOptions controls feed generation.
type ExportOptions struct {
	// Name is shown by calendar clients (X-WR-CALNAME).
	Name string
	// Domain is appended to event ids to form UIDs ("<id>@<domain>").
	Domain string
	// Location is the zone event dates and times are read in.
	Location *time.Location
	// Now stamps every VEVENT (DTSTAMP). Zero means time.Now.
	Now time.Time
}

// Departments resolves department names for event descriptions.
type Departments interface {
	Department(id string) (model.Department, bool)
}

// Export builds an iCalendar feed of events. Events without a parseable
// date are skipped. Recurring events carry an RRULE; clients expand it.
// Timed events are written in local time with a TZID and a matching
// VTIMEZONE, or in UTC when Location is UTC or Local.
func Export(events []model.CalendarEvent, depts Departments, opts ExportOptions) *ical.Calendar {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Domain == "" {
		opts.Domain = "churchsite"
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//churchsite//calendar//KO")
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	cal.SetXWRTimezone(opts.Location.String())

	dated := make([]datedEvent, 0, len(events))
	var timed []datedEvent // placed at a clock time, needing a VTIMEZONE
	skipped := 0
	for _, ev := range events {
		day, err := calendar.ParseDate(ev.Date, opts.Location)
		if err != nil {
			appLog.Debug("ics export skipped event", "id", ev.ID, "err", err)
			skipped++
			continue
		}
		te := datedEvent{ev: ev, day: calendar.Day(day)}
		dated = append(dated, te)
		if _, ok := atClock(te.day, ev.StartTime); ok {
			timed = append(timed, te)
		}
	}

	if zoneID(opts.Location) != "" {
		if from, to, ok := yearSpan(timed); ok {
			addTimezone(cal, opts.Location, from, to)
		}
	}
	for _, te := range dated {
		addEvent(cal, te, depts, opts)
	}
	if skipped > 0 {
		appLog.Info("ics export skipped undated events", "skipped", skipped, "total", len(events))
	}
	return cal
}

// Write serializes the feed of events to w.
func Write(w io.Writer, events []model.CalendarEvent, depts Departments, opts ExportOptions) error {
	cal := Export(events, depts, opts)
	_, err := io.WriteString(w, cal.Serialize())
	return err
}

// datedEvent is an event with its calendar day resolved in the feed zone.
type datedEvent struct {
	ev  model.CalendarEvent
	day time.Time
}

func addEvent(cal *ical.Calendar, te datedEvent, depts Departments, opts ExportOptions) {
	ev, day := te.ev, te.day

	vev := cal.AddEvent(ev.ID + "@" + opts.Domain)
	vev.SetDtStampTime(opts.Now)
	vev.SetSummary(ev.Title)

	start, hasStart := atClock(day, ev.StartTime)
	if !hasStart {
		vev.SetAllDayStartAt(day)
		vev.SetAllDayEndAt(day.AddDate(0, 0, 1))
	} else {
		end, hasEnd := atClock(day, ev.EndTime)
		if !hasEnd || !end.After(start) {
			end = start.Add(defaultDuration)
		}
		if tzid := zoneID(opts.Location); tzid != "" {
			vev.SetProperty(ical.ComponentPropertyDtStart, start.Format(localTimestamp), ical.WithTZID(tzid))
			vev.SetProperty(ical.ComponentPropertyDtEnd, end.Format(localTimestamp), ical.WithTZID(tzid))
		} else {
			vev.SetStartAt(start)
			vev.SetEndAt(end)
		}
	}

	if ev.Location != "" {
		vev.SetLocation(ev.Location)
	}
	if desc := describe(ev, depts); desc != "" {
		vev.SetDescription(desc)
	}
	vev.SetProperty(ical.ComponentPropertyCategories, calendar.Classify(ev.Type).Label)

	rule, err := calendar.RRule(ev.Recurring, !hasStart, opts.Location)
	switch {
	case err != nil:
		appLog.Error("ics export dropped recurrence", err, "id", ev.ID, "end_date", ev.Recurring.EndDate)
	case rule != "":
		vev.AddProperty(ical.ComponentPropertyRrule, rule)
	}
}

// atClock places an "HH:MM" time on day.
func atClock(day time.Time, clock string) (time.Time, bool) {
	if clock == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), true
}

func describe(ev model.CalendarEvent, depts Departments) string {
	var parts []string
	if ev.Description != "" {
		parts = append(parts, ev.Description)
	}
	if ev.Department != "" && ev.Department != model.AllDepartments && depts != nil {
		if d, ok := depts.Department(ev.Department); ok {
			parts = append(parts, "부서: "+d.Name)
		}
	}
	if ev.Attendees > 0 {
		parts = append(parts, fmt.Sprintf("예상 인원: %d명", ev.Attendees))
	}
	return strings.Join(parts, "\n")
}
