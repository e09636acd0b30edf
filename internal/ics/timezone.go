package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// localTimestamp is the iCalendar date-time layout without a zone suffix.
const localTimestamp = "20060102T150405"

// zoneID returns the TZID used for loc, or "" when times are written in
// UTC instead.
func zoneID(loc *time.Location) string {
	switch name := loc.String(); name {
	case "", "UTC", "Local":
		return ""
	default:
		return name
	}
}

// addTimezone writes a VTIMEZONE for loc with one observance per offset
// change between the start of year from and the end of year to.
func addTimezone(cal *ical.Calendar, loc *time.Location, from, to int) {
	tz := cal.AddTimezone(zoneID(loc))
	start := time.Date(from, time.January, 1, 0, 0, 0, 0, loc)
	end := time.Date(to+1, time.January, 1, 0, 0, 0, 0, loc)

	name, offset := start.Zone()
	addObservance(tz, start, name, offset, offset, start.IsDST())

	for t := start; ; {
		_, next := t.ZoneBounds()
		if next.IsZero() || !next.After(t) || !next.Before(end) {
			return
		}
		prev := offset
		name, offset = next.Zone()
		// An observance starts at the local time of the offset it replaces.
		addObservance(tz, next.In(time.FixedZone("", prev)), name, prev, offset, next.IsDST())
		t = next
	}
}

func addObservance(tz *ical.VTimezone, onset time.Time, name string, from, to int, dst bool) {
	var c *ical.ComponentBase
	if dst {
		d := &ical.Daylight{}
		tz.Components = append(tz.Components, d)
		c = &d.ComponentBase
	} else {
		c = &tz.AddStandard().ComponentBase
	}
	c.SetProperty(ical.ComponentPropertyDtStart, onset.Format(localTimestamp))
	c.SetProperty(ical.ComponentProperty(ical.PropertyTzoffsetfrom), utcOffset(from))
	c.SetProperty(ical.ComponentProperty(ical.PropertyTzoffsetto), utcOffset(to))
	if name != "" {
		c.SetProperty(ical.ComponentProperty(ical.PropertyTzname), name)
	}
}

// utcOffset renders seconds east of UTC as "+0900".
func utcOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("%c%02d%02d", sign, seconds/3600, seconds%3600/60)
}

// yearSpan returns the first and last year among events.
func yearSpan(events []datedEvent) (from, to int, ok bool) {
	for _, te := range events {
		y := te.day.Year()
		if !ok || y < from {
			from = y
		}
		if !ok || y > to {
			to = y
		}
		ok = true
	}
	return from, to, ok
}
