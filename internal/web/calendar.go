package web

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"churchsite/internal/calendar"
	"churchsite/internal/ics"
	appLog "churchsite/internal/log"
	"churchsite/internal/model"
	"churchsite/internal/store"
)

// maxDots is the number of event markers drawn in a grid cell.
const maxDots = 3

// eventDTO is a calendar event with its display attributes resolved.
type eventDTO struct {
	model.CalendarEvent
	TypeLabel      string `json:"typeLabel"`
	TypeColor      string `json:"typeColor"`
	Color          string `json:"color"`
	DepartmentName string `json:"departmentName,omitempty"`
	DisplayDate    string `json:"displayDate,omitempty"`
}

type monthResponse struct {
	Year       int        `json:"year"`
	Month      int        `json:"month"`
	MonthLabel string     `json:"monthLabel"`
	Department string     `json:"department"`
	Events     []eventDTO `json:"events"`
}

type dayResponse struct {
	Year       int        `json:"year"`
	Month      int        `json:"month"`
	Day        int        `json:"day"`
	Title      string     `json:"title"`
	Department string     `json:"department"`
	Events     []eventDTO `json:"events"`
}

type cellDTO struct {
	Blank      bool     `json:"blank"`
	Date       string   `json:"date,omitempty"`
	Day        int      `json:"day,omitempty"`
	Weekday    int      `json:"weekday"`
	EventCount int      `json:"eventCount"`
	Dots       []string `json:"dots,omitempty"`
}

type gridResponse struct {
	Year       int         `json:"year"`
	Month      int         `json:"month"`
	MonthLabel string      `json:"monthLabel"`
	Department string      `json:"department"`
	Weekdays   []string    `json:"weekdays"`
	Weeks      [][]cellDTO `json:"weeks"`
	PrevMonth  int         `json:"prevMonth"`
	NextMonth  int         `json:"nextMonth"`
}

type yearsResponse struct {
	Years   []int `json:"years"`
	Default int   `json:"default"`
}

// defaultYear prefers the current year when it has a partition, else the
// earliest available one.
func (s *Server) defaultYear(ds *store.Dataset) int {
	current := s.now().In(s.loc).Year()
	years := ds.Years()
	if len(years) == 0 || slices.Contains(years, current) {
		return current
	}
	return years[0]
}

// defaultMonth is the current month inside the current year and January
// otherwise.
func (s *Server) defaultMonth(year int) int {
	now := s.now().In(s.loc)
	if now.Year() == year {
		return int(now.Month()) - 1
	}
	return 0
}

// selection reads year, month and department from the query string.
func (s *Server) selection(r *http.Request, ds *store.Dataset) (year, month int, dept string) {
	q := r.URL.Query()
	year = parseIntDefault(q.Get("year"), s.defaultYear(ds))
	month = parseIntDefault(q.Get("month"), s.defaultMonth(year))
	dept = q.Get("department")
	if dept == "" {
		dept = model.AllDepartments
	}
	return year, month, dept
}

func (s *Server) handleYears(w http.ResponseWriter, _ *http.Request) {
	ds := s.data.Current()
	writeJSON(w, http.StatusOK, yearsResponse{Years: ds.Years(), Default: s.defaultYear(ds)})
}

func (s *Server) handleEventTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, calendar.TypeStyles())
}

// handleMonth returns the month's events.
//
// GET /api/calendar?year=2025&month=2&department=youth
//   - month is 0-indexed; out-of-range months match nothing
//   - department defaults to "all"
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	ds := s.data.Current()
	year, month, dept := s.selection(r, ds)

	events := calendar.FilterByDepartment(s.query(ds).EventsForMonth(year, month), dept)
	writeJSON(w, http.StatusOK, monthResponse{
		Year:       year,
		Month:      month,
		MonthLabel: calendar.MonthLabel(month),
		Department: dept,
		Events:     s.toDTOs(ds, events),
	})
}

// handleDay returns the events of one day.
//
// GET /api/calendar/day?year=2025&month=2&day=1&department=youth
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	ds := s.data.Current()
	year, month, dept := s.selection(r, ds)
	day := parseIntDefault(r.URL.Query().Get("day"), 0)

	events := calendar.FilterByDepartment(s.query(ds).EventsForDay(year, month, day), dept)

	title := ""
	if month >= 0 && month <= 11 && day >= 1 {
		t := time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, s.loc)
		if t.Day() == day {
			title = calendar.FormatShort(t)
		}
	}
	writeJSON(w, http.StatusOK, dayResponse{
		Year:       year,
		Month:      month,
		Day:        day,
		Title:      title,
		Department: dept,
		Events:     s.toDTOs(ds, events),
	})
}

// handleGrid returns the month grid with per-day event markers.
//
// GET /api/calendar/grid?year=2025&month=2&department=youth
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	ds := s.data.Current()
	year, month, dept := s.selection(r, ds)

	grid := calendar.BuildMonthGrid(year, month, s.loc)
	if grid == nil {
		writeError(w, http.StatusBadRequest, "month must be between 0 and 11")
		return
	}

	buckets := s.dayBuckets(calendar.FilterByDepartment(s.query(ds).EventsForMonth(year, month), dept))

	weeks := make([][]cellDTO, 0, len(grid)/7)
	for _, week := range calendar.Weeks(grid) {
		row := make([]cellDTO, 0, 7)
		for i, c := range week {
			if c.Empty() {
				row = append(row, cellDTO{Blank: true, Weekday: i})
				continue
			}
			dayEvents := buckets[c.Date.Day()]
			cell := cellDTO{
				Date:       c.Date.Format(calendar.ISODate),
				Day:        c.Date.Day(),
				Weekday:    int(c.Date.Weekday()),
				EventCount: len(dayEvents),
			}
			for j, ev := range dayEvents {
				if j == maxDots {
					break
				}
				cell.Dots = append(cell.Dots, eventColor(ds, ev))
			}
			row = append(row, cell)
		}
		weeks = append(weeks, row)
	}

	writeJSON(w, http.StatusOK, gridResponse{
		Year:       year,
		Month:      month,
		MonthLabel: calendar.MonthLabel(month),
		Department: dept,
		Weekdays:   calendar.WeekdayLabels(),
		Weeks:      weeks,
		PrevMonth:  calendar.PrevMonth(month),
		NextMonth:  calendar.NextMonth(month),
	})
}

// handleFeed serves a year's events as an iCalendar feed.
//
// GET /calendar.ics?year=2025&department=youth
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	ds := s.data.Current()
	q := r.URL.Query()
	year := parseIntDefault(q.Get("year"), s.defaultYear(ds))
	dept := q.Get("department")
	if dept == "" {
		dept = model.AllDepartments
	}

	// The feed carries RRULEs, so stored events are exported unexpanded.
	events := calendar.FilterByDepartment(ds.CalendarEvents(year), dept)

	name := s.cfg.Site.Name
	if d, ok := ds.Department(dept); ok {
		name = fmt.Sprintf("%s %s", name, d.Name)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="calendar-%d.ics"`, year))
	w.WriteHeader(http.StatusOK)
	if err := ics.Write(w, events, ds, ics.ExportOptions{
		Name:     name,
		Location: s.loc,
		Now:      s.now(),
	}); err != nil {
		appLog.Error("failed to write ics feed", err, "year", year, "department", dept)
	}
}

// dayBuckets groups a month's events by day of month.
func (s *Server) dayBuckets(events []model.CalendarEvent) map[int][]model.CalendarEvent {
	out := make(map[int][]model.CalendarEvent)
	for _, ev := range events {
		t, err := calendar.ParseDate(ev.Date, s.loc)
		if err != nil {
			continue
		}
		out[t.Day()] = append(out[t.Day()], ev)
	}
	return out
}

// eventColor prefers the owning department's color over the type color.
func eventColor(ds *store.Dataset, ev model.CalendarEvent) string {
	if d, ok := ds.Department(ev.Department); ok && d.Color != "" {
		return d.Color
	}
	return calendar.Classify(ev.Type).Color
}

func (s *Server) toDTOs(ds *store.Dataset, events []model.CalendarEvent) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		style := calendar.Classify(ev.Type)
		dto := eventDTO{
			CalendarEvent: ev,
			TypeLabel:     style.Label,
			TypeColor:     style.Color,
			Color:         eventColor(ds, ev),
		}
		if d, ok := ds.Department(ev.Department); ok {
			dto.DepartmentName = d.Name
		}
		if t, err := calendar.ParseDate(ev.Date, s.loc); err == nil {
			dto.DisplayDate = calendar.FormatLong(t)
		}
		out = append(out, dto)
	}
	return out
}
