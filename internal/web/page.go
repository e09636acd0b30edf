package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"churchsite/internal/calendar"
	appLog "churchsite/internal/log"
	"churchsite/internal/model"
)

//go:embed templates
var templateFS embed.FS

var pageFuncs = template.FuncMap{
	"weekdayClass": func(weekday int) string {
		switch weekday {
		case int(time.Sunday):
			return "sun"
		case int(time.Saturday):
			return "sat"
		default:
			return ""
		}
	},
}

type pageCell struct {
	Blank    bool
	Day      int
	Weekday  int
	Selected bool
	Today    bool
	Dots     []string
	More     int
}

type pageEvent struct {
	Title      string
	Date       string
	Time       string
	Location   string
	TypeLabel  string
	Color      string
	Department string
}

type pageData struct {
	SiteName    string
	Year        int
	Month       int
	MonthLabel  string
	Department  string
	Departments []model.Department
	Years       []int
	Weekdays    []string
	Weeks       [][]pageCell
	PrevMonth   int
	NextMonth   int
	HasPrev     bool
	HasNext     bool
	ListTitle   string
	Events      []pageEvent
}

// handleCalendarPage renders the month view. Navigation stays inside the
// selected year; the root element carries data-ready="true" once
// rendered, which the capture command waits for.
//
// GET /calendar?year=2025&month=2&department=youth&day=14
func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	ds := s.data.Current()
	year, month, dept := s.selection(r, ds)
	month = calendar.ClampMonth(month)
	selectedDay := parseIntDefault(r.URL.Query().Get("day"), 0)

	q := s.query(ds)
	monthEvents := calendar.FilterByDepartment(q.EventsForMonth(year, month), dept)
	buckets := s.dayBuckets(monthEvents)
	today := s.now().In(s.loc)

	data := pageData{
		SiteName:    s.cfg.Site.Name,
		Year:        year,
		Month:       month,
		MonthLabel:  calendar.MonthLabel(month),
		Department:  dept,
		Departments: ds.Departments(),
		Years:       ds.Years(),
		Weekdays:    calendar.WeekdayLabels(),
		PrevMonth:   calendar.PrevMonth(month),
		NextMonth:   calendar.NextMonth(month),
		HasPrev:     month > 0,
		HasNext:     month < 11,
		ListTitle:   "이번 달 일정",
	}

	for _, week := range calendar.Weeks(calendar.BuildMonthGrid(year, month, s.loc)) {
		row := make([]pageCell, 0, 7)
		for i, c := range week {
			if c.Empty() {
				row = append(row, pageCell{Blank: true, Weekday: i})
				continue
			}
			dayEvents := buckets[c.Date.Day()]
			cell := pageCell{
				Day:      c.Date.Day(),
				Weekday:  int(c.Date.Weekday()),
				Selected: c.Date.Day() == selectedDay,
				Today:    calendar.SameDay(c.Date, today),
			}
			for j, ev := range dayEvents {
				if j == maxDots {
					cell.More = len(dayEvents) - maxDots
					break
				}
				cell.Dots = append(cell.Dots, eventColor(ds, ev))
			}
			row = append(row, cell)
		}
		data.Weeks = append(data.Weeks, row)
	}

	listed := monthEvents
	if selectedDay > 0 {
		listed = calendar.FilterByDepartment(q.EventsForDay(year, month, selectedDay), dept)
		if t := time.Date(year, time.Month(month+1), selectedDay, 0, 0, 0, 0, s.loc); t.Day() == selectedDay {
			data.ListTitle = calendar.FormatShort(t)
		}
	}
	for _, dto := range s.toDTOs(ds, listed) {
		pe := pageEvent{
			Title:      dto.Title,
			Date:       dto.DisplayDate,
			Location:   dto.Location,
			TypeLabel:  dto.TypeLabel,
			Color:      dto.Color,
			Department: dto.DepartmentName,
		}
		if dto.StartTime != "" {
			pe.Time = dto.StartTime
			if dto.EndTime != "" {
				pe.Time += " - " + dto.EndTime
			}
		}
		data.Events = append(data.Events, pe)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		appLog.Error("calendar page render failed", err, "year", year, "month", month)
	}
}
