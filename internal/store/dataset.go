package store

import (
	"sort"

	"churchsite/internal/model"
)

// Dataset is one immutable snapshot of the static site data. Accessors
// return the stored slices; callers must not modify them.
type Dataset struct {
	departments []model.Department
	events      []model.Event
	attendance  []model.AttendanceRecord
	budget      []model.BudgetRecord

	// calendar partitions calendar events by year.
	calendar map[int][]model.CalendarEvent
}

// NewDataset builds a Dataset from already-parsed records. The maps and
// slices are owned by the Dataset afterwards.
func NewDataset(
	departments []model.Department,
	events []model.Event,
	attendance []model.AttendanceRecord,
	budget []model.BudgetRecord,
	calendar map[int][]model.CalendarEvent,
) *Dataset {
	if calendar == nil {
		calendar = map[int][]model.CalendarEvent{}
	}
	return &Dataset{
		departments: departments,
		events:      events,
		attendance:  attendance,
		budget:      budget,
		calendar:    calendar,
	}
}

// CalendarEvents returns the events partitioned under year. Unknown years
// yield an empty slice.
func (d *Dataset) CalendarEvents(year int) []model.CalendarEvent {
	if evs, ok := d.calendar[year]; ok {
		return evs
	}
	return []model.CalendarEvent{}
}

// Years returns the years that have a calendar partition, ascending.
func (d *Dataset) Years() []int {
	years := make([]int, 0, len(d.calendar))
	for y := range d.calendar {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func (d *Dataset) Departments() []model.Department {
	return d.departments
}

// Department looks up a department by id.
func (d *Dataset) Department(id string) (model.Department, bool) {
	for _, dept := range d.departments {
		if dept.ID == id {
			return dept, true
		}
	}
	return model.Department{}, false
}

func (d *Dataset) Events() []model.Event {
	return d.events
}

// EventsByDepartment returns events owned by exactly departmentID.
func (d *Dataset) EventsByDepartment(departmentID string) []model.Event {
	out := make([]model.Event, 0)
	for _, ev := range d.events {
		if ev.Department == departmentID {
			out = append(out, ev)
		}
	}
	return out
}

func (d *Dataset) Attendance() []model.AttendanceRecord {
	return d.attendance
}

func (d *Dataset) AttendanceByDepartment(departmentID string) []model.AttendanceRecord {
	out := make([]model.AttendanceRecord, 0)
	for _, rec := range d.attendance {
		if rec.Department == departmentID {
			out = append(out, rec)
		}
	}
	return out
}

func (d *Dataset) Budget() []model.BudgetRecord {
	return d.budget
}

// BudgetByDepartment returns the department's budget records. A year of 0
// matches every year.
func (d *Dataset) BudgetByDepartment(departmentID string, year int) []model.BudgetRecord {
	out := make([]model.BudgetRecord, 0)
	for _, rec := range d.budget {
		if rec.Department != departmentID {
			continue
		}
		if year != 0 && rec.Year != year {
			continue
		}
		out = append(out, rec)
	}
	return out
}
