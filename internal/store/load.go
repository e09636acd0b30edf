package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	appLog "churchsite/internal/log"
	"churchsite/internal/model"
)

// File names inside the data directory.
const (
	departmentsFile = "departments.json"
	eventsFile      = "events.json"
	attendanceFile  = "attendance.json"
	budgetFile      = "budget.json"
	calendarDir     = "calendar"
)

// Load reads every data file under dir into a new Dataset.
//
// Layout:
//
//	dir/departments.json
//	dir/events.json
//	dir/attendance.json
//	dir/budget.json
//	dir/calendar/<year>.json
//
// Missing files yield empty collections. Malformed JSON is an error.
func Load(dir string) (*Dataset, error) {
	if dir == "" {
		return nil, errors.New("data dir is empty")
	}

	var (
		departments []model.Department
		events      []model.Event
		attendance  []model.AttendanceRecord
		budget      []model.BudgetRecord
	)

	if err := readJSON(filepath.Join(dir, departmentsFile), &departments); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, eventsFile), &events); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, attendanceFile), &attendance); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, budgetFile), &budget); err != nil {
		return nil, err
	}

	calendar, err := loadCalendar(filepath.Join(dir, calendarDir))
	if err != nil {
		return nil, err
	}

	ds := NewDataset(departments, events, attendance, budget, calendar)
	appLog.Info("dataset loaded",
		"dir", dir,
		"departments", len(departments),
		"events", len(events),
		"attendance", len(attendance),
		"budget", len(budget),
		"calendar_years", len(calendar),
	)
	return ds, nil
}

// loadCalendar reads one partition per <year>.json file. Files whose base
// name is not a year are skipped.
func loadCalendar(dir string) (map[int][]model.CalendarEvent, error) {
	out := make(map[int][]model.CalendarEvent)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return nil, err
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
		if err != nil {
			appLog.Debug("calendar file skipped; name is not a year", "file", name)
			continue
		}

		var evs []model.CalendarEvent
		if err := readJSON(filepath.Join(dir, name), &evs); err != nil {
			return nil, err
		}
		if evs == nil {
			evs = []model.CalendarEvent{}
		}
		out[year] = evs
	}
	return out, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Debug("data file missing; using empty set", "path", path)
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
