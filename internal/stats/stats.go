package stats

import (
	"math"
	"sort"
	"time"

	"churchsite/internal/calendar"
	"churchsite/internal/model"
)

// AttendanceRate averages count/total (as a percentage) over records with
// a positive total and rounds to the nearest integer. Records without a
// total are left out entirely. Empty input yields 0.
//
// The mean of per-record rates differs from a pooled sum(count)/sum(total)
// when department sizes vary; dashboards expect the per-record mean.
func AttendanceRate(records []model.AttendanceRecord) int {
	var sum float64
	n := 0
	for _, r := range records {
		if r.Total <= 0 {
			continue
		}
		sum += float64(r.Count) / float64(r.Total) * 100
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

// LatestAttendance returns the last record in dataset order.
func LatestAttendance(records []model.AttendanceRecord) (model.AttendanceRecord, bool) {
	if len(records) == 0 {
		return model.AttendanceRecord{}, false
	}
	return records[len(records)-1], true
}

// RecentEvents returns up to limit events, newest first. Events sharing a
// date keep their dataset order; undated events sort last. events itself
// is not reordered.
func RecentEvents(events []model.Event, limit int) []model.Event {
	if limit <= 0 {
		return []model.Event{}
	}

	type keyed struct {
		ev model.Event
		at time.Time
		ok bool
	}
	ks := make([]keyed, len(events))
	for i, ev := range events {
		at, err := calendar.ParseDate(ev.Date, time.UTC)
		ks[i] = keyed{ev: ev, at: at, ok: err == nil}
	}

	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].ok != ks[j].ok {
			return ks[i].ok
		}
		return ks[i].at.After(ks[j].at)
	})

	if len(ks) > limit {
		ks = ks[:limit]
	}
	out := make([]model.Event, 0, len(ks))
	for _, k := range ks {
		out = append(out, k.ev)
	}
	return out
}

// BudgetUtilization returns spent/allocated as a whole percentage. A
// record without an allocation reports 0.
func BudgetUtilization(r model.BudgetRecord) int {
	if r.Allocated <= 0 {
		return 0
	}
	return int(math.Round(float64(r.Spent) / float64(r.Allocated) * 100))
}

// Remaining returns the unspent part of the allocation; negative when
// overspent.
func Remaining(r model.BudgetRecord) int64 {
	return r.Allocated - r.Spent
}

// DepartmentData is the per-department view Summarize needs.
// *store.Dataset implements it.
type DepartmentData interface {
	EventsByDepartment(departmentID string) []model.Event
	AttendanceByDepartment(departmentID string) []model.AttendanceRecord
	BudgetByDepartment(departmentID string, year int) []model.BudgetRecord
}

// Summarize builds the dashboard figures of one department.
func Summarize(src DepartmentData, posts []model.Post, departmentID string) model.DepartmentStats {
	var total int64
	for _, b := range src.BudgetByDepartment(departmentID, 0) {
		total += b.Allocated
	}

	nPosts := 0
	for _, p := range posts {
		if p.Department == departmentID {
			nPosts++
		}
	}

	return model.DepartmentStats{
		Department:        departmentID,
		TotalEvents:       len(src.EventsByDepartment(departmentID)),
		AverageAttendance: AttendanceRate(src.AttendanceByDepartment(departmentID)),
		TotalBudget:       total,
		RecentPosts:       nPosts,
	}
}
