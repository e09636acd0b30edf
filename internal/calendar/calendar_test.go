package calendar

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"churchsite/internal/model"
)

type yearMap map[int][]model.CalendarEvent

func (m yearMap) CalendarEvents(year int) []model.CalendarEvent {
	return m[year]
}

func ids(events []model.CalendarEvent) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.ID)
	}
	return out
}

func newTestQuery(m yearMap, opts ...Option) *Query {
	return NewQuery(m, append([]Option{WithLocation(time.UTC)}, opts...)...)
}

func TestEventsForYearUnknownYear(t *testing.T) {
	q := newTestQuery(yearMap{2025: {{ID: "a", Date: "2025-01-01"}}})
	for _, year := range []int{0, 2024, 2026, 9999} {
		got := q.EventsForYear(year)
		if got == nil || len(got) != 0 {
			t.Errorf("EventsForYear(%d) = %v, want empty", year, got)
		}
	}
}

func TestEventsForMonth(t *testing.T) {
	q := newTestQuery(yearMap{2025: {
		{ID: "jan", Date: "2025-01-31"},
		{ID: "feb", Date: "2025-02-01"},
		{ID: "feb-time", Date: "2025-02-14T19:30:00"},
		{ID: "misfiled", Date: "2024-02-10"},
		{ID: "bad", Date: "not-a-date"},
		{ID: "empty", Date: ""},
	}})

	tests := []struct {
		month int
		want  []string
	}{
		{0, []string{"jan"}},
		{1, []string{"feb", "feb-time"}},
		{2, []string{}},
		{-1, []string{}},
		{12, []string{}},
	}
	for _, tt := range tests {
		if got := ids(q.EventsForMonth(2025, tt.month)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("EventsForMonth(2025, %d) = %v, want %v", tt.month, got, tt.want)
		}
	}
}

func TestEventsForMonthConvertsZonedDates(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	q := NewQuery(yearMap{2025: {
		// 2025-01-31 20:00 UTC is 2025-02-01 05:00 in Seoul.
		{ID: "z", Date: "2025-01-31T20:00:00Z"},
	}}, WithLocation(seoul))

	if got := ids(q.EventsForMonth(2025, 1)); !reflect.DeepEqual(got, []string{"z"}) {
		t.Errorf("EventsForMonth(2025, 1) = %v", got)
	}
	if got := ids(q.EventsForDay(2025, 1, 1)); !reflect.DeepEqual(got, []string{"z"}) {
		t.Errorf("EventsForDay(2025, 1, 1) = %v", got)
	}
}

func TestEventsForDay(t *testing.T) {
	q := newTestQuery(yearMap{2025: {
		{ID: "15", Date: "2025-01-15"},
		{ID: "15-evening", Date: "2025-01-15T18:00"},
		{ID: "16", Date: "2025-01-16"},
		{ID: "feb15", Date: "2025-02-15"},
	}})

	if got := ids(q.EventsForDay(2025, 0, 15)); !reflect.DeepEqual(got, []string{"15", "15-evening"}) {
		t.Errorf("EventsForDay(2025, 0, 15) = %v", got)
	}

	invalid := [][3]int{{2025, 1, 30}, {2025, 0, 0}, {2025, 0, 32}, {2025, 12, 1}, {2025, -1, 15}}
	for _, c := range invalid {
		if got := q.EventsForDay(c[0], c[1], c[2]); len(got) != 0 {
			t.Errorf("EventsForDay(%v) = %v, want empty", c, ids(got))
		}
	}
}

func TestFilterByDepartment(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: "youth", Department: "youth"},
		{ID: "church", Department: model.AllDepartments},
		{ID: "deacons", Department: "deacons"},
	}

	if got := FilterByDepartment(events, model.AllDepartments); !reflect.DeepEqual(got, events) {
		t.Errorf("all filter changed input: %v", ids(got))
	}
	if got := ids(FilterByDepartment(events, "youth")); !reflect.DeepEqual(got, []string{"youth", "church"}) {
		t.Errorf("youth filter = %v", got)
	}
	// Church-wide events are visible under every department filter.
	for _, dept := range []string{"youth", "deacons", "elders", ""} {
		found := false
		for _, ev := range FilterByDepartment(events, dept) {
			if ev.ID == "church" {
				found = true
			}
		}
		if !found {
			t.Errorf("filter %q dropped church-wide event", dept)
		}
	}
}

func TestDayAndDepartmentScenario(t *testing.T) {
	q := newTestQuery(yearMap{2025: {
		{ID: "first", Date: "2025-03-01", Department: "youth"},
		{ID: "second", Date: "2025-03-01", Department: model.AllDepartments},
	}})

	got := FilterByDepartment(q.EventsForDay(2025, 2, 1), "deacons")
	if !reflect.DeepEqual(ids(got), []string{"second"}) {
		t.Errorf("got %v, want [second]", ids(got))
	}
}

func TestBuildMonthGrid(t *testing.T) {
	tests := []struct {
		name              string
		year, month       int
		leading, trailing int
		length            int
	}{
		{"jan 2025 starts wednesday", 2025, 0, 3, 1, 35},
		{"feb 2026 fits four weeks", 2026, 1, 0, 0, 28},
		{"mar 2025 needs six weeks", 2025, 2, 6, 5, 42},
		{"feb 2024 leap year", 2024, 1, 4, 2, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := BuildMonthGrid(tt.year, tt.month, time.UTC)
			if len(grid) != tt.length {
				t.Fatalf("len = %d, want %d", len(grid), tt.length)
			}
			for i := 0; i < tt.leading; i++ {
				if !grid[i].Empty() {
					t.Errorf("cell %d should be blank", i)
				}
			}
			for i := len(grid) - tt.trailing; i < len(grid); i++ {
				if !grid[i].Empty() {
					t.Errorf("cell %d should be blank", i)
				}
			}
			if d := grid[tt.leading].Date; d.Day() != 1 || int(d.Month())-1 != tt.month {
				t.Errorf("first day cell = %v", d)
			}
		})
	}
}

func TestBuildMonthGridShape(t *testing.T) {
	for year := 2020; year <= 2030; year++ {
		for month := 0; month < 12; month++ {
			grid := BuildMonthGrid(year, month, time.UTC)
			if len(grid)%7 != 0 {
				t.Fatalf("%d-%02d: len %d not a multiple of 7", year, month+1, len(grid))
			}

			first, last := -1, -1
			for i, c := range grid {
				if !c.Empty() {
					if first < 0 {
						first = i
					}
					last = i
				}
			}
			for i := first; i <= last; i++ {
				if grid[i].Empty() {
					t.Fatalf("%d-%02d: gap at cell %d", year, month+1, i)
				}
				if int(grid[i].Date.Weekday()) != i%7 {
					t.Fatalf("%d-%02d: cell %d in wrong column", year, month+1, i)
				}
			}
		}
	}
}

func TestBuildMonthGridInvalidMonth(t *testing.T) {
	if got := BuildMonthGrid(2025, 12, time.UTC); got != nil {
		t.Errorf("expected nil grid, got %d cells", len(got))
	}
}

func TestWeeks(t *testing.T) {
	weeks := Weeks(BuildMonthGrid(2025, 2, time.UTC))
	if len(weeks) != 6 {
		t.Fatalf("weeks = %d, want 6", len(weeks))
	}
	for _, w := range weeks {
		if len(w) != 7 {
			t.Errorf("week has %d cells", len(w))
		}
	}
}

func TestMonthNavigationClamps(t *testing.T) {
	if PrevMonth(0) != 0 || NextMonth(11) != 11 {
		t.Error("navigation left the year")
	}
	if PrevMonth(5) != 4 || NextMonth(5) != 6 {
		t.Error("navigation inside the year broken")
	}
	if ClampMonth(-3) != 0 || ClampMonth(20) != 11 {
		t.Error("ClampMonth out of range")
	}
}

func TestClassify(t *testing.T) {
	if s := Classify(model.CategoryWorship); s.Color != "#8b5cf6" || s.Label != "예배" {
		t.Errorf("worship = %+v", s)
	}
	if s := Classify(model.CategoryRetreat); s.Color != "#ec4899" || s.Label != "수련회" {
		t.Errorf("retreat = %+v", s)
	}

	etc := Classify(model.CategoryEtc)
	for _, in := range []model.Category{"", "party", "WORSHIP", "예배"} {
		if got := Classify(in); got != etc {
			t.Errorf("Classify(%q) = %+v, want etc style", in, got)
		}
	}
	if n := len(TypeStyles()); n != 6 {
		t.Errorf("TypeStyles() = %d entries", n)
	}
}

func TestParseDate(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2025-03-01", "2025-03-01 00:00", false},
		{" 2025-03-01 ", "2025-03-01 00:00", false},
		{"2025-03-01T10:30", "2025-03-01 10:30", false},
		{"2025-03-01T10:30:00", "2025-03-01 10:30", false},
		{"2025-03-01T01:00:00Z", "2025-03-01 10:00", false},
		{"2025-02-30", "", true},
		{"03/01/2025", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in, seoul)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q): %v", tt.in, err)
			continue
		}
		if s := got.Format("2006-01-02 15:04"); s != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, s, tt.want)
		}
	}
}

func TestDateHelpers(t *testing.T) {
	if d := EndOfMonth(2024, time.February, time.UTC); d.Day() != 29 {
		t.Errorf("EndOfMonth(2024-02) = %v", d)
	}
	days := DaysInRange(StartOfMonth(2025, time.April, time.UTC), EndOfMonth(2025, time.April, time.UTC))
	if len(days) != 30 {
		t.Errorf("April has %d days", len(days))
	}
	if DaysInRange(days[5], days[0]) != nil {
		t.Error("reversed range should be nil")
	}

	a := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	b := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	if !SameDay(a, b) || SameDay(a, b.AddDate(0, 0, 1)) {
		t.Error("SameDay wrong")
	}
	if !SameMonth(a, b.AddDate(0, 0, 20)) || SameMonth(a, b.AddDate(0, 1, 0)) {
		t.Error("SameMonth wrong")
	}

	if got := FormatLong(a); got != "2025년 3월 1일 (토)" {
		t.Errorf("FormatLong = %q", got)
	}
	if got := FormatShort(a); got != "3월 1일 (토)" {
		t.Errorf("FormatShort = %q", got)
	}
	if got := MonthLabel(11); got != "12월" {
		t.Errorf("MonthLabel(11) = %q", got)
	}
	if got := WeekdayLabels(); got[0] != "일" || got[6] != "토" {
		t.Errorf("WeekdayLabels = %v", got)
	}
}

func TestRRule(t *testing.T) {
	tests := []struct {
		name   string
		r      *model.Recurrence
		allDay bool
		want   string
	}{
		{"nil", nil, false, ""},
		{"none", &model.Recurrence{Kind: model.RecurNone}, false, ""},
		{"weekly timed", &model.Recurrence{Kind: model.RecurWeekly, EndDate: "2025-05-31"}, false, "FREQ=WEEKLY;UNTIL=20250531T235959Z"},
		{"weekly all-day", &model.Recurrence{Kind: model.RecurWeekly, EndDate: "2025-05-31"}, true, "FREQ=WEEKLY;UNTIL=20250531"},
		{"monthly open", &model.Recurrence{Kind: model.RecurMonthly}, true, "FREQ=MONTHLY"},
	}
	for _, tt := range tests {
		got, err := RRule(tt.r, tt.allDay, time.UTC)
		if err != nil {
			t.Errorf("%s: RRule error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: RRule = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRRuleAllDayUntilUsesLocalDate(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)
	got, err := RRule(&model.Recurrence{Kind: model.RecurWeekly, EndDate: "2025-05-31"}, true, kst)
	if err != nil {
		t.Fatal(err)
	}
	if got != "FREQ=WEEKLY;UNTIL=20250531" {
		t.Errorf("RRule = %q", got)
	}
}

func TestBadEndDateRejectedConsistently(t *testing.T) {
	r := &model.Recurrence{Kind: model.RecurWeekly, EndDate: "someday"}
	if _, err := RRule(r, true, time.UTC); err == nil {
		t.Error("RRule accepted an unparseable end date")
	}

	ev := model.CalendarEvent{ID: "prayer", Date: "2025-04-23", Recurring: r}
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	if _, err := Occurrences(ev, from, to, time.UTC); err == nil {
		t.Error("Occurrences accepted an unparseable end date")
	}

	got := ExpandRecurring([]model.CalendarEvent{ev}, 2025, time.UTC)
	if len(got) != 1 || got[0].ID != "prayer" || got[0].Date != "2025-04-23" {
		t.Errorf("ExpandRecurring = %+v, want stored event only", got)
	}
}

func TestExpandRecurringKeepsTimeOfDay(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: "prayer", Date: "2025-04-23T19:30", Recurring: &model.Recurrence{Kind: model.RecurWeekly, EndDate: "2025-05-07"}},
		{ID: "choir", Date: "2025-04-05 14:00", Recurring: &model.Recurrence{Kind: model.RecurMonthly, EndDate: "2025-05-31"}},
	}
	got := ExpandRecurring(events, 2025, time.UTC)

	dates := make(map[string]string, len(got))
	for _, ev := range got {
		dates[ev.ID] = ev.Date
	}
	want := map[string]string{
		"prayer":            "2025-04-23T19:30",
		"prayer@2025-04-30": "2025-04-30T19:30",
		"prayer@2025-05-07": "2025-05-07T19:30",
		"choir":             "2025-04-05 14:00",
		"choir@2025-05-05":  "2025-05-05 14:00",
	}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("expanded dates = %v, want %v", dates, want)
	}
}

func TestRecurringEventsNotExpandedByDefault(t *testing.T) {
	q := newTestQuery(yearMap{2025: {
		{ID: "prayer", Date: "2025-04-23", Recurring: &model.Recurrence{Kind: model.RecurWeekly, EndDate: "2025-05-31"}},
	}})

	if got := q.EventsForDay(2025, 3, 30); len(got) != 0 {
		t.Errorf("repetition date matched without expansion: %v", ids(got))
	}
	if got := q.EventsForYear(2025); len(got) != 1 {
		t.Errorf("EventsForYear = %d events, want 1", len(got))
	}
}

func TestRecurrenceExpansion(t *testing.T) {
	q := newTestQuery(yearMap{2025: {
		{ID: "prayer", Date: "2025-04-23", Recurring: &model.Recurrence{Kind: model.RecurWeekly, EndDate: "2025-05-31"}},
		{ID: "board", Date: "2025-01-05", Recurring: &model.Recurrence{Kind: model.RecurMonthly}},
		{ID: "once", Date: "2025-06-01", Recurring: &model.Recurrence{Kind: model.RecurNone}},
	}}, WithRecurrenceExpansion(true))

	byBase := map[string]int{}
	for _, ev := range q.EventsForYear(2025) {
		byBase[strings.SplitN(ev.ID, "@", 2)[0]]++
	}
	want := map[string]int{"prayer": 6, "board": 12, "once": 1}
	if !reflect.DeepEqual(byBase, want) {
		t.Errorf("expanded counts = %v, want %v", byBase, want)
	}

	got := ids(q.EventsForDay(2025, 3, 30))
	if !reflect.DeepEqual(got, []string{"prayer@2025-04-30"}) {
		t.Errorf("EventsForDay(2025-04-30) = %v", got)
	}
	got = ids(q.EventsForDay(2025, 3, 23))
	if !reflect.DeepEqual(got, []string{"prayer"}) {
		t.Errorf("stored date lost its id: %v", got)
	}
	if got := q.EventsForDay(2025, 5, 4); len(got) != 0 {
		t.Errorf("repetition after end date: %v", ids(got))
	}
}

func TestOccurrencesRejectsBadInput(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	if _, err := Occurrences(model.CalendarEvent{Date: "x"}, from, to, time.UTC); err == nil {
		t.Error("expected error for bad date")
	}
	if _, err := Occurrences(model.CalendarEvent{Date: "2025-01-01"}, to, from, time.UTC); err == nil {
		t.Error("expected error for reversed range")
	}
	got, err := Occurrences(model.CalendarEvent{Date: "2026-01-01"}, from, to, time.UTC)
	if err != nil || len(got) != 0 {
		t.Errorf("out of range single event = %v, %v", got, err)
	}
}
