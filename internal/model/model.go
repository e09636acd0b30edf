package model

// AllDepartments is the department value of church-wide records. It is not
// a real department id.
const AllDepartments = "all"

// Department is an organizational sub-group (a ministry or age-group
// society) that owns events, attendance and budget records.
type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Color is a display hint (CSS color), not validated.
	Color string `json:"color"`
}

// Event is a recorded department activity.
type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Department  string   `json:"department"`
	Attendees   int      `json:"attendees,omitempty"`
	Budget      int64    `json:"budget,omitempty"`
	Images      []string `json:"images,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Category is the type of a calendar event.
type Category string

const (
	CategoryWorship Category = "worship"
	CategoryMeeting Category = "meeting"
	CategoryEvent   Category = "event"
	CategoryService Category = "service"
	CategoryRetreat Category = "retreat"
	CategoryEtc     Category = "etc"
)

// Categories lists the known categories in display order.
var Categories = []Category{
	CategoryWorship,
	CategoryMeeting,
	CategoryEvent,
	CategoryService,
	CategoryRetreat,
	CategoryEtc,
}

type RecurrenceKind string

const (
	RecurNone    RecurrenceKind = "none"
	RecurWeekly  RecurrenceKind = "weekly"
	RecurMonthly RecurrenceKind = "monthly"
)

// Recurrence describes how an event repeats. EndDate is inclusive and may
// be empty (repeat until the end of the event's year).
type Recurrence struct {
	Kind    RecurrenceKind `json:"type"`
	EndDate string         `json:"endDate,omitempty"`
}

// Repeats reports whether r describes an actual repetition.
func (r *Recurrence) Repeats() bool {
	return r != nil && (r.Kind == RecurWeekly || r.Kind == RecurMonthly)
}

// CalendarEvent is a dated entry of the yearly church calendar.
type CalendarEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Date        string      `json:"date"`
	StartTime   string      `json:"startTime,omitempty"` // "HH:MM"
	EndTime     string      `json:"endTime,omitempty"`
	Department  string      `json:"department"`
	Type        Category    `json:"type"`
	Location    string      `json:"location,omitempty"`
	Description string      `json:"description,omitempty"`
	Attendees   int         `json:"attendees,omitempty"`
	Budget      int64       `json:"budget,omitempty"`
	Recurring   *Recurrence `json:"recurring,omitempty"`
}

// AttendanceRecord is the head count of a department for one month.
type AttendanceRecord struct {
	// Date is a "YYYY-MM" period key.
	Date       string `json:"date"`
	Department string `json:"department"`
	Count      int    `json:"count"`
	// Total is the department's member count; zero when unknown.
	Total int `json:"total,omitempty"`
}

// BudgetRecord is the yearly budget of a department.
type BudgetRecord struct {
	Year       int    `json:"year"`
	Department string `json:"department"`
	Allocated  int64  `json:"allocated"`
	Spent      int64  `json:"spent"`
	Category   string `json:"category,omitempty"`
}

// Post is a blog post loaded from a Markdown file.
type Post struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	Department string   `json:"department"`
	Tags       []string `json:"tags"`
	Excerpt    string   `json:"excerpt,omitempty"`
	Content    string   `json:"-"`
	Images     []string `json:"images,omitempty"`
	Attendees  int      `json:"attendees,omitempty"`
	Budget     int64    `json:"budget,omitempty"`
}

// DepartmentStats summarizes one department for dashboards.
type DepartmentStats struct {
	Department        string `json:"department"`
	TotalEvents       int    `json:"totalEvents"`
	AverageAttendance int    `json:"averageAttendance"`
	TotalBudget       int64  `json:"totalBudget"`
	RecentPosts       int    `json:"recentPosts"`
}
