package web

import (
	"net/http"

	"churchsite/internal/model"
	"churchsite/internal/stats"
	"churchsite/internal/store"
)

// departmentRecentLimit is the length of a department page's activity list.
const departmentRecentLimit = 5

type departmentSummary struct {
	model.Department
	Stats model.DepartmentStats `json:"stats"`
}

type budgetDTO struct {
	model.BudgetRecord
	Utilization int   `json:"utilization"`
	Remaining   int64 `json:"remaining"`
}

type departmentResponse struct {
	Department       model.Department         `json:"department"`
	Stats            model.DepartmentStats    `json:"stats"`
	AttendanceRate   int                      `json:"attendanceRate"`
	LatestAttendance *model.AttendanceRecord  `json:"latestAttendance,omitempty"`
	Attendance       []model.AttendanceRecord `json:"attendance"`
	CurrentBudget    *budgetDTO               `json:"currentBudget,omitempty"`
	Budget           []budgetDTO              `json:"budget"`
	RecentEvents     []model.Event            `json:"recentEvents"`
	Posts            []model.Post             `json:"posts"`
}

type postResponse struct {
	model.Post
	HTML string `json:"html"`
}

func (s *Server) handleDepartments(w http.ResponseWriter, _ *http.Request) {
	ds := s.data.Current()
	all := s.posts.All()

	out := make([]departmentSummary, 0, len(ds.Departments()))
	for _, d := range ds.Departments() {
		out = append(out, departmentSummary{
			Department: d,
			Stats:      stats.Summarize(ds, all, d.ID),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDepartment returns a department page's figures. Unknown ids are
// 404.
//
// GET /api/departments/{id}?year=2025
//   - year selects the current budget; default is the latest budget year
func (s *Server) handleDepartment(w http.ResponseWriter, r *http.Request) {
	ds := s.data.Current()
	id := r.PathValue("id")

	dept, ok := ds.Department(id)
	if !ok {
		writeError(w, http.StatusNotFound, "department not found")
		return
	}

	attendance := ds.AttendanceByDepartment(id)
	resp := departmentResponse{
		Department:     dept,
		Stats:          stats.Summarize(ds, s.posts.All(), id),
		AttendanceRate: stats.AttendanceRate(attendance),
		Attendance:     attendance,
		Budget:         make([]budgetDTO, 0),
		RecentEvents:   stats.RecentEvents(ds.EventsByDepartment(id), departmentRecentLimit),
		Posts:          s.posts.ByDepartment(id),
	}
	if latest, ok := stats.LatestAttendance(attendance); ok {
		resp.LatestAttendance = &latest
	}

	records := ds.BudgetByDepartment(id, 0)
	year := parseIntDefault(r.URL.Query().Get("year"), latestBudgetYear(records))
	for _, b := range records {
		dto := budgetDTO{BudgetRecord: b, Utilization: stats.BudgetUtilization(b), Remaining: stats.Remaining(b)}
		resp.Budget = append(resp.Budget, dto)
		if b.Year == year && resp.CurrentBudget == nil {
			cur := dto
			resp.CurrentBudget = &cur
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func latestBudgetYear(records []model.BudgetRecord) int {
	latest := 0
	for _, b := range records {
		if b.Year > latest {
			latest = b.Year
		}
	}
	return latest
}

// handleRecentEvents returns the newest department activities.
//
// GET /api/events/recent?limit=3
func (s *Server) handleRecentEvents(w http.ResponseWriter, r *http.Request) {
	ds := s.data.Current()
	limit := parseIntDefault(r.URL.Query().Get("limit"), s.cfg.RecentLimit)
	if limit <= 0 {
		limit = s.cfg.RecentLimit
	}
	writeJSON(w, http.StatusOK, stats.RecentEvents(ds.Events(), limit))
}

// handlePosts lists posts, newest first.
//
// GET /api/posts?department=youth&tag=worship
func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	dept, tag := q.Get("department"), q.Get("tag")

	var list []model.Post
	switch {
	case dept != "" && tag != "":
		list = withTag(s.posts.ByDepartment(dept), tag)
	case dept != "":
		list = s.posts.ByDepartment(dept)
	case tag != "":
		list = s.posts.ByTag(tag)
	default:
		list = s.posts.All()
	}
	writeJSON(w, http.StatusOK, list)
}

func withTag(list []model.Post, tag string) []model.Post {
	out := make([]model.Post, 0, len(list))
	for _, p := range list {
		for _, t := range p.Tags {
			if t == tag {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	p, ok := s.posts.BySlug(slug)
	if !ok {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, postResponse{Post: p, HTML: s.posts.Render(slug)})
}

func (s *Server) handleTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.posts.Tags())
}

var _ stats.DepartmentData = (*store.Dataset)(nil)
