package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"churchsite/internal/calendar"
	"churchsite/internal/config"
	appLog "churchsite/internal/log"
	"churchsite/internal/posts"
	"churchsite/internal/store"
)

// Server serves the JSON API, the iCalendar feed and the calendar page
// over the current data snapshot.
type Server struct {
	cfg   *config.Config
	data  *store.Holder
	posts *posts.Collection
	loc   *time.Location
	now   func() time.Time

	mux  *http.ServeMux
	page *template.Template
}

// NewServer constructs a new Server. A nil posts collection serves no
// posts.
func NewServer(cfg *config.Config, data *store.Holder, pc *posts.Collection) *Server {
	if pc == nil {
		pc = posts.NewCollection(nil)
	}
	s := &Server{
		cfg:   cfg,
		data:  data,
		posts: pc,
		loc:   cfg.Location(),
		now:   time.Now,
		mux:   http.NewServeMux(),
		page:  template.Must(template.New("calendar.html").Funcs(pageFuncs).ParseFS(templateFS, "templates/calendar.html")),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler with request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// Run serves on cfg.Listen until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		appLog.Info("HTTP server stopped")
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/years", s.handleYears)
	s.mux.HandleFunc("GET /api/event-types", s.handleEventTypes)
	s.mux.HandleFunc("GET /api/calendar", s.handleMonth)
	s.mux.HandleFunc("GET /api/calendar/day", s.handleDay)
	s.mux.HandleFunc("GET /api/calendar/grid", s.handleGrid)
	s.mux.HandleFunc("GET /calendar.ics", s.handleFeed)
	s.mux.HandleFunc("GET /calendar", s.handleCalendarPage)

	s.mux.HandleFunc("GET /api/departments", s.handleDepartments)
	s.mux.HandleFunc("GET /api/departments/{id}", s.handleDepartment)
	s.mux.HandleFunc("GET /api/events/recent", s.handleRecentEvents)
	s.mux.HandleFunc("GET /api/posts", s.handlePosts)
	s.mux.HandleFunc("GET /api/posts/{slug}", s.handlePost)
	s.mux.HandleFunc("GET /api/tags", s.handleTags)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// query builds a calendar query over the snapshot in effect.
func (s *Server) query(ds *store.Dataset) *calendar.Query {
	return calendar.NewQuery(ds,
		calendar.WithLocation(s.loc),
		calendar.WithRecurrenceExpansion(s.cfg.ExpandRecurring),
	)
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
