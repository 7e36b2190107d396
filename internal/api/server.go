// Package api serves the dashboard over HTTP.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"phone-dashboard-go/internal/dataset"
	"phone-dashboard-go/internal/export"
	"phone-dashboard-go/internal/filter"
	"phone-dashboard-go/internal/logger"
	"phone-dashboard-go/internal/processor"
	"phone-dashboard-go/internal/reload"
)

type Server struct {
	Store    *dataset.Store
	Reloader *reload.Reloader
	Catalog  filter.Catalog
	// Defaults is the state a request starts from before its query is applied.
	Defaults filter.State
	Log      *logger.Logger
	Now      func() time.Time
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

type weekView struct {
	Index int       `json:"index"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Routes builds the router with its middleware stack.
func (s *Server) Routes(allowedOrigins []string) http.Handler {
	if s.Log == nil {
		s.Log = logger.New()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.Log))
	r.Use(middleware.Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/healthz", s.handleHealth)
	r.Get("/dataset", s.handleDataset)
	r.Get("/weeks", s.handleWeeks)
	r.Get("/dashboard", s.handleDashboard)
	r.Get("/export.csv", s.handleExport(formatCSV))
	r.Get("/export.xlsx", s.handleExport(formatXLSX))
	r.Post("/reload", s.handleReload)
	return r
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "ok")
}

func (s *Server) current(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, bool) {
	ds, err := s.Store.Current()
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return nil, false
	}
	return ds, true
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.current(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, r, http.StatusOK, ds.Describe())
}

func (s *Server) handleWeeks(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.current(w, r)
	if !ok {
		return
	}
	weeks := make([]weekView, len(ds.Weeks))
	for i, wk := range ds.Weeks {
		weeks[i] = weekView{Index: i, Label: wk.Label, Start: wk.Start, End: wk.End}
	}
	s.writeJSON(w, r, http.StatusOK, weeks)
}

// dashboard parses the request's filter state and builds the dashboard.
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) (processor.Dashboard, bool) {
	ds, ok := s.current(w, r)
	if !ok {
		return processor.Dashboard{}, false
	}
	state, err := ParseState(r.URL.Query(), ds, s.Catalog, s.Defaults)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return processor.Dashboard{}, false
	}
	return processor.BuildDashboard(ds, state, s.Catalog), true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, r, http.StatusOK, d)
}

type exportFormat struct {
	ext         string
	contentType string
	write       func(io.Writer, export.Report) error
}

var (
	formatCSV = exportFormat{
		ext:         "csv",
		contentType: "text/csv; charset=utf-8",
		write:       export.WriteCSV,
	}
	formatXLSX = exportFormat{
		ext:         "xlsx",
		contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		write:       export.WriteXLSX,
	}
)

func (s *Server) handleExport(f exportFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := s.dashboard(w, r)
		if !ok {
			return
		}
		now := s.now()
		var buf bytes.Buffer
		if err := f.write(&buf, export.FromDashboard(d, now)); err != nil {
			s.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("write %s export: %w", f.ext, err))
			return
		}
		filename := fmt.Sprintf("phone-dashboard-%s.%s", now.Format("20060102"), f.ext)
		w.Header().Set("Content-Type", f.contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			s.Log.WithRequest(r).WithError(err).Warn("export write interrupted")
		}
	}
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.Reloader == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errors.New("reload is not configured"))
		return
	}
	ds, err := s.Reloader.Reload(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, ds.Describe())
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.Log.WithRequest(r).WithError(err).Error("failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.writeJSON(w, r, status, errorResponse{Error: err.Error(), RequestID: logger.RequestID(r)})
}
