package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/feedbackdash/internal/chart"
	"github.com/dgallion1/feedbackdash/internal/dashboard"
	"github.com/dgallion1/feedbackdash/internal/survey"
)

// parseRequest reads year, month and question from the query string.
func parseRequest(r *http.Request) (dashboard.Request, error) {
	q := r.URL.Query()
	var req dashboard.Request
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1 {
			return req, fmt.Errorf("%w: year %q", survey.ErrInvalidPeriod, v)
		}
		req.Year = year
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		month, err := survey.ParseMonth(v)
		if err != nil {
			return req, err
		}
		req.Month = month
	}
	req.Question = q.Get("question")
	return req, nil
}

// writeError maps service errors to status codes. Input problems echo their
// message; anything else is logged and answered generically.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, survey.ErrInvalidPeriod), errors.Is(err, survey.ErrUnknownQuestion):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, survey.ErrNoData), errors.Is(err, chart.ErrEmpty):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, context.Canceled):
		// Client went away; nothing to answer.
	default:
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
		jsonError(w, "erro ao processar os dados", http.StatusInternalServerError)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.svc.Page(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := s.svc.Periods(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, periods)
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := s.svc.Questions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"questions": qs})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum, err := s.svc.Summary(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, sum)
}

type renderFunc func(context.Context, dashboard.Request) (*dashboard.File, error)

// handleDownload serves a rendered file as an attachment.
func (s *Server) handleDownload(format string, render renderFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseRequest(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		f, err := render(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.metrics.ReportRendered(format)

		w.Header().Set("Content-Type", f.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
		w.Write(f.Data)
	}
}

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"window": time.Hour.String(),
		"stats":  s.svc.Stats().Snapshot(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]bool{"invalidated": s.svc.Refresh()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
