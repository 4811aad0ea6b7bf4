package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/feedbackdash/internal/config"
	"github.com/dgallion1/feedbackdash/internal/dashboard"
)

// Server is the HTTP front end of the feedback dashboard.
type Server struct {
	router  chi.Router
	svc     *dashboard.Service
	metrics *Metrics
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(svc *dashboard.Service, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		svc:     svc,
		metrics: NewMetrics(),
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(s.metrics.Instrument)

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DashAPIKey, s.log))

		r.Get("/", s.handlePage)
		r.Get("/api/periods", s.handlePeriods)
		r.Get("/api/questions", s.handleQuestions)
		r.Get("/api/summary", s.handleSummary)

		r.Get("/api/report.pdf", s.handleDownload("pdf", s.svc.PDF))
		r.Get("/api/report.xlsx", s.handleDownload("xlsx", s.svc.XLSX))
		r.Get("/api/report.docx", s.handleDownload("docx", s.svc.DOCX))
		r.Get("/api/chart.png", s.handleDownload("png", s.svc.Chart))

		r.Get("/api/stats/render", s.handleRenderStats)
		r.Post("/api/refresh", s.handleRefresh)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
