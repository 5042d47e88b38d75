// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vantagelabs/vantage/internal/api/job"
	"github.com/vantagelabs/vantage/internal/api/middleware"
	"github.com/vantagelabs/vantage/internal/api/response"
	"github.com/vantagelabs/vantage/internal/core"
	"github.com/vantagelabs/vantage/internal/metrics"
	"github.com/vantagelabs/vantage/internal/report"
	"github.com/vantagelabs/vantage/internal/storage/archive"
)

// Runner is the pipeline surface the server drives.
type Runner interface {
	RunOnce(ctx context.Context) (*report.Report, error)
	LastReport() *report.Report
	Running() bool
}

// Server exposes the pipeline over HTTP: health, manual run triggers,
// report retrieval and Prometheus metrics.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	runner     Runner
	reports    *archive.Reports
	jobs       *job.Store
	handler    http.Handler
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, runner Runner, reports *archive.Reports, reg *metrics.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		logger:  logger,
		runner:  runner,
		reports: reports,
		jobs:    job.NewStore(64),
	}

	mux := http.NewServeMux()
	auth := middleware.APIKeyAuth(cfg.APIKey)

	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/report/latest", s.handleLatestReport)
	mux.Handle("POST /api/v1/run", auth(http.HandlerFunc(s.handleRun)))
	mux.Handle("GET /api/v1/jobs/{id}", auth(http.HandlerFunc(s.handleJob)))

	var handler http.Handler = mux
	if reg != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		handler = metrics.HTTPMiddleware(reg)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"status":  "ok",
		"running": s.runner.Running(),
	}
	if rep := s.runner.LastReport(); rep != nil {
		data["last_run_id"] = rep.ID
		data["last_run_date"] = rep.Date.Format("2006-01-02")
	}
	response.JSON(w, http.StatusOK, data)
}

// handleRun triggers a pipeline run in the background and returns the job.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	j := s.jobs.Create("pipeline_run")
	s.jobs.Update(j.ID, func(j *job.Job) { j.Status = job.StatusRunning })

	// The run outlives the request on purpose.
	go func() {
		rep, err := s.runner.RunOnce(context.Background())
		s.jobs.Update(j.ID, func(j *job.Job) {
			if err != nil {
				j.Status = job.StatusFailed
				j.Error = &core.Error{Code: "RUN_FAILED", Message: err.Error()}
				return
			}
			j.Status = job.StatusComplete
			j.Result = map[string]any{
				"run_id":   rep.ID,
				"tickers":  len(rep.Tickers),
				"failures": rep.Failures(),
			}
		})
	}()

	j2, _ := s.jobs.Get(j.ID)
	response.JSON(w, http.StatusAccepted, j2)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.jobs.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, j)
}

// handleLatestReport serves the most recent report as HTML, falling back to
// the archive when the process has not completed a run yet.
func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	if rep := s.runner.LastReport(); rep != nil {
		html, err := rep.RenderHTML()
		if err != nil {
			response.Error(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
		return
	}

	if s.reports != nil {
		data, _, err := s.reports.Latest(r.Context())
		if err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(data)
			return
		}
	}

	response.Error(w, http.StatusNotFound,
		core.WrapError(core.ErrNoData, fmt.Errorf("no report generated yet")))
}
