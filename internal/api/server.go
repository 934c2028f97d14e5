// Package api exposes the HTTP interface for the enrichment service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leadforge/contact-enricher/internal/config"
	"github.com/leadforge/contact-enricher/internal/enrich"
	"github.com/leadforge/contact-enricher/internal/metrics"
	"github.com/leadforge/contact-enricher/internal/store"
)

// Runner executes one enrichment batch. The pipeline satisfies this.
type Runner interface {
	Run(ctx context.Context, domains []string) ([]enrich.Record, error)
}

// Server wires HTTP handlers to the pipeline and the run store.
type Server struct {
	router chi.Router
	runs   store.RunStore
	runner Runner
	idGen  enrich.IDGenerator
	clock  enrich.Clock
	cfg    config.Config
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	runs store.RunStore,
	runner Runner,
	idGen enrich.IDGenerator,
	clock enrich.Clock,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		runs:   runs,
		runner: runner,
		idGen:  idGen,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))
	if cfg.Auth.Enabled {
		r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/runs", func(r chi.Router) {
			r.Post("/", s.submitRun)
			r.Route("/{run_id}", func(r chi.Router) {
				r.Get("/", s.getRun)
				r.Get("/records", s.getRunRecords)
			})
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type runRequest struct {
	Domains []string `json:"domains"`
}

func (s *Server) submitRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Domains) == 0 {
		writeError(w, http.StatusBadRequest, "domains required")
		return
	}

	runID, err := s.idGen.NewID()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("generate run id: %v", err))
		return
	}
	run := store.Run{
		ID:        runID,
		StartedAt: s.clock.Now(),
		Status:    store.RunRunning,
	}
	if err := s.runs.CreateRun(r.Context(), run); err != nil {
		writeError(w, http.StatusInternalServerError, "create run failed")
		return
	}

	// The batch outlives the request; detach it from the request context.
	go s.executeRun(context.Background(), runID, req.Domains)

	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
}

func (s *Server) executeRun(ctx context.Context, runID string, domains []string) {
	records, runErr := s.runner.Run(ctx, domains)
	observeRecords(records)

	if err := s.runs.SaveRecords(ctx, runID, records); err != nil {
		s.logger.Error("save records failed", zap.String("run_id", runID), zap.Error(err))
	}

	status := store.RunSuccess
	var msg *string
	if runErr != nil {
		status = store.RunError
		text := runErr.Error()
		msg = &text
	}
	summary := enrich.Summarize(records)
	if err := s.runs.FinishRun(ctx, runID, s.clock.Now(), status, summary, msg); err != nil {
		s.logger.Error("finish run failed", zap.String("run_id", runID), zap.Error(err))
		return
	}
	s.logger.Info("run finished",
		zap.String("run_id", runID),
		zap.String("status", string(status)),
		zap.Int("total", summary.Total),
		zap.Int("active", summary.Active),
		zap.Int("error_rows", summary.ErrorRows),
	)
}

func observeRecords(records []enrich.Record) {
	for _, rec := range records {
		metrics.ObserveDomain(string(rec.Class))
		metrics.ObserveLiveness(string(rec.Status))
		if rec.Contacts.Err {
			metrics.ObserveErrorRow()
			continue
		}
		metrics.ObserveContacts("email", len(rec.Contacts.Emails))
		metrics.ObserveContacts("phone", len(rec.Contacts.Phones))
	}
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "run_id")
	run, err := s.runs.GetRun(r.Context(), runID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load run failed")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) getRunRecords(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "run_id")
	records, err := s.runs.ListRecords(r.Context(), runID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load records failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run_id": runID, "records": records})
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			metrics.ObserveHTTPRequest(r.Method, route, ww.status, elapsed)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", elapsed.Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeError(w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
