// Package httpapi exposes the record engine over HTTP. All data routes sit
// behind bearer token auth issued by the login endpoint.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"simonbin/internal/blob"
	"simonbin/internal/core"
	"simonbin/pkg/domain"
)

// Advisor produces coaching guidance text. Implementations never return
// errors; they degrade to notice strings.
type Advisor interface {
	RecordAdvice(ctx context.Context, rec domain.IndustryRecord) string
	FleetAdvice(ctx context.Context, records []domain.IndustryRecord) string
}

// Server wires the service layer into a chi router.
type Server struct {
	svc     *core.Service
	auth    *TokenAuth
	advisor Advisor    // nil disables advisory routes
	blobs   blob.Store // nil disables image serving
	logger  *slog.Logger
	metrics http.Handler // nil disables /metrics
}

// Option configures optional server collaborators.
type Option func(*Server)

// WithAdvisor enables the advisory endpoints.
func WithAdvisor(a Advisor) Option {
	return func(s *Server) { s.advisor = a }
}

// WithBlobStore enables serving visit images.
func WithBlobStore(store blob.Store) Option {
	return func(s *Server) { s.blobs = store }
}

// WithMetricsHandler mounts a metrics endpoint, typically promhttp.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// NewServer builds a Server over the service and authenticator.
func NewServer(svc *core.Service, auth *TokenAuth, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, auth: auth, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router assembles the route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Post("/api/login", s.handleLogin)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Middleware)
		r.Get("/api/industries", s.handleListRecords)
		r.Put("/api/industries", s.handleSaveRecord)
		r.Get("/api/industries/{id}", s.handleGetRecord)
		r.Delete("/api/industries/{id}", s.handleDeleteRecord)
		r.Post("/api/industries/cleanup", s.handleCleanup)
		r.Delete("/api/industries/{id}/coaching/{entryID}", s.handleDeleteCoachingEntry)
		r.Get("/api/coaching", s.handleHistory)
		r.Get("/api/coaching/export", s.handleExport)
		r.Get("/api/summary", s.handleSummary)
		r.Get("/api/images/*", s.handleImage)
		r.Post("/api/industries/{id}/advice", s.handleRecordAdvice)
		r.Post("/api/advice/fleet", s.handleFleetAdvice)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
