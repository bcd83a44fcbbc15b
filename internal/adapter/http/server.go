// Package http serves the dashboard API, plus health, readiness and
// Prometheus endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/config"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/mapview"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Server exposes the dashboard API and the operational endpoints.
type Server struct {
	httpServer *http.Server
	shell      *dashboard.Shell
	geo        *mapview.ClientGeolocator
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server. The shell doubles as the readiness check.
func NewServer(cfg *config.Config, shell *dashboard.Shell, geo *mapview.ClientGeolocator, logger *slog.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		shell:   shell,
		geo:     geo,
		logger:  logger,
		metrics: metrics,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(shell))
	r.Handle("/metrics", promhttp.Handler())

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimitMiddleware(limiter, metrics))
		s.routes(r)
	})

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes(r chi.Router) {
	r.Get("/metrics", s.handleMetrics)

	r.Get("/reports", s.handleListReports)
	r.Post("/reports", s.handleSubmitReport)
	r.Post("/reports/{id}/upvote", s.handleUpvote)

	r.Get("/checklist", s.handleChecklist)
	r.Get("/checklist/export", s.handleChecklistExport)
	r.Post("/checklist/{phase}/{id}/toggle", s.handleToggleItem)
	r.Get("/advisory", s.handleAdvisory)

	r.Get("/history", s.handleHistory)
	r.Delete("/history", s.handleClearHistory)
	r.Get("/history/export", s.handleHistoryExport)
	r.Delete("/history/{id}", s.handleDeleteHistory)

	r.Get("/safety", s.handleSafety)
	r.Get("/safety/{id}/directions", s.handleDirections)

	r.Get("/search", s.handleSearch)

	r.Get("/map/layers", s.handleLayers)
	r.Post("/map/layers/{name}/toggle", s.handleToggleLayer)
	r.Get("/map/zones", s.handleZones)
	r.Get("/map/status", s.handleMapStatus)
	r.Put("/map/sdk-status", s.handleSDKStatus)

	r.Get("/location", s.handleLocation)
	r.Post("/location", s.handlePushLocation)
	r.Post("/location/error", s.handlePushLocationError)

	r.Get("/panel", s.handlePanel)
	r.Put("/panel", s.handleSelectPanel)

	r.Get("/settings/api-key", s.handleGetAPIKey)
	r.Put("/settings/api-key", s.handleSetAPIKey)
	r.Delete("/settings/api-key", s.handleClearAPIKey)
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
