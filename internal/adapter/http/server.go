package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/ocean-series-service/internal/dashboard"
	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"github.com/couchcryptid/ocean-series-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dashboard is the query service behind the API.
type Dashboard interface {
	Build(ctx context.Context, q dashboard.Query) (dashboard.View, error)
	DefaultQuery() dashboard.Query
	Regions() []domain.Region
	Derivations() []domain.Derivation
	Invalidate()
	CheckReadiness(ctx context.Context) error
}

// Server exposes the series API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        Dashboard
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server with the API, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, svc Dashboard, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:     svc,
		logger:  logger,
		metrics: metrics,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.handle(mux, "GET /api/series", "series", s.handleSeries)
	s.handle(mux, "GET /api/series.csv", "series_csv", s.handleCSV)
	s.handle(mux, "GET /api/series.xlsx", "series_xlsx", s.handleXLSX)
	s.handle(mux, "GET /api/chart.png", "chart_png", s.handlePNG)
	s.handle(mux, "GET /dashboard", "dashboard", s.handleDashboard)
	s.handle(mux, "GET /api/regions", "regions", s.handleRegions)
	s.handle(mux, "POST /api/cache/invalidate", "invalidate", s.handleInvalidate)

	return s
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

// handle registers h under pattern, counting requests by status code and
// timing them under the route label.
func (s *Server) handle(mux *http.ServeMux, pattern, route string, h http.HandlerFunc) {
	labels := prometheus.Labels{"route": route}
	mux.Handle(pattern, promhttp.InstrumentHandlerDuration(
		s.metrics.HTTPDuration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(s.metrics.HTTPRequests.MustCurryWith(labels), h),
	))
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Regions())
}

func (s *Server) handleInvalidate(w http.ResponseWriter, _ *http.Request) {
	s.svc.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
