package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/orbitshield/orbitshield/internal/auth"
	"github.com/orbitshield/orbitshield/internal/catalog"
	"github.com/orbitshield/orbitshield/internal/conjunction"
	"github.com/orbitshield/orbitshield/internal/health"
	"github.com/orbitshield/orbitshield/internal/metrics"
	"github.com/orbitshield/orbitshield/internal/stream"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	store      *catalog.Store
	engine     *conjunction.Engine
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server over the catalog, the risk
// engine, and the SSE stream handler.
func NewServer(addr string, store *catalog.Store, engine *conjunction.Engine, streams *stream.Handler, probes *health.State, logger *slog.Logger, authCfg auth.Config) *Server {
	s := &Server{
		store:  store,
		engine: engine,
		logger: logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", probes.Healthz)
	mux.HandleFunc("GET /readyz", probes.Readyz)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/v1/satellites", s.handleCreateSatellite)
	mux.HandleFunc("GET /api/v1/satellites", s.handleListSatellites)
	mux.HandleFunc("GET /api/v1/satellites/{id}", s.handleGetSatellite)
	mux.HandleFunc("PATCH /api/v1/satellites/{id}", s.handleUpdateSatellite)
	mux.HandleFunc("DELETE /api/v1/satellites/{id}", s.handleDeleteSatellite)
	mux.HandleFunc("GET /api/v1/satellites/{id}/position", s.handleSatellitePosition)
	mux.HandleFunc("GET /api/v1/satellites/{id}/trajectory", s.handleSatelliteTrajectory)

	mux.HandleFunc("POST /api/v1/debris", s.handleCreateDebris)
	mux.HandleFunc("GET /api/v1/debris", s.handleListDebris)
	mux.HandleFunc("GET /api/v1/debris/{id}", s.handleGetDebris)
	mux.HandleFunc("PATCH /api/v1/debris/{id}", s.handleUpdateDebris)
	mux.HandleFunc("DELETE /api/v1/debris/{id}", s.handleDeleteDebris)

	mux.HandleFunc("GET /api/v1/collision-events", s.handleListCollisionEvents)
	mux.HandleFunc("GET /api/v1/collision-events/{id}", s.handleGetCollisionEvent)

	mux.HandleFunc("GET /api/v1/alerts", s.handleListAlerts)
	mux.HandleFunc("POST /api/v1/alerts", s.handleCreateAlert)
	mux.HandleFunc("POST /api/v1/alerts/{id}/acknowledge", s.handleAcknowledgeAlert)

	mux.HandleFunc("GET /api/v1/maneuvers", s.handleListManeuvers)
	mux.HandleFunc("POST /api/v1/maneuvers/plan", s.handlePlanManeuver)

	mux.HandleFunc("GET /api/v1/analysis/{satellite_id}", s.handleAnalysis)
	mux.HandleFunc("GET /api/v1/risks", s.handleRisks)

	if streams != nil {
		mux.HandleFunc("GET /api/v1/stream/risks", streams.HandleRisks)
	}

	// Build middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(authCfg)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer so http.ResponseController can reach
// per-connection controls through the middleware chain.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// Flush passes through to the wrapped writer so SSE streaming survives the
// logging middleware.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", r.RemoteAddr,
			)
		})
	}
}
