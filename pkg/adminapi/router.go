package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hgfsd/hgfsd/internal/hostfs"
	"github.com/hgfsd/hgfsd/internal/logger"
	"github.com/hgfsd/hgfsd/internal/session"
	"github.com/hgfsd/hgfsd/internal/shareregistry"
	"github.com/hgfsd/hgfsd/pkg/adminapi/handlers"
)

// NewRouter builds the admin HTTP API's chi router. Unlike a guest-facing
// protocol surface, this API has no authenticated users of its own — it is
// a local, read-only view into the running server's state — so there is no
// auth middleware here, only request logging, panic recovery, and a
// timeout.
//
// Routes:
//   - GET /health        - liveness probe
//   - GET /health/ready   - readiness probe
//   - GET /shares         - configured share list
//   - GET /sessions       - live session list with handle-table occupancy
//   - GET /metrics        - Prometheus exposition, if metrics are enabled
func NewRouter(shares *shareregistry.Registry, fs hostfs.FS, sessions *session.Manager, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(shares)
	shareHandler := handlers.NewShareHandler(shares, fs)
	sessionHandler := handlers.NewSessionHandler(sessions)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})
	r.Get("/shares", shareHandler.List)
	r.Get("/sessions", sessionHandler.List)

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// requestLogger logs every request via the internal logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("admin API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("admin API request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
