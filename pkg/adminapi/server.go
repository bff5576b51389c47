// Package api implements the small read-only admin HTTP server operators
// use to inspect a running hgfsd process (share list, session list, health,
// metrics) — distinct from the HGFS wire protocol server itself.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hgfsd/hgfsd/internal/hostfs"
	"github.com/hgfsd/hgfsd/internal/logger"
	"github.com/hgfsd/hgfsd/internal/session"
	"github.com/hgfsd/hgfsd/internal/shareregistry"
)

// Server is the admin HTTP server. It supports graceful shutdown with a
// configurable timeout.
type Server struct {
	server       *http.Server
	config       APIConfig
	shutdownOnce sync.Once
}

// NewServer creates a new admin API HTTP server in a stopped state. Call
// Start to begin serving requests. metricsHandler may be nil (metrics
// disabled), in which case /metrics is simply not registered.
func NewServer(config APIConfig, shares *shareregistry.Registry, fs hostfs.FS, sessions *session.Manager, metricsHandler http.Handler) *Server {
	config.applyDefaults()

	router := NewRouter(shares, fs, sessions, metricsHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{server: srv, config: config}
}

// Start serves the admin API until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("admin API listening", "port", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("admin API shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("admin API failed: %w", err)
	}
}

// Stop gracefully shuts down the admin API. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("admin API shutdown error: %w", err)
			logger.Error("admin API shutdown error", "error", err)
		} else {
			logger.Info("admin API stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server is bound to.
func (s *Server) Port() int {
	return s.config.Port
}
