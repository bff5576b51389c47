// Package metrics owns the process-wide Prometheus registry and the
// metrics-sink constructors handed to the internal packages that expose an
// optional Metrics interface. The concrete Prometheus types live in
// pkg/metrics/prometheus to keep that dependency out of this package's own
// import graph; constructors register themselves here via an init-time
// indirection so callers only ever import pkg/metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu       sync.Mutex
	enabled  bool
	registry *prometheus.Registry
)

// InitRegistry enables metrics collection and creates the process-wide
// registry. Call once during startup, before any NewXMetrics constructor.
// Calling it again replaces the registry (used by tests that want a clean
// one per case).
func InitRegistry() {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
	registry = prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
}

// IsEnabled reports whether InitRegistry has been called. Constructors use
// this to return nil (zero overhead) instead of a live collector.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// GetRegistry returns the process-wide registry. Must not be called before
// InitRegistry.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	return registry
}

// Handler returns the HTTP handler that serves the registry in the
// Prometheus exposition format, or nil if metrics are disabled.
func Handler() http.Handler {
	if !IsEnabled() {
		return nil
	}
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
