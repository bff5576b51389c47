package metrics

import "github.com/hgfsd/hgfsd/internal/server"

// NewServerMetrics creates a Prometheus-backed server.Metrics instance.
//
// Returns nil if metrics are not enabled. When both dispatch and server
// metrics are requested while enabled, they share the same underlying
// Prometheus collector set (see pkg/metrics/prometheus), so calling both
// constructors never registers a metric twice.
func NewServerMetrics() server.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusServerMetrics()
}

var newPrometheusServerMetrics func() server.Metrics

// RegisterServerMetricsConstructor is called by
// pkg/metrics/prometheus/dispatch.go's init() to install the concrete
// constructor.
func RegisterServerMetricsConstructor(constructor func() server.Metrics) {
	newPrometheusServerMetrics = constructor
}
