package metrics

import "github.com/hgfsd/hgfsd/internal/dispatch"

// NewDispatchMetrics creates a Prometheus-backed dispatch.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// callers pass straight to dispatch.Dispatcher.SetMetrics for zero
// overhead.
func NewDispatchMetrics() dispatch.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusDispatchMetrics()
}

// newPrometheusDispatchMetrics is supplied by pkg/metrics/prometheus's
// init(), via RegisterDispatchMetricsConstructor. The indirection keeps
// this package from importing prometheus-specific code directly, avoiding
// an import cycle (prometheus's package already imports this one for
// IsEnabled/GetRegistry).
var newPrometheusDispatchMetrics func() dispatch.Metrics

// RegisterDispatchMetricsConstructor is called by
// pkg/metrics/prometheus/dispatch.go's init() to install the concrete
// constructor.
func RegisterDispatchMetricsConstructor(constructor func() dispatch.Metrics) {
	newPrometheusDispatchMetrics = constructor
}
