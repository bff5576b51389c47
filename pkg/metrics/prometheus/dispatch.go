// Package prometheus provides the Prometheus-backed implementations of the
// Metrics interfaces internal/dispatch and internal/server declare,
// registered with pkg/metrics at init time so callers only ever depend on
// pkg/metrics.
package prometheus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hgfsd/hgfsd/internal/dispatch"
	"github.com/hgfsd/hgfsd/internal/server"
	"github.com/hgfsd/hgfsd/internal/wire"
	"github.com/hgfsd/hgfsd/pkg/metrics"
)

func init() {
	metrics.RegisterDispatchMetricsConstructor(func() dispatch.Metrics { return singleton() })
	metrics.RegisterServerMetricsConstructor(func() server.Metrics { return singleton() })
}

// collector is the single Prometheus-backed type satisfying both
// dispatch.Metrics and server.Metrics, so a server that wires both never
// registers the same collector set twice.
type collector struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	cacheHits  prometheus.Counter
	cacheMiss  prometheus.Counter
	evictions  prometheus.Counter

	activeSessions prometheus.Gauge

	mu          sync.Mutex
	occupancy   map[uint64][2]int // sessionID -> [cached, total]
	cachedNodes prometheus.Gauge
	totalNodes  prometheus.Gauge
}

var (
	once sync.Once
	inst *collector
)

func singleton() *collector {
	once.Do(func() {
		reg := metrics.GetRegistry()
		inst = &collector{
			operations: promauto.With(reg).NewCounterVec(
				prometheus.CounterOpts{
					Name: "hgfsd_dispatch_operations_total",
					Help: "Total number of dispatched operations by operation and status.",
				},
				[]string{"operation", "status"},
			),
			duration: promauto.With(reg).NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "hgfsd_dispatch_duration_seconds",
					Help:    "Dispatch latency by operation.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"operation"},
			),
			cacheHits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
				Name: "hgfsd_handle_cache_hits_total",
				Help: "FileNode lookups that found an already-open descriptor.",
			}),
			cacheMiss: promauto.With(reg).NewCounter(prometheus.CounterOpts{
				Name: "hgfsd_handle_cache_misses_total",
				Help: "FileNode lookups that required a transparent re-open.",
			}),
			evictions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
				Name: "hgfsd_handle_cache_evictions_total",
				Help: "Cached FileNodes closed to stay within MaxCachedOpenNodes.",
			}),
			activeSessions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
				Name: "hgfsd_active_sessions",
				Help: "Currently open sessions.",
			}),
			occupancy: make(map[uint64][2]int),
			cachedNodes: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
				Name: "hgfsd_handle_table_cached_nodes",
				Help: "Sum across sessions of FileNodes currently holding an open descriptor.",
			}),
			totalNodes: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
				Name: "hgfsd_handle_table_nodes",
				Help: "Sum across sessions of allocated FileNode slots.",
			}),
		}
	})
	return inst
}

// RecordOperation implements dispatch.Metrics.
func (c *collector) RecordOperation(op wire.Operation, status wire.Status, duration time.Duration) {
	c.operations.WithLabelValues(op.String(), status.String()).Inc()
	c.duration.WithLabelValues(op.String()).Observe(duration.Seconds())
}

// RecordCacheHit implements dispatch.Metrics.
func (c *collector) RecordCacheHit() { c.cacheHits.Inc() }

// RecordCacheMiss implements dispatch.Metrics.
func (c *collector) RecordCacheMiss() { c.cacheMiss.Inc() }

// RecordEviction implements dispatch.Metrics.
func (c *collector) RecordEviction() { c.evictions.Inc() }

// SetActiveSessions implements server.Metrics.
func (c *collector) SetActiveSessions(n int) { c.activeSessions.Set(float64(n)) }

// SetHandleOccupancy implements server.Metrics. Per-session counts are kept
// out of metric labels (unbounded cardinality as sessions churn) and
// instead summed into two process-wide gauges.
func (c *collector) SetHandleOccupancy(sessionID uint64, cached, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.occupancy[sessionID] = [2]int{cached, total}

	var sumCached, sumTotal int
	for _, v := range c.occupancy {
		sumCached += v[0]
		sumTotal += v[1]
	}
	c.cachedNodes.Set(float64(sumCached))
	c.totalNodes.Set(float64(sumTotal))
}

// ClearSession implements server.Metrics.
func (c *collector) ClearSession(sessionID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.occupancy, sessionID)

	var sumCached, sumTotal int
	for _, v := range c.occupancy {
		sumCached += v[0]
		sumTotal += v[1]
	}
	c.cachedNodes.Set(float64(sumCached))
	c.totalNodes.Set(float64(sumTotal))
}
