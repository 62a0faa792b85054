package providers

import (
	"infcheck/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveReconcileDuration(duration time.Duration)
	IncSyncPushes(result string)
	IncRosterReloads()
	ObservePersistenceDuration(duration time.Duration)
	SetRosterSize(count int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	reconcileDuration   prometheus.Histogram
	syncPushes          *prometheus.CounterVec
	rosterReloads       prometheus.Counter
	persistenceDuration prometheus.Histogram
	rosterSize          prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObserveReconcileDuration(duration time.Duration) {
	m.reconcileDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncSyncPushes(result string) {
	m.syncPushes.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) IncRosterReloads() {
	m.rosterReloads.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetRosterSize(count int) {
	m.rosterSize.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "infcheck_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "infcheck_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "infcheck_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "infcheck_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		reconcileDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "infcheck_reconcile_duration_seconds",
			Help:    "Duration of upload reconciliation in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		syncPushes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "infcheck_sync_pushes_total",
			Help: "Total number of working copy pushes by result",
		}, []string{"result"}),

		rosterReloads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "infcheck_roster_reloads_total",
			Help: "Total number of working copy reloads after a remote change",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "infcheck_persistence_duration_seconds",
			Help:    "Duration of snapshot persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		rosterSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "infcheck_roster_rows",
			Help: "Number of roster rows at last load",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObserveReconcileDuration(_ time.Duration)         {}
func (n *noopMetrics) IncSyncPushes(_ string)                           {}
func (n *noopMetrics) IncRosterReloads()                                {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) SetRosterSize(_ int)                              {}
