package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/eduflow-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	storeDuration   *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	exportJobs      *prometheus.CounterVec
	paymentEvents   *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	storeOpCount         uint64
	storeErrCount        uint64
	storeDurationTotal   uint64
	exportFinishedCount  uint64
	exportFailedCount    uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kv_store_operation_duration_seconds",
		Help:    "Duration of key-value store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "key"})

	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kv_store_errors_total",
		Help: "Failed key-value store operations",
	}, []string{"op", "key"})

	exportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_export_jobs_total",
		Help: "Report export jobs by terminal status",
	}, []string{"format", "status"})

	paymentEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_events_total",
		Help: "Payment events by type and publish result",
	}, []string{"type", "result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		storeDuration, storeErrors, exportJobs, paymentEvents, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		storeDuration:   storeDuration,
		storeErrors:     storeErrors,
		exportJobs:      exportJobs,
		paymentEvents:   paymentEvents,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveStoreOperation implements kvstore.Observer.
func (m *MetricsService) ObserveStoreOperation(op, key string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(op, key).Observe(duration.Seconds())
	atomic.AddUint64(&m.storeOpCount, 1)
	atomic.AddUint64(&m.storeDurationTotal, uint64(duration.Nanoseconds()))
	if err != nil {
		m.storeErrors.WithLabelValues(op, key).Inc()
		atomic.AddUint64(&m.storeErrCount, 1)
	}
}

// RecordExportJob counts an export job status change. Finished and failed
// jobs also feed the summary counters.
func (m *MetricsService) RecordExportJob(format models.ExportFormat, status models.ExportStatus) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(string(format), string(status)).Inc()
	switch status {
	case models.ExportStatusFinished:
		atomic.AddUint64(&m.exportFinishedCount, 1)
	case models.ExportStatusFailed:
		atomic.AddUint64(&m.exportFailedCount, 1)
	}
}

// RecordPaymentEvent counts a payment event publish attempt.
func (m *MetricsService) RecordPaymentEvent(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.paymentEvents.WithLabelValues(eventType, result).Inc()
}

// Snapshot returns aggregated metrics suitable for the metrics summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	storeOps := atomic.LoadUint64(&m.storeOpCount)
	storeDuration := atomic.LoadUint64(&m.storeDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgStoreMs float64
	if storeOps > 0 {
		avgStoreMs = float64(storeDuration) / float64(storeOps) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		StoreOperations:          storeOps,
		StoreErrors:              atomic.LoadUint64(&m.storeErrCount),
		AverageStoreOperationMs:  avgStoreMs,
		ExportJobsFinished:       atomic.LoadUint64(&m.exportFinishedCount),
		ExportJobsFailed:         atomic.LoadUint64(&m.exportFailedCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
