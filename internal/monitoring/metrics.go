// internal/monitoring/metrics.go
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager manages Prometheus metrics for ClipSense
type MetricsManager struct {
	registry *prometheus.Registry

	// Detection metrics
	detectionsTotal   *prometheus.CounterVec
	detectionDuration *prometheus.HistogramVec
	detectionErrors   *prometheus.CounterVec
	batchSize         prometheus.Histogram

	// Cache metrics
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheSize   prometheus.Gauge

	// Extraction metrics
	extractionStepDuration *prometheus.HistogramVec
	extractionStepFailures *prometheus.CounterVec

	// Strategy metrics
	strategiesDecided *prometheus.CounterVec
}

// MetricsConfig configuration for metrics
type MetricsConfig struct {
	Namespace       string `yaml:"namespace" json:"namespace"`
	EnableGoMetrics bool   `yaml:"enable_go_metrics" json:"enable_go_metrics"`
}

// NewMetricsManager creates a metrics manager with its own registry so
// multiple instances never collide.
func NewMetricsManager(config MetricsConfig) *MetricsManager {
	if config.Namespace == "" {
		config.Namespace = "clipsense"
	}

	registry := prometheus.NewRegistry()
	if config.EnableGoMetrics {
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	factory := promauto.With(registry)
	mm := &MetricsManager{registry: registry}

	mm.detectionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "detections_total",
			Help:      "Total number of URL detections",
		},
		[]string{"platform", "content_type"},
	)

	mm.detectionDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "detection_duration_seconds",
			Help:      "Detection duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"platform"},
	)

	mm.detectionErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "detection_errors_total",
			Help:      "Total number of detections that degraded with an error",
		},
		[]string{"category"},
	)

	mm.batchSize = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "batch_size",
			Help:      "Number of URLs per batch detection call",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)

	mm.cacheHits = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of detection cache hits",
		},
	)

	mm.cacheMisses = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of detection cache misses",
		},
	)

	mm.cacheSize = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "cache_entries",
			Help:      "Current number of cached detection results",
		},
	)

	mm.extractionStepDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "extraction_step_duration_seconds",
			Help:      "Metadata extraction step duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"step", "outcome"},
	)

	mm.extractionStepFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "extraction_step_failures_total",
			Help:      "Total number of failed metadata extraction steps",
		},
		[]string{"step"},
	)

	mm.strategiesDecided = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "strategies_decided_total",
			Help:      "Total number of processing strategy decisions",
		},
		[]string{"strategy"},
	)

	return mm
}

// RecordDetection records one completed detection.
func (mm *MetricsManager) RecordDetection(platform, contentType string, duration time.Duration) {
	mm.detectionsTotal.WithLabelValues(platform, contentType).Inc()
	mm.detectionDuration.WithLabelValues(platform).Observe(duration.Seconds())
}

// RecordDetectionError records a detection that degraded with an error.
func (mm *MetricsManager) RecordDetectionError(category string) {
	mm.detectionErrors.WithLabelValues(category).Inc()
}

// RecordBatch records the size of a batch detection call.
func (mm *MetricsManager) RecordBatch(size int) {
	mm.batchSize.Observe(float64(size))
}

// RecordCacheHit increments the cache hit counter.
func (mm *MetricsManager) RecordCacheHit() {
	mm.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func (mm *MetricsManager) RecordCacheMiss() {
	mm.cacheMisses.Inc()
}

// UpdateCacheSize sets the current cache entry count.
func (mm *MetricsManager) UpdateCacheSize(entries int) {
	mm.cacheSize.Set(float64(entries))
}

// RecordExtractionStep records the duration and outcome of one step.
func (mm *MetricsManager) RecordExtractionStep(step string, duration time.Duration, succeeded bool) {
	outcome := "success"
	if !succeeded {
		outcome = "failure"
		mm.extractionStepFailures.WithLabelValues(step).Inc()
	}
	mm.extractionStepDuration.WithLabelValues(step, outcome).Observe(duration.Seconds())
}

// RecordStrategy records one strategy decision.
func (mm *MetricsManager) RecordStrategy(strategy string) {
	mm.strategiesDecided.WithLabelValues(strategy).Inc()
}

// MetricsHandler returns an HTTP handler for the metrics endpoint.
func (mm *MetricsManager) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(mm.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (mm *MetricsManager) Registry() *prometheus.Registry {
	return mm.registry
}
