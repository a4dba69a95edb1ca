// Package observability holds the Prometheus collectors shared by the service.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	upstreamLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"upstream", "result"},
	)

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)

	urlResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_url_resolutions_total",
			Help: "Image URL resolutions by outcome (transformed, passthrough, placeholder).",
		},
		[]string{"outcome"},
	)

	cacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_cache_results_total",
			Help: "Image URL cache lookups by tier and outcome.",
		},
		[]string{"tier", "outcome"},
	)

	cacheEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "image_cache_evictions_total",
			Help: "Entries evicted from the in-memory image URL cache.",
		},
	)

	cacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_cache_entries",
			Help: "Current number of entries in the in-memory image URL cache.",
		},
	)

	cacheOpTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_op_total",
			Help: "Shared cache operations by op and result.",
		},
		[]string{"op", "result"},
	)

	redisOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Latency of redis operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0002, 2, 14),
		},
		[]string{"op"},
	)

	imageLoadErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_load_errors_total",
			Help: "Client-reported image load failures.",
		},
		[]string{"preset"},
	)

	imageLoadSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_load_seconds",
			Help:    "Client-reported image load times in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.025, 2, 10),
		},
		[]string{"preset"},
	)

	telemetryBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telemetry_batches_total",
			Help: "Telemetry error batches handed to a reporter.",
		},
		[]string{"reporter", "result"},
	)

	invalidationEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invalidation_events_total",
			Help: "Image cache invalidation events by op and result.",
		},
		[]string{"op", "result"},
	)

	invalidationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "invalidation_apply_seconds",
			Help:    "Time to apply an invalidation event.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)
)

func init() {
	prometheus.MustRegister(Collectors()...)
}

// Collectors returns every collector in this package, for registering on a
// dedicated registry.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDurationSeconds,
		upstreamLatencySeconds,
		buildInfo,
		urlResolutions,
		cacheResults,
		cacheEvictions,
		cacheEntries,
		cacheOpTotal,
		redisOpDuration,
		imageLoadErrors,
		imageLoadSeconds,
		telemetryBatches,
		invalidationEvents,
		invalidationDuration,
	}
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveUpstream(upstream string, err error, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream, result(err)).Observe(durationSeconds)
}

func IncResolution(outcome string) {
	urlResolutions.WithLabelValues(outcome).Inc()
}

func IncCacheHit(tier string)  { cacheResults.WithLabelValues(tier, "hit").Inc() }
func IncCacheMiss(tier string) { cacheResults.WithLabelValues(tier, "miss").Inc() }

func IncCacheEviction() { cacheEvictions.Inc() }

func SetCacheEntries(n int) { cacheEntries.Set(float64(n)) }

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	cacheOpTotal.WithLabelValues(op, result(err)).Inc()
	redisOpDuration.WithLabelValues(op).Observe(durationSeconds)
}

func ObserveImageError(preset string) {
	imageLoadErrors.WithLabelValues(orUnknown(preset)).Inc()
}

func ObserveImageLoad(preset string, seconds float64) {
	imageLoadSeconds.WithLabelValues(orUnknown(preset)).Observe(seconds)
}

func IncTelemetryBatch(reporter string, err error) {
	telemetryBatches.WithLabelValues(reporter, result(err)).Inc()
}

func ObserveInvalidation(op string, err error, durationSeconds float64) {
	invalidationEvents.WithLabelValues(orUnknown(op), result(err)).Inc()
	if err == nil {
		invalidationDuration.Observe(durationSeconds)
	}
}

func IncInvalidationSkipped(reason string) {
	invalidationEvents.WithLabelValues("skipped", reason).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
