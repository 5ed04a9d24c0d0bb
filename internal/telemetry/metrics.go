package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTPRequestDuration tracks HTTP request latency.
var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "guildlog",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "path", "status"},
)

// EventsReceivedTotal counts events handed to the dispatcher, by kind.
var EventsReceivedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "guildlog",
		Subsystem: "dispatch",
		Name:      "events_received_total",
		Help:      "Lifecycle events received from the gateway.",
	},
	[]string{"kind"},
)

// EventOutcomesTotal counts terminal dispatch outcomes, by kind and status.
var EventOutcomesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "guildlog",
		Subsystem: "dispatch",
		Name:      "event_outcomes_total",
		Help:      "Terminal outcomes of event processing (delivered, suppressed, failed).",
	},
	[]string{"kind", "status"},
)

// DeliveryDuration tracks how long notification sends take.
var DeliveryDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "guildlog",
		Subsystem: "dispatch",
		Name:      "delivery_duration_seconds",
		Help:      "Notification delivery duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ConfigCacheHitsTotal counts guild config reads served from Redis.
var ConfigCacheHitsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "guildlog",
		Subsystem: "config",
		Name:      "cache_hits_total",
		Help:      "Guild config lookups served from the cache.",
	},
)

// ConfigCacheMissesTotal counts guild config reads that went to Postgres.
var ConfigCacheMissesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "guildlog",
		Subsystem: "config",
		Name:      "cache_misses_total",
		Help:      "Guild config lookups that fell through to the store.",
	},
)

// NewMetricsRegistry creates a Prometheus registry with default and custom collectors.
func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequestDuration,
		EventsReceivedTotal,
		EventOutcomesTotal,
		DeliveryDuration,
		ConfigCacheHitsTotal,
		ConfigCacheMissesTotal,
	)
	return reg
}
