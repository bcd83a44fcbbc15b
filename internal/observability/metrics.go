package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "resqwatch"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard service.
type Metrics struct {
	SimulatorTicks prometheus.Counter

	// Community reports.
	ReportsSubmitted         prometheus.Counter
	ReportValidationFailures prometheus.Counter
	ReportUpvotes            prometheus.Counter

	ChecklistToggles *prometheus.CounterVec // labels: phase
	HistoryRecorded  *prometheus.CounterVec // labels: type
	HistoryDeleted   prometheus.Counter
	PanelSelections  *prometheus.CounterVec // labels: panel

	// Map adapter.
	LocationUpdates   prometheus.Counter
	GeolocationErrors *prometheus.CounterVec // labels: code
	LayerToggles      *prometheus.CounterVec // labels: layer

	// Activity publishing.
	ActivityPublished       prometheus.Counter
	ActivityPublishErrors   prometheus.Counter
	ActivityDropped         prometheus.Counter
	ActivityBatchSize       prometheus.Histogram
	ActivityPublishDuration prometheus.Histogram
	PublisherRunning        prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={forward,reverse}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method={forward,reverse}, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={forward,reverse}

	RateLimited prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SimulatorTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulator_ticks_total",
			Help:      "Total metric perturbation ticks.",
		}),
		ReportsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "Community reports accepted.",
		}),
		ReportValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_validation_failures_total",
			Help:      "Report submissions rejected for missing or invalid fields.",
		}),
		ReportUpvotes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_upvotes_total",
			Help:      "Upvotes applied to existing reports.",
		}),
		ChecklistToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checklist_toggles_total",
			Help:      "Checklist item toggles by phase.",
		}, []string{"phase"}),
		HistoryRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_recorded_total",
			Help:      "History items recorded by type.",
		}, []string{"type"}),
		HistoryDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_deleted_total",
			Help:      "History items removed individually or by clear-all.",
		}),
		PanelSelections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panel_selections_total",
			Help:      "Dashboard panel switches by target panel.",
		}, []string{"panel"}),
		LocationUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_updates_total",
			Help:      "User location fixes delivered to the dashboard.",
		}),
		GeolocationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geolocation_errors_total",
			Help:      "Geolocation failures by error code.",
		}, []string{"code"}),
		LayerToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_layer_toggles_total",
			Help:      "Map overlay visibility toggles by layer.",
		}, []string{"layer"}),
		ActivityPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_published_total",
			Help:      "History activity events written to Kafka.",
		}),
		ActivityPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_publish_errors_total",
			Help:      "Failed activity batch writes.",
		}),
		ActivityDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_dropped_total",
			Help:      "Activity events dropped because the buffer was full.",
		}),
		ActivityBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "activity_batch_size",
			Help:      "Number of activity events per published batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		ActivityPublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "activity_publish_duration_seconds",
			Help:      "Duration of a single activity batch write.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		PublisherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "activity_publisher_running",
			Help:      "1 when the activity publisher is active, 0 when shut down.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "API requests rejected by the rate limiter.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SimulatorTicks,
		m.ReportsSubmitted,
		m.ReportValidationFailures,
		m.ReportUpvotes,
		m.ChecklistToggles,
		m.HistoryRecorded,
		m.HistoryDeleted,
		m.PanelSelections,
		m.LocationUpdates,
		m.GeolocationErrors,
		m.LayerToggles,
		m.ActivityPublished,
		m.ActivityPublishErrors,
		m.ActivityDropped,
		m.ActivityBatchSize,
		m.ActivityPublishDuration,
		m.PublisherRunning,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.RateLimited,
	}
}
