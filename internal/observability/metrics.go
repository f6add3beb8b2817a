package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ocean_series"

// Metrics holds the Prometheus counters, histograms, and gauges for series generation and serving.
type Metrics struct {
	SeriesGenerated   *prometheus.CounterVec // labels: scenario
	GenerateDuration  prometheus.Histogram
	GenerateErrors    prometheus.Counter
	CacheLookups      *prometheus.CounterVec // labels: result={hit,miss,shared}
	CacheEntries      prometheus.Gauge
	SeaLevelFetches   *prometheus.CounterVec // labels: outcome={success,error,fallback}
	SeaLevelFetchTime prometheus.Histogram
	HTTPRequests      *prometheus.CounterVec // labels: route, code
	HTTPDuration      *prometheus.HistogramVec
	PointsPublished   prometheus.Counter
	ServiceReady      prometheus.Gauge
	SeaLevelObserved  prometheus.Gauge

	collectors []prometheus.Collector
}

func newMetrics() *Metrics {
	m := &Metrics{
		SeriesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generate_total",
			Help:      "Completed series generations by scenario.",
		}, []string{"scenario"}),
		GenerateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_duration_seconds",
			Help:      "Duration of one full catalog generation.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		GenerateErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generate_errors_total",
			Help:      "Generations rejected for invalid parameters.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Generated-series cache lookups by result.",
		}, []string{"result"}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Number of generation results currently cached.",
		}),
		SeaLevelFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sea_level_fetch_total",
			Help:      "Observed sea level fetches by outcome.",
		}, []string{"outcome"}),
		SeaLevelFetchTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sea_level_fetch_duration_seconds",
			Help:      "NOAA sea level request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request duration by route.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"route"}),
		PointsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_points_total",
			Help:      "Series points written to Kafka.",
		}),
		ServiceReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_ready",
			Help:      "1 once the default view has been generated, 0 otherwise.",
		}),
		SeaLevelObserved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sea_level_observed_years",
			Help:      "Years of observed sea level currently spliced into the synthetic series.",
		}),
	}
	m.collectors = []prometheus.Collector{
		m.SeriesGenerated,
		m.GenerateDuration,
		m.GenerateErrors,
		m.CacheLookups,
		m.CacheEntries,
		m.SeaLevelFetches,
		m.SeaLevelFetchTime,
		m.HTTPRequests,
		m.HTTPDuration,
		m.PointsPublished,
		m.ServiceReady,
		m.SeaLevelObserved,
	}
	return m
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates metrics registered with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
