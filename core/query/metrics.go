package query

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors a Paginator reports to.
type Metrics struct {
	// RequestsTotal counts Paginate calls by collection and outcome.
	RequestsTotal *prometheus.CounterVec
	// Duration is the latency of Paginate calls.
	Duration *prometheus.HistogramVec
	// Matched is the number of records matched by the filter, before paging.
	Matched *prometheus.HistogramVec
}

// NewMetrics creates the pagination collectors and registers them with reg.
// A nil reg registers with the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paginate_requests_total",
				Help: "Total number of pagination requests",
			},
			[]string{"collection", "status"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paginate_duration_seconds",
				Help:    "Pagination latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"collection"},
		),
		Matched: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paginate_matched_records",
				Help:    "Number of records matched by the filter",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"collection"},
		),
	}
}

func (m *Metrics) observe(collection string, startTime time.Time, result *Result, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.RequestsTotal.WithLabelValues(collection, status).Inc()
	m.Duration.WithLabelValues(collection).Observe(time.Since(startTime).Seconds())
	if result != nil {
		m.Matched.WithLabelValues(collection).Observe(float64(result.Total))
	}
}
