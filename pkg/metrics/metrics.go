package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	SubmissionsTotal    *prometheus.CounterVec
	TransitionsTotal    *prometheus.CounterVec
	DeliberationsTotal  *prometheus.CounterVec
	SubmissionsRejected prometheus.Counter

	DraftSavesTotal prometheus.Counter
	DraftLoadsTotal *prometheus.CounterVec
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		SubmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "workflow",
			Name:      "submissions_total",
			Help:      "Requests submitted to the committee ledger, by request type.",
		}, []string{"tipo"}),

		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "Lifecycle transitions applied, by target state.",
		}, []string{"estado"}),

		DeliberationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "workflow",
			Name:      "deliberations_total",
			Help:      "Committee deliberations recorded, by verdict.",
		}, []string{"decisao"}),

		SubmissionsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "workflow",
			Name:      "submissions_rejected_total",
			Help:      "Wizard submissions rejected by validation before reaching the ledger.",
		}),

		DraftSavesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "draft",
			Name:      "saves_total",
			Help:      "Draft snapshots written to the local store.",
		}),

		DraftLoadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "draft",
			Name:      "loads_total",
			Help:      "Draft load attempts, by outcome (hit, miss).",
		}, []string{"outcome"}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
