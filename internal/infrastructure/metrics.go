package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DatasetRowsLoaded   prometheus.Gauge
	DatasetRowsRejected prometheus.Gauge
	DatasetLoadsTotal   *prometheus.CounterVec
}

// NewMetrics creates the metrics registry with all application collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "secustats_http_requests_total",
			Help: "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "secustats_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		DatasetRowsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "secustats_dataset_rows_loaded",
			Help: "Valid records in the last dataset load.",
		}),
		DatasetRowsRejected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "secustats_dataset_rows_rejected",
			Help: "Rejected rows in the last dataset load.",
		}),
		DatasetLoadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "secustats_dataset_loads_total",
			Help: "Dataset load attempts by result.",
		}, []string{"result"}),
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDatasetLoad records the outcome of a dataset load.
func (m *Metrics) ObserveDatasetLoad(loaded, rejected int, err error) {
	if err != nil {
		m.DatasetLoadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.DatasetLoadsTotal.WithLabelValues("success").Inc()
	m.DatasetRowsLoaded.Set(float64(loaded))
	m.DatasetRowsRejected.Set(float64(rejected))
}
