package infrastructure

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors for the service. A private
// registry keeps test instances independent of each other.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	DatasetsProcessed prometheus.Counter
	RowsIngested      prometheus.Counter
	RowsRemoved       prometheus.Counter
	CleaningDuration  prometheus.Histogram
	KPIDuration       prometheus.Histogram
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "retailpulse",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "retailpulse",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DatasetsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "retailpulse",
			Subsystem: "pipeline",
			Name:      "datasets_processed_total",
			Help:      "Datasets that completed the cleaning pipeline.",
		}),
		RowsIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "retailpulse",
			Subsystem: "pipeline",
			Name:      "rows_ingested_total",
			Help:      "Raw rows accepted by the loader.",
		}),
		RowsRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "retailpulse",
			Subsystem: "pipeline",
			Name:      "rows_removed_total",
			Help:      "Rows removed during cleaning.",
		}),
		CleaningDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "retailpulse",
			Subsystem: "pipeline",
			Name:      "cleaning_duration_seconds",
			Help:      "Wall time of a full cleaning pipeline run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		KPIDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "retailpulse",
			Subsystem: "kpi",
			Name:      "calculation_duration_seconds",
			Help:      "Wall time of a full KPI calculation.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware instruments every request with count and latency, labeled by
// the chi route pattern to keep label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
