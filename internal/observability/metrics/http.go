package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	resolveTotal    *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec

	lookupRecordedTotal *prometheus.CounterVec
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wkb",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wkb",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wkb",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	resolveTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wkb",
			Subsystem: "resolve",
			Name:      "outcomes_total",
			Help:      "Total completed resolutions by outcome status.",
		},
		[]string{"service", "status"},
	)
	resolveDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wkb",
			Subsystem: "resolve",
			Name:      "duration_seconds",
			Help:      "Resolution duration in seconds, fallback chain included.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)

	lookupRecordedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wkb",
			Subsystem: "lookups",
			Name:      "recorded_total",
			Help:      "Total lookup events consumed from the queue by result.",
		},
		[]string{"service", "result"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		resolveTotal,
		resolveDuration,
		lookupRecordedTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		resolveTotal:        resolveTotal,
		resolveDuration:     resolveDuration,
		lookupRecordedTotal: lookupRecordedTotal,
	}
}

func (m *HTTPServerMetrics) RecordLookupConsumed(service, result string) {
	m.lookupRecordedTotal.WithLabelValues(service, result).Inc()
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordResolution(service, status string, duration time.Duration) {
	m.resolveTotal.WithLabelValues(service, status).Inc()
	m.resolveDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}
