package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type BotMetrics struct {
	registry *prometheus.Registry

	resolveTotal    *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
	messagesSent    *prometheus.CounterVec
	callbacksTotal  *prometheus.CounterVec
}

func NewBotMetrics(service string) *BotMetrics {
	registry := prometheus.NewRegistry()

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
	messagesSent := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wkb",
			Subsystem: "bot",
			Name:      "messages_sent_total",
			Help:      "Total outbound chat messages by kind.",
		},
		[]string{"service", "kind"},
	)
	callbacksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wkb",
			Subsystem: "bot",
			Name:      "callbacks_total",
			Help:      "Total inline keyboard callbacks by action.",
		},
		[]string{"service", "action"},
	)

	registry.MustRegister(resolveTotal, resolveDuration, messagesSent, callbacksTotal)

	return &BotMetrics{
		registry:        registry,
		resolveTotal:    resolveTotal,
		resolveDuration: resolveDuration,
		messagesSent:    messagesSent,
		callbacksTotal:  callbacksTotal,
	}
}

func (m *BotMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *BotMetrics) RecordResolution(service, status string, duration time.Duration) {
	m.resolveTotal.WithLabelValues(service, status).Inc()
	m.resolveDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *BotMetrics) MessageSent(service, kind string) {
	m.messagesSent.WithLabelValues(service, kind).Inc()
}

func (m *BotMetrics) CallbackHandled(service, action string) {
	m.callbacksTotal.WithLabelValues(service, action).Inc()
}
