// Package metrics defines the storefront's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "legado"

// Metrics groups every collector. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	stateChanges    *prometheus.CounterVec
	listenerPanics  *prometheus.CounterVec
	quoteRequests   *prometheus.CounterVec
	inquiries       prometheus.Counter
	sseClients      prometheus.Gauge
	sseDropped      prometheus.Counter
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	probeLatency    prometheus.Histogram
	online          prometheus.Gauge
}

// New registers the collectors on registry. A nil registry gets a fresh one
// with the Go and process collectors.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			prometheus.NewGoCollector(),
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		stateChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_changes_total",
			Help:      "State store changes by key.",
		}, []string{"key"}),

		listenerPanics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listener_panics_total",
			Help:      "Recovered panics in state listeners by key.",
		}, []string{"key"}),

		quoteRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_requests_total",
			Help:      "Quote form submissions by outcome.",
		}, []string{"outcome"}),

		inquiries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_inquiries_total",
			Help:      "WhatsApp product inquiry links generated.",
		}),

		sseClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sse_clients",
			Help:      "Connected event stream clients.",
		}),

		sseDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sse_dropped_events_total",
			Help:      "Events skipped because a client was too slow.",
		}),

		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		probeLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_latency_seconds",
			Help:      "Connectivity probe latency.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		}),

		online: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online",
			Help:      "1 when the last connectivity probe succeeded.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// StateChanged counts one store change.
func (m *Metrics) StateChanged(key string) {
	if m == nil {
		return
	}
	m.stateChanges.WithLabelValues(key).Inc()
}

// ListenerPanicked counts one recovered listener panic.
func (m *Metrics) ListenerPanicked(key string) {
	if m == nil {
		return
	}
	m.listenerPanics.WithLabelValues(key).Inc()
}

// QuoteSubmitted counts a quote submission; ok is false for rejected forms.
func (m *Metrics) QuoteSubmitted(ok bool) {
	if m == nil {
		return
	}
	outcome := "sent"
	if !ok {
		outcome = "invalid"
	}
	m.quoteRequests.WithLabelValues(outcome).Inc()
}

// InquiryCreated counts a product inquiry link.
func (m *Metrics) InquiryCreated() {
	if m == nil {
		return
	}
	m.inquiries.Inc()
}

// SSEConnected tracks an event stream client. Call the returned func when
// it disconnects.
func (m *Metrics) SSEConnected() (disconnected func()) {
	if m == nil {
		return func() {}
	}
	m.sseClients.Inc()
	return m.sseClients.Dec
}

// SSEDropped counts an event skipped for a slow client.
func (m *Metrics) SSEDropped() {
	if m == nil {
		return
	}
	m.sseDropped.Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, code).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveProbe records a connectivity check.
func (m *Metrics) ObserveProbe(online bool, latency time.Duration) {
	if m == nil {
		return
	}
	m.probeLatency.Observe(latency.Seconds())
	if online {
		m.online.Set(1)
	} else {
		m.online.Set(0)
	}
}
