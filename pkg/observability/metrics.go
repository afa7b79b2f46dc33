package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the weft collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inflight   prometheus.Gauge
	pushes     *prometheus.CounterVec
	responses  *prometheus.CounterVec
	selections prometheus.Counter
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_dispatch_total",
				Help: "Backend calls by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weft_dispatch_duration_seconds",
				Help:    "Latency of backend calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weft_dispatch_inflight",
			Help: "Backend calls awaiting a response",
		}),
		pushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_push_events_total",
				Help: "Push events accepted by the relay",
			},
			[]string{"event"},
		),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_relay_responses_total",
				Help: "Relayed responses by presentation path",
			},
			[]string{"kind"},
		),
		selections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weft_selection_changes_total",
			Help: "Selection changes",
		}),
	}
	m.registry.MustRegister(m.dispatches, m.duration, m.inflight, m.pushes, m.responses, m.selections)
	return m
}

// Registry exposes the underlying registry, e.g. to add process collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			m.inflight.Inc()
		},
		OnDispatchDone: func(ctx context.Context, e *domain.DispatchEvent) {
			m.inflight.Dec()
			m.dispatches.WithLabelValues(e.Endpoint, e.Outcome()).Inc()
			m.duration.WithLabelValues(e.Endpoint).Observe(e.Duration.Seconds())
		},
		OnPush: func(ctx context.Context, e *domain.RelayEvent) {
			m.pushes.WithLabelValues(e.Event.Name).Inc()
		},
		OnRender: func(ctx context.Context, e *domain.RelayEvent) {
			m.responses.WithLabelValues(string(e.Kind)).Inc()
		},
		OnDiscard: func(ctx context.Context, e *domain.RelayEvent) {
			m.responses.WithLabelValues(string(domain.RenderDiscarded)).Inc()
		},
		OnSelect: func(ctx context.Context, e *domain.SelectEvent) {
			m.selections.Inc()
		},
	}
}
