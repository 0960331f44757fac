package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver counts events by type, level and messenger. It is also a
// prometheus.Collector and can be registered directly.
type MetricsObserver struct {
	events *prometheus.CounterVec
}

// NewMetricsObserver creates a MetricsObserver whose counter lives under
// namespace, e.g. "courier_events_total".
func NewMetricsObserver(namespace string) *MetricsObserver {
	return &MetricsObserver{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Courier events observed, by type, level and messenger.",
			},
			[]string{"type", "level", "messenger"},
		),
	}
}

func (m *MetricsObserver) OnEvent(_ context.Context, event Event) {
	m.events.WithLabelValues(string(event.Type), event.Level.String(), event.Source).Inc()
}

func (m *MetricsObserver) Describe(ch chan<- *prometheus.Desc) {
	m.events.Describe(ch)
}

func (m *MetricsObserver) Collect(ch chan<- prometheus.Metric) {
	m.events.Collect(ch)
}
