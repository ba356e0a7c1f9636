package opevent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for event emission.
type Metrics struct {
	Emitted       *prometheus.CounterVec
	Deferred      prometheus.Counter
	Discarded     prometheus.Counter
	BuildFailures prometheus.Counter
	SinkFailures  prometheus.Counter
	SinkDuration  prometheus.Histogram
}

// NewMetrics creates emitter metrics registered on reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Emitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opevent_events_emitted_total",
			Help: "Total number of events appended to the sink, by event type",
		}, []string{"event_type"}),
		Deferred: factory.NewCounter(prometheus.CounterOpts{
			Name: "opevent_events_deferred_total",
			Help: "Total number of events queued until the enclosing unit of work commits",
		}),
		Discarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "opevent_events_discarded_total",
			Help: "Total number of deferred events whose sink write failed after commit",
		}),
		BuildFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "opevent_build_failures_total",
			Help: "Total number of events that could not be built or serialized",
		}),
		SinkFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "opevent_sink_failures_total",
			Help: "Total number of failed sink appends",
		}),
		SinkDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "opevent_sink_append_duration_seconds",
			Help:    "Duration of sink appends",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
}

// IncEmitted increments the emitted counter for eventType.
func (m *Metrics) IncEmitted(eventType string) {
	m.Emitted.WithLabelValues(eventType).Inc()
}

// IncDeferred increments the deferred counter.
func (m *Metrics) IncDeferred() {
	m.Deferred.Inc()
}

// IncDiscarded increments the discarded counter.
func (m *Metrics) IncDiscarded() {
	m.Discarded.Inc()
}

// IncBuildFailures increments the build failures counter.
func (m *Metrics) IncBuildFailures() {
	m.BuildFailures.Inc()
}

// IncSinkFailures increments the sink failures counter.
func (m *Metrics) IncSinkFailures() {
	m.SinkFailures.Inc()
}

// ObserveSinkDuration records the duration of one append.
func (m *Metrics) ObserveSinkDuration(seconds float64) {
	m.SinkDuration.Observe(seconds)
}
