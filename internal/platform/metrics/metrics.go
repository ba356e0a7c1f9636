package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-facing Prometheus metrics of the service.
type Metrics struct {
	NotificationsAccepted *prometheus.CounterVec
	RequestDuration       *prometheus.HistogramVec
}

// New creates and registers the metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		NotificationsAccepted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opevent_notifications_accepted_total",
			Help: "Total number of trigger notifications accepted, by signal",
		}, []string{"signal"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opevent_http_request_duration_seconds",
			Help:    "Latency of HTTP requests, by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// AddNotificationsAccepted adds n accepted notifications for signal.
func (m *Metrics) AddNotificationsAccepted(signal string, n int) {
	m.NotificationsAccepted.WithLabelValues(signal).Add(float64(n))
}

// ObserveRequest records the latency of one request.
func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	m.RequestDuration.WithLabelValues(route, status).Observe(seconds)
}
