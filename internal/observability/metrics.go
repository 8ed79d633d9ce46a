package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the Prometheus instruments for the scheduling service.
type Metrics struct {
	SessionsCreated   prometheus.Counter
	SessionsUpdated   prometheus.Counter
	ConflictsDetected prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Sessions inserted by proposal resolution.",
		}),
		SessionsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_updated_total",
			Help:      "Existing sessions overwritten by same-day proposals.",
		}),
		ConflictsDetected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_detected_total",
			Help:      "Proposed instances flagged pending_resolution.",
		}),
	}
}

func (m *Metrics) RecordResolution(created, updated, conflicts int) {
	m.SessionsCreated.Add(float64(created))
	m.SessionsUpdated.Add(float64(updated))
	m.ConflictsDetected.Add(float64(conflicts))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
