package model

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts completion attempts per provider and outcome. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	attempts *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		attempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "ticketsmith",
			Subsystem: "completion",
			Name:      "attempts_total",
			Help:      "Completion attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
	}
}

func (m *Metrics) RecordAttempt(provider string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
	}
	m.attempts.WithLabelValues(provider, outcome).Inc()
}
