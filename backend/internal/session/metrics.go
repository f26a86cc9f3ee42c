package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeCompleted = "completed"
	outcomeCancelled = "cancelled"
	outcomeFailed    = "failed"
	outcomeRejected  = "rejected"
)

var (
	metricSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "salon_sessions_active",
		Help: "Discussions currently streaming.",
	})

	metricSessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salon_sessions_total",
		Help: "Finished discussions by outcome.",
	}, []string{"outcome"})
)
