package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricStageTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salon_stage_transitions_total",
		Help: "Discussion stage transitions by source and target stage.",
	}, []string{"from", "to"})

	metricStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "salon_step_duration_seconds",
		Help:    "Wall time of one discussion step, including generation and lookups.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"stage"})

	metricGenerationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salon_generation_failures_total",
		Help: "Text generation failures by role.",
	}, []string{"role"})

	metricToolFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salon_tool_failures_total",
		Help: "Speaker lookups that failed and were replaced by a placeholder.",
	}, []string{"kind"})

	metricSelectionUnparsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "salon_selection_unparsed_total",
		Help: "Moderator selections that did not name a valid guest.",
	})
)
