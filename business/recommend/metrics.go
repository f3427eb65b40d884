package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PreferenceEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preference_events_total",
			Help: "Count of applied preference-update events by event type.",
		},
		[]string{"event_type"},
	)

	RecommendationFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_fallbacks_total",
			Help: "Count of recommendation requests served by a fallback strategy.",
		},
		[]string{"reason"},
	)

	TrainingRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_runs_total",
			Help: "Count of training runs by outcome.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		PreferenceEventsTotal,
		RecommendationFallbacksTotal,
		TrainingRunsTotal,
	)
}
