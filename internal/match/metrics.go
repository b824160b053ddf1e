package match

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PhaseTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_phase_transitions_total",
			Help: "Orchestrator phase transitions",
		},
		[]string{"from", "to"},
	)
	RoundsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_rounds_resolved_total",
			Help: "Resolved rounds by outcome",
		},
		[]string{"outcome"},
	)
	Gestures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_gestures_total",
			Help: "Gesture events seen by the orchestrator",
		},
		[]string{"result"},
	)
	MatchesCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_matches_completed_total",
			Help: "Matches that reached match_over, by winner",
		},
		[]string{"winner"},
	)
	FeedConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rps_gesture_feed_connected",
			Help: "1 while at least one gesture feed is connected",
		},
	)
)

func init() {
	prometheus.MustRegister(PhaseTransitions)
	prometheus.MustRegister(RoundsResolved)
	prometheus.MustRegister(Gestures)
	prometheus.MustRegister(MatchesCompleted)
	prometheus.MustRegister(FeedConnected)
}
