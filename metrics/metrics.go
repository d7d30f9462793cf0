package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SamplesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gokin_samples_processed_total",
			Help: "Total number of price samples fed through an engine (by symbol).",
		},
		[]string{"symbol"},
	)

	TrapsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gokin_traps_detected_total",
			Help: "Total number of cooldown-gated trap flags raised (by symbol).",
		},
		[]string{"symbol"},
	)

	ConsecutiveSpikes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gokin_consecutive_spikes",
			Help: "Current run length of consecutive spike ticks (by symbol).",
		},
		[]string{"symbol"},
	)

	LifecyclePhase = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gokin_lifecycle_phase",
			Help: "Current lifecycle phase (0=early, 1=maintain, 2=decline) by symbol.",
		},
		[]string{"symbol"},
	)

	Recommendations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gokin_recommendations_total",
			Help: "Recommendations emitted by the engine (by symbol and action).",
		},
		[]string{"symbol", "action"},
	)
)

func init() {
	prometheus.MustRegister(SamplesProcessed, TrapsDetected, ConsecutiveSpikes,
		LifecyclePhase, Recommendations)
}
