package breathing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "respira_breathing_sessions_total",
		Help: "Breathing sessions that ended, by outcome.",
	}, []string{"technique", "outcome"})

	sessionCycles = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "respira_breathing_session_cycles",
		Help:    "Cycles completed per breathing session.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 40},
	})
)

func observeEnd(final State, outcome string) {
	technique := "unknown"
	if final.Technique != nil {
		technique = final.Technique.ID
	}
	sessionsTotal.WithLabelValues(technique, outcome).Inc()
	sessionCycles.Observe(float64(final.Cycles))
}
