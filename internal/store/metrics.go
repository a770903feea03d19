package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "respira_store_writes_total",
		Help: "Successful background writes of persisted stores.",
	}, []string{"store"})

	writeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "respira_store_write_failures_total",
		Help: "Background writes that failed; the in-memory state stays authoritative.",
	}, []string{"store"})
)
