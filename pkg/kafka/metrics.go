package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	producerPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "respira",
		Name:      "kafka_published_total",
		Help:      "Events published, by topic.",
	}, []string{"topic"})

	producerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "respira",
		Name:      "kafka_publish_errors_total",
		Help:      "Failed publishes, by topic.",
	}, []string{"topic"})

	consumerProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "respira",
		Name:      "kafka_consumed_total",
		Help:      "Messages handled, by topic and outcome (ok, failed, duplicate, malformed).",
	}, []string{"topic", "outcome"})

	consumerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "respira",
		Name:      "kafka_handler_duration_seconds",
		Help:      "Handler latency including retries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"topic"})
)
