// Package metrics provides Prometheus metrics for the Fern service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsProcessedTotal tracks lifecycle events by component, action and outcome
	EventsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "events",
			Name:      "processed_total",
			Help:      "Total number of lifecycle events processed by outcome",
		},
		[]string{"component", "action", "status"},
	)

	// EventDecisionDuration tracks how long the reconcile-and-persist path takes
	EventDecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "events",
			Name:      "decision_duration_seconds",
			Help:      "Duration of event reconciliation and persistence in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"component", "action"},
	)

	// ContractsCreatedTotal tracks contract registrations
	ContractsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "contracts",
			Name:      "created_total",
			Help:      "Total number of contracts created",
		},
	)

	// ContractsDeletedTotal tracks contract deletions
	ContractsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "contracts",
			Name:      "deleted_total",
			Help:      "Total number of contracts deleted",
		},
	)

	// AuditAppendFailuresTotal tracks audit rows that could not be written
	AuditAppendFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "audit",
			Name:      "append_failures_total",
			Help:      "Total number of audit log appends that failed after the decision was committed",
		},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// KafkaMessagesConsumed tracks Kafka messages consumed from the event topic
	KafkaMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "kafka",
			Name:      "messages_consumed_total",
			Help:      "Total number of messages consumed from Kafka",
		},
		[]string{"topic", "status"},
	)

	// DatabaseQueryDuration tracks database query duration
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// RecordEventDecision records the outcome and latency of one lifecycle event
func RecordEventDecision(component, action, status string, durationSeconds float64) {
	EventsProcessedTotal.WithLabelValues(component, action, status).Inc()
	EventDecisionDuration.WithLabelValues(component, action).Observe(durationSeconds)
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
}

// RecordKafkaConsume records a consumed Kafka message
func RecordKafkaConsume(topic, status string) {
	KafkaMessagesConsumed.WithLabelValues(topic, status).Inc()
}
