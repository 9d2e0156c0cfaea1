package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerRequestDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "integration",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of operations against external providers.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	providerOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "integration",
			Name:      "provider_operations_total",
			Help:      "Total provider operations by outcome.",
		},
		[]string{"provider", "operation", "outcome"}, // outcome: "success", "error", "mock", "local"
	)
)

// outcomeLabel maps an envelope to its counter label. Degraded responses count
// separately from real provider successes.
func outcomeLabel(success bool, source string) string {
	if !success {
		return "error"
	}
	switch source {
	case "mock":
		return "mock"
	case "local":
		return "local"
	default:
		return "success"
	}
}
