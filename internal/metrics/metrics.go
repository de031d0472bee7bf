// Package metrics holds the domain counters exported on /metrics. HTTP
// request metrics live with the router middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResearchOutcomeParsed   = "parsed"
	ResearchOutcomeDegraded = "degraded"
	ResearchOutcomeFailed   = "failed"
)

var (
	leadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads created",
		},
	)

	researchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_outcomes_total",
			Help: "Research invocations by outcome (parsed, degraded, failed)",
		},
		[]string{"outcome"},
	)

	researchDispatchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "research_dispatch_errors_total",
			Help: "Research tasks that could not be handed to the queue",
		},
	)

	leadChangeNotifications = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_change_notifications_total",
			Help: "Change notifications received from the store",
		},
	)
)

func RecordLeadCreated() {
	leadsCreated.Inc()
}

func RecordResearchOutcome(outcome string) {
	researchOutcomes.WithLabelValues(outcome).Inc()
}

func RecordResearchDispatchError() {
	researchDispatchErrors.Inc()
}

func RecordLeadChangeNotification() {
	leadChangeNotifications.Inc()
}
