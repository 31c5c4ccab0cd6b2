package dates

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	datesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dates_plans_created_total",
			Help: "Total number of date plans published",
		},
	)

	proposalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dates_proposals_total",
			Help: "Total number of date proposals by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordDateCreated() {
	datesCreatedTotal.Inc()
}

func RecordProposal(outcome string) {
	proposalsTotal.WithLabelValues(outcome).Inc()
}
