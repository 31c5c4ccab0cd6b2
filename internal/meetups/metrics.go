package meetups

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	meetupsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetups_created_total",
			Help: "Total number of meetups created by category",
		},
		[]string{"category"},
	)

	meetupJoinsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meetups_joins_total",
			Help: "Total number of successful meetup joins",
		},
	)
)

func RecordMeetupCreated(category string) {
	meetupsCreatedTotal.WithLabelValues(category).Inc()
}

func RecordMeetupJoin() {
	meetupJoinsTotal.Inc()
}
