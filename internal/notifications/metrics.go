package notifications

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of notifications stored by kind",
	},
	[]string{"kind"},
)

func RecordNotification(kind string) {
	notificationsTotal.WithLabelValues(kind).Inc()
}
