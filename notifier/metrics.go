package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "monitor",
	Subsystem: "notifier",
	Name:      "notifications_total",
	Help:      "Number of deposit notifications by delivery channel and outcome.",
}, []string{"channel", "status"})

func ObserveNotification(channel string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	Notifications.WithLabelValues(channel, status).Inc()
}
