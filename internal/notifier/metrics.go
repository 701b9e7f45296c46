package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sendTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifyd_send_total",
			Help: "Total notification delivery attempts by transport and status.",
		},
		[]string{"transport", "status"},
	)
	sendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notifyd_send_duration_seconds",
			Help:    "Duration of notification transport requests.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"transport", "status"},
	)
	rateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifyd_rate_limited_total",
			Help: "Deliveries short-circuited by an active per-channel rate-limit window.",
		},
		[]string{"channel"},
	)
)
