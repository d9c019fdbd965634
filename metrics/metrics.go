package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	MessagesRouted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fixitnow_messages_routed_total",
			Help: "Total number of chat messages persisted and fanned out",
		},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixitnow_notifications_total",
			Help: "Total number of notification writes by outcome (created or deduplicated)",
		},
		[]string{"outcome"},
	)

	FrameAuthFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fixitnow_frame_auth_failures_total",
			Help: "Total number of live-channel frames carrying a credential that failed verification",
		},
	)

	OnlineUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fixitnow_online_users",
			Help: "Number of users with at least one live session",
		},
	)
)

func init() {
	prometheus.MustRegister(
		MessagesRouted,
		NotificationsTotal,
		FrameAuthFailures,
		OnlineUsers,
	)
}
