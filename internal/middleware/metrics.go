package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesPosted counts posted messages by kind.
	MessagesPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hirelink_messages_posted_total",
		Help: "Total number of messages posted by kind",
	}, []string{"kind"})

	// NotificationAttempts counts recorded delivery attempts by outcome.
	NotificationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hirelink_notification_attempts_total",
		Help: "Total number of notification delivery attempts by outcome",
	}, []string{"outcome"})

	// NotificationTerminal counts notifications reaching a terminal status.
	NotificationTerminal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hirelink_notification_terminal_total",
		Help: "Total number of notifications reaching a terminal status",
	}, []string{"status"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hirelink_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// RealtimeEventsPublished counts realtime events published by type.
	RealtimeEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hirelink_realtime_events_published_total",
		Help: "Total number of realtime events published by event type",
	}, []string{"event_type"})
)
