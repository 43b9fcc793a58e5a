package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var actionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_moderation_actions_total",
	Help: "Moderation actions dispatched, by action and terminal state",
}, []string{"action", "state"})

var denialCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_moderation_denials_total",
	Help: "Moderation requests denied by a guard, by reason",
}, []string{"reason"})

var executorFailureCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_executor_failures_total",
	Help: "Platform errors raised after all guards passed, by kind",
}, []string{"kind"})

var notificationCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_membership_notifications_total",
	Help: "Membership notifications, by kind and result",
}, []string{"kind", "result"})

var rateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
	Name: "modbot_ratelimit_rejections_total",
	Help: "Commands rejected by the per-user cooldown",
})

var permissionLookupFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_permission_lookup_failures_total",
	Help: "Participant role lookups that failed and were treated as denial",
}, []string{"check"})
