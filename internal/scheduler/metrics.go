package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_scheduler_ticks_total",
		Help: "Escalation scheduler ticks executed.",
	})
	autoEscalationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_auto_escalations_total",
		Help: "Reports auto-escalated after the owner deadline.",
	})
	adminReescalationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_admin_reescalations_total",
		Help: "Administrator-filed reports re-escalated after the owner deadline.",
	})
	remindersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_escalation_reminders_total",
		Help: "Escalation reminder events emitted.",
	})
	failuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_scheduler_failures_total",
		Help: "Per-report processing failures inside scheduler passes.",
	})
)
