// Package metrics содержит счётчики Prometheus, которые отдаются на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RejectedSubscriptions — записи, отброшенные перед расчётом агрегатов.
	RejectedSubscriptions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "subscription_tracker",
		Name:      "rejected_subscriptions_total",
		Help:      "Subscriptions skipped by analytics because they failed validation.",
	})

	// AdvisorResponses — ответы советника по источнику: local, ai, fallback, error.
	AdvisorResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "subscription_tracker",
		Name:      "advisor_responses_total",
		Help:      "Advisor responses by operation and source.",
	}, []string{"operation", "source"})

	// RemindersPublished — опубликованные напоминания о продлении.
	RemindersPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "subscription_tracker",
		Name:      "renewal_reminders_published_total",
		Help:      "Renewal reminders published to the broker.",
	})

	// RemindersSent — письма с напоминаниями, отправленные по SMTP.
	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "subscription_tracker",
		Name:      "renewal_reminders_sent_total",
		Help:      "Renewal reminder e-mails sent.",
	})
)
