package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var RegistrationsCreatedCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "torneio_registrations_created_total",
		Help: "Number of registration records created",
	},
)

var RegistrationsRejectedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "torneio_registrations_rejected_total",
	Help: "Number of registration requests rejected, by reason",
}, []string{"reason"})

var WebhookSentCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "torneio_webhook_notifications_sent_total",
		Help: "Number of webhook notifications delivered",
	},
)

var WebhookFailedCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "torneio_webhook_notifications_failed_total",
		Help: "Number of webhook notifications that failed",
	},
)

var LoginCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "torneio_logins_total",
	Help: "Number of login attempts, by outcome",
}, []string{"outcome"})
