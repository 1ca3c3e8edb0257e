package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/syshair/backend/pkg/logger"
)

// BillingMetrics tracks webhook traffic and subscription reconciliation.
type BillingMetrics interface {
	IncWebhookReceived(topic string)
	// IncWebhookOutcome counts how a delivery ended: processed, ignored,
	// not_found, duplicate, provider_error or error.
	IncWebhookOutcome(topic, outcome string)
	IncSubscriptionTransition(from, to string)
	ObservePaymentAmount(amount float64, currency, status string)
}

type billingMetrics struct {
	log                *logger.Logger
	webhooksReceived   *prometheus.CounterVec
	webhookOutcomes    *prometheus.CounterVec
	subscriptionStatus *prometheus.CounterVec
	paymentsAmount     *prometheus.HistogramVec
}

// NewBillingMetrics registers the billing collectors on registry.
func NewBillingMetrics(registry *prometheus.Registry, log *logger.Logger) BillingMetrics {
	factory := promauto.With(registry)
	return &billingMetrics{
		log: log,
		webhooksReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhooks_received_total",
				Help: "The total number of provider webhooks received",
			},
			[]string{"topic"},
		),
		webhookOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhooks_outcome_total",
				Help: "Provider webhooks by processing outcome",
			},
			[]string{"topic", "outcome"},
		),
		subscriptionStatus: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subscription_transitions_total",
				Help: "Subscription status transitions applied by reconciliation",
			},
			[]string{"from", "to"},
		),
		paymentsAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "subscription_payments_amount",
				Help:    "Subscription payment amounts distribution",
				Buckets: prometheus.ExponentialBuckets(10, 10, 5), // 10, 100, 1000, 10000, 100000
			},
			[]string{"currency", "status"},
		),
	}
}

func (m *billingMetrics) IncWebhookReceived(topic string) {
	m.webhooksReceived.WithLabelValues(topic).Inc()
}

func (m *billingMetrics) IncWebhookOutcome(topic, outcome string) {
	m.webhookOutcomes.WithLabelValues(topic, outcome).Inc()
}

func (m *billingMetrics) IncSubscriptionTransition(from, to string) {
	m.subscriptionStatus.WithLabelValues(from, to).Inc()
}

func (m *billingMetrics) ObservePaymentAmount(amount float64, currency, status string) {
	m.paymentsAmount.WithLabelValues(currency, status).Observe(amount)
}
