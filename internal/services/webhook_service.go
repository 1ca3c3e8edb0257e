package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/syshair/backend/internal/kafka"
	"github.com/syshair/backend/internal/mercadopago"
	"github.com/syshair/backend/internal/metrics"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/internal/repository"
	"github.com/syshair/backend/pkg/logger"
)

// Webhook topics sent by Mercado Pago.
const (
	TopicPreapproval       = "subscription_preapproval"
	TopicPayment           = "payment"
	TopicAuthorizedPayment = "subscription_authorized_payment"
)

// Outcome describes how a webhook delivery was handled.
type Outcome string

const (
	OutcomeProcessed     Outcome = "processed"
	OutcomeUnchanged     Outcome = "unchanged"
	OutcomeIgnored       Outcome = "ignored"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeDuplicate     Outcome = "duplicate"
	OutcomeProviderError Outcome = "provider_error"
	OutcomeError         Outcome = "error"
)

// WebhookNotification is the parsed webhook body.
type WebhookNotification struct {
	Type   string
	Action string
	DataID string
}

// PaymentProvider fetches authoritative objects from the provider.
type PaymentProvider interface {
	GetPreapproval(ctx context.Context, id string) (*mercadopago.Preapproval, error)
	GetPayment(ctx context.Context, id string) (*mercadopago.Payment, error)
}

// WebhookService reconciles local subscriptions with provider events.
// Deliveries are at-least-once; every path is idempotent.
type WebhookService struct {
	subs     repository.SubscriptionRepository
	payments repository.PaymentRepository
	provider PaymentProvider
	events   EventPublisher
	metrics  metrics.BillingMetrics
	log      *logger.Logger
	now      func() time.Time
}

func NewWebhookService(
	subs repository.SubscriptionRepository,
	payments repository.PaymentRepository,
	provider PaymentProvider,
	events EventPublisher,
	m metrics.BillingMetrics,
	log *logger.Logger,
) *WebhookService {
	return &WebhookService{
		subs:     subs,
		payments: payments,
		provider: provider,
		events:   events,
		metrics:  m,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// HandleNotification processes one delivery. Only store failures are
// returned; provider failures and unknown subscriptions end the branch.
func (s *WebhookService) HandleNotification(ctx context.Context, n WebhookNotification) (Outcome, error) {
	s.metrics.IncWebhookReceived(n.Type)

	var (
		outcome Outcome
		err     error
	)
	switch n.Type {
	case TopicPreapproval:
		outcome, err = s.handlePreapproval(ctx, n.DataID)
	case TopicPayment, TopicAuthorizedPayment:
		outcome, err = s.handlePayment(ctx, n.DataID)
	default:
		s.log.Infow("Ignoring webhook type", "type", n.Type, "action", n.Action, "dataID", n.DataID)
		outcome = OutcomeIgnored
	}
	if err != nil {
		outcome = OutcomeError
	}

	s.metrics.IncWebhookOutcome(n.Type, string(outcome))
	return outcome, err
}

func (s *WebhookService) handlePreapproval(ctx context.Context, id string) (Outcome, error) {
	if id == "" {
		s.log.Warnw("Preapproval webhook without id")
		return OutcomeIgnored, nil
	}

	pre, err := s.provider.GetPreapproval(ctx, id)
	if err != nil {
		s.log.Errorw("Failed to fetch preapproval", "error", err, "preapprovalID", id)
		return OutcomeProviderError, nil
	}

	sub, err := s.locate(ctx, pre.ID.String(), pre.ExternalReference)
	if errors.Is(err, ErrSubscriptionNotFound) {
		s.log.Warnw("No subscription for preapproval", "preapprovalID", id, "externalReference", pre.ExternalReference)
		return OutcomeNotFound, nil
	}
	if err != nil {
		return OutcomeError, err
	}

	updated := ApplyPreapproval(sub, pre, s.now())
	if updated.SameState(sub) {
		s.log.Debugw("Preapproval already reconciled", "preapprovalID", id, "salonID", sub.SalonID)
		return OutcomeUnchanged, nil
	}

	if err := s.save(ctx, sub, updated, "preapproval", id); err != nil {
		return OutcomeError, err
	}
	s.log.Infow("Subscription reconciled from preapproval",
		"salonID", sub.SalonID, "providerStatus", pre.Status, "status", updated.Status)
	return OutcomeProcessed, nil
}

func (s *WebhookService) handlePayment(ctx context.Context, id string) (Outcome, error) {
	if id == "" {
		s.log.Warnw("Payment webhook without id")
		return OutcomeIgnored, nil
	}

	p, err := s.provider.GetPayment(ctx, id)
	if err != nil {
		s.log.Errorw("Failed to fetch payment", "error", err, "paymentID", id)
		return OutcomeProviderError, nil
	}
	paymentID := p.ID.String()
	if paymentID == "" {
		paymentID = id
	}

	exists, err := s.payments.Exists(ctx, paymentID, p.Status)
	if err != nil {
		return OutcomeError, fmt.Errorf("payment lookup: %w", err)
	}
	if exists {
		s.log.Infow("Duplicate payment event", "paymentID", paymentID, "status", p.Status)
		return OutcomeDuplicate, nil
	}

	sub, err := s.locate(ctx, p.SubscriptionID(), p.ExternalReference)
	if errors.Is(err, ErrSubscriptionNotFound) {
		s.log.Warnw("No subscription for payment", "paymentID", paymentID, "externalReference", p.ExternalReference)
		return OutcomeNotFound, nil
	}
	if err != nil {
		return OutcomeError, err
	}

	if updated, touched := ApplyPayment(sub, p, s.now()); touched && !updated.SameState(sub) {
		if err := s.save(ctx, sub, updated, "payment", paymentID); err != nil {
			return OutcomeError, err
		}
	}

	record := &models.PaymentRecord{
		SubscriptionID:       sub.ID,
		ExternalPaymentID:    paymentID,
		ExternalStatus:       p.Status,
		ExternalStatusDetail: p.StatusDetail,
		Amount:               p.TransactionAmount,
		Currency:             p.CurrencyID,
		PaymentMethod:        p.PaymentMethodID,
		PaidAt:               p.DateApproved,
	}
	if err := s.payments.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return OutcomeDuplicate, nil
		}
		return OutcomeError, fmt.Errorf("payment record: %w", err)
	}

	amount, _ := p.TransactionAmount.Float64()
	s.metrics.ObservePaymentAmount(amount, p.CurrencyID, p.Status)
	s.log.Infow("Payment reconciled", "paymentID", paymentID, "status", p.Status, "salonID", sub.SalonID)
	return OutcomeProcessed, nil
}

// locate finds a subscription by preapproval id, then by external reference.
func (s *WebhookService) locate(ctx context.Context, preapprovalID, reference string) (*models.Subscription, error) {
	if preapprovalID != "" {
		sub, err := s.subs.GetByPreapprovalID(ctx, preapprovalID)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("subscription lookup: %w", err)
		}
	}
	if reference != "" {
		sub, err := s.subs.GetByExternalReference(ctx, reference)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("subscription lookup: %w", err)
		}
	}
	return nil, ErrSubscriptionNotFound
}

func (s *WebhookService) save(ctx context.Context, before, after *models.Subscription, source, externalID string) error {
	if err := s.subs.Update(ctx, after); err != nil {
		return fmt.Errorf("subscription update: %w", err)
	}
	if before.Status == after.Status {
		return nil
	}

	s.metrics.IncSubscriptionTransition(string(before.Status), string(after.Status))
	publishEvent(ctx, s.events, s.log, kafka.TopicSubscriptionStatusChanged, after.SalonID.String(), kafka.SubscriptionStatusChanged{
		SubscriptionID: after.ID,
		SalonID:        after.SalonID,
		PreviousStatus: string(before.Status),
		Status:         string(after.Status),
		Source:         source,
		ExternalID:     externalID,
		OccurredAt:     s.now(),
	})
	return nil
}
