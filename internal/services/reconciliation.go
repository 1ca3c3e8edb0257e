package services

import (
	"strings"
	"time"

	"github.com/syshair/backend/internal/mercadopago"
	"github.com/syshair/backend/internal/models"
)

// Provider preapproval statuses.
const (
	preapprovalAuthorized = "authorized"
	preapprovalPending    = "pending"
	preapprovalPaused     = "paused"
	preapprovalCancelled  = "cancelled"
)

// MapProviderStatus translates a preapproval status to the local vocabulary.
// Unknown statuses map to pending.
func MapProviderStatus(status string) models.SubscriptionStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case preapprovalAuthorized:
		return models.SubscriptionStatusActive
	case preapprovalPending, preapprovalPaused:
		return models.SubscriptionStatusPending
	case preapprovalCancelled:
		return models.SubscriptionStatusCancelled
	default:
		return models.SubscriptionStatusPending
	}
}

// nextPeriod returns the end of a one-month period starting at t.
func nextPeriod(t time.Time) time.Time {
	return t.AddDate(0, 1, 0)
}

// ApplyPreapproval returns a copy of sub reconciled against pre. sub is not
// modified.
func ApplyPreapproval(sub *models.Subscription, pre *mercadopago.Preapproval, now time.Time) *models.Subscription {
	out := sub.Clone()
	status := MapProviderStatus(pre.Status)

	switch {
	case pre.NextPaymentDate != nil:
		end := pre.NextPaymentDate.UTC()
		out.CurrentPeriodEnd = &end
	case sub.Status == status && sub.CurrentPeriodEnd != nil:
		// redelivery without a date keeps the stored period
	default:
		end := nextPeriod(now)
		out.CurrentPeriodEnd = &end
	}

	out.Status = status
	if status == models.SubscriptionStatusActive {
		out.IsTrial = false
	}
	if pre.NextPaymentDate != nil {
		next := pre.NextPaymentDate.UTC()
		out.NextPaymentDate = &next
	}
	if id := pre.ID.String(); id != "" {
		out.ExternalPreapprovalID = &id
	}
	if payer := pre.PayerID.String(); payer != "" {
		out.ExternalPayerID = &payer
	}
	if amount := pre.Amount(); !amount.IsZero() {
		out.Amount = amount
	}
	return out
}

// ApplyPayment returns a copy of sub reconciled against a payment. The
// second result is false for statuses that do not touch the subscription.
func ApplyPayment(sub *models.Subscription, p *mercadopago.Payment, now time.Time) (*models.Subscription, bool) {
	out := sub.Clone()
	switch p.Status {
	case models.ProviderPaymentApproved:
		start := now
		end := nextPeriod(now)
		paid := now
		if p.DateApproved != nil {
			paid = p.DateApproved.UTC()
		}
		out.Status = models.SubscriptionStatusActive
		out.IsTrial = false
		out.CurrentPeriodStart = &start
		out.CurrentPeriodEnd = &end
		out.LastPaymentDate = &paid
		return out, true
	case models.ProviderPaymentRejected:
		out.Status = models.SubscriptionStatusPending
		return out, true
	default:
		return out, false
	}
}
