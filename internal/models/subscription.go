package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubscriptionStatus is the local subscription vocabulary.
type SubscriptionStatus string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "trial"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusBlocked   SubscriptionStatus = "blocked"
)

// Subscription is the salon's billing row. One per salon.
type Subscription struct {
	ID                    uuid.UUID          `db:"id" json:"id"`
	SalonID               uuid.UUID          `db:"salon_id" json:"salon_id"`
	Status                SubscriptionStatus `db:"status" json:"status"`
	IsTrial               bool               `db:"is_trial" json:"is_trial"`
	CurrentPeriodStart    *time.Time         `db:"current_period_start" json:"current_period_start,omitempty"`
	CurrentPeriodEnd      *time.Time         `db:"current_period_end" json:"current_period_end,omitempty"`
	NextPaymentDate       *time.Time         `db:"next_payment_date" json:"next_payment_date,omitempty"`
	LastPaymentDate       *time.Time         `db:"last_payment_date" json:"last_payment_date,omitempty"`
	Amount                decimal.Decimal    `db:"amount" json:"amount"`
	ExternalPreapprovalID *string            `db:"external_preapproval_id" json:"external_preapproval_id,omitempty"`
	ExternalPayerID       *string            `db:"external_payer_id" json:"external_payer_id,omitempty"`
	ExternalReference     *string            `db:"external_reference" json:"external_reference,omitempty"`
	CreatedAt             time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time          `db:"updated_at" json:"updated_at"`
}

// Clone returns a deep copy so callers can diff before/after states.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	c := *s
	c.CurrentPeriodStart = cloneTime(s.CurrentPeriodStart)
	c.CurrentPeriodEnd = cloneTime(s.CurrentPeriodEnd)
	c.NextPaymentDate = cloneTime(s.NextPaymentDate)
	c.LastPaymentDate = cloneTime(s.LastPaymentDate)
	c.ExternalPreapprovalID = cloneString(s.ExternalPreapprovalID)
	c.ExternalPayerID = cloneString(s.ExternalPayerID)
	c.ExternalReference = cloneString(s.ExternalReference)
	return &c
}

// SameState reports whether the fields written by reconciliation are equal.
// Timestamps maintained by the store are ignored.
func (s *Subscription) SameState(o *Subscription) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Status == o.Status &&
		s.IsTrial == o.IsTrial &&
		s.Amount.Equal(o.Amount) &&
		timeEqual(s.CurrentPeriodStart, o.CurrentPeriodStart) &&
		timeEqual(s.CurrentPeriodEnd, o.CurrentPeriodEnd) &&
		timeEqual(s.NextPaymentDate, o.NextPaymentDate) &&
		timeEqual(s.LastPaymentDate, o.LastPaymentDate) &&
		stringEqual(s.ExternalPreapprovalID, o.ExternalPreapprovalID) &&
		stringEqual(s.ExternalPayerID, o.ExternalPayerID) &&
		stringEqual(s.ExternalReference, o.ExternalReference)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func stringEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
