package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syshair/backend/internal/mercadopago"
	"github.com/syshair/backend/internal/models"
)

func TestMapProviderStatus(t *testing.T) {
	tests := []struct {
		in   string
		want models.SubscriptionStatus
	}{
		{in: "authorized", want: models.SubscriptionStatusActive},
		{in: "pending", want: models.SubscriptionStatusPending},
		{in: "paused", want: models.SubscriptionStatusPending},
		{in: "cancelled", want: models.SubscriptionStatusCancelled},
		{in: "AUTHORIZED", want: models.SubscriptionStatusActive},
		{in: "", want: models.SubscriptionStatusPending},
		{in: "something_else", want: models.SubscriptionStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MapProviderStatus(tt.in))
		})
	}
}

func TestMapProviderStatusNeverExpires(t *testing.T) {
	for _, s := range []string{"authorized", "pending", "paused", "cancelled", "expired", "finished", "x"} {
		assert.NotEqual(t, models.SubscriptionStatusExpired, MapProviderStatus(s), s)
	}
}

func TestApplyPreapprovalUsesNextPaymentDate(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	next := now.AddDate(0, 0, 20)
	sub := &models.Subscription{Status: models.SubscriptionStatusTrial, IsTrial: true}
	pre := &mercadopago.Preapproval{
		ID:              "pre-1",
		Status:          "authorized",
		PayerID:         "77",
		NextPaymentDate: &next,
		AutoRecurring:   &mercadopago.AutoRecurring{TransactionAmount: decimal.RequireFromString("49.90")},
	}

	got := ApplyPreapproval(sub, pre, now)

	assert.Equal(t, models.SubscriptionStatusActive, got.Status)
	assert.False(t, got.IsTrial)
	require.NotNil(t, got.CurrentPeriodEnd)
	assert.True(t, got.CurrentPeriodEnd.Equal(next))
	assert.True(t, got.NextPaymentDate.Equal(next))
	assert.Equal(t, "pre-1", *got.ExternalPreapprovalID)
	assert.Equal(t, "77", *got.ExternalPayerID)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("49.90")))
	assert.Equal(t, models.SubscriptionStatusTrial, sub.Status, "input must not change")
}

func TestApplyPreapprovalDefaultsPeriodEnd(t *testing.T) {
	now := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	sub := &models.Subscription{Status: models.SubscriptionStatusActive}
	pre := &mercadopago.Preapproval{ID: "pre-1", Status: "paused"}

	got := ApplyPreapproval(sub, pre, now)

	assert.Equal(t, models.SubscriptionStatusPending, got.Status)
	require.NotNil(t, got.CurrentPeriodEnd)
	assert.True(t, got.CurrentPeriodEnd.Equal(now.AddDate(0, 1, 0)))
}

func TestApplyPreapprovalKeepsPeriodOnRedelivery(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 0, 5)
	id := "pre-1"
	sub := &models.Subscription{Status: models.SubscriptionStatusPending, CurrentPeriodEnd: &end, ExternalPreapprovalID: &id}
	pre := &mercadopago.Preapproval{ID: "pre-1", Status: "pending"}

	got := ApplyPreapproval(sub, pre, now.Add(time.Hour))

	assert.True(t, got.SameState(sub))
}

func TestApplyPayment(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	approvedAt := now.Add(-time.Minute)

	t.Run("approved activates a fresh period", func(t *testing.T) {
		sub := &models.Subscription{Status: models.SubscriptionStatusPending, IsTrial: true}
		got, changed := ApplyPayment(sub, &mercadopago.Payment{Status: "approved", DateApproved: &approvedAt}, now)

		require.True(t, changed)
		assert.Equal(t, models.SubscriptionStatusActive, got.Status)
		assert.False(t, got.IsTrial)
		assert.True(t, got.CurrentPeriodStart.Equal(now))
		assert.True(t, got.CurrentPeriodEnd.Equal(now.AddDate(0, 1, 0)))
		assert.True(t, got.LastPaymentDate.Equal(approvedAt))
	})

	t.Run("approved without date uses now", func(t *testing.T) {
		got, _ := ApplyPayment(&models.Subscription{}, &mercadopago.Payment{Status: "approved"}, now)
		assert.True(t, got.LastPaymentDate.Equal(now))
	})

	t.Run("rejected moves to pending", func(t *testing.T) {
		sub := &models.Subscription{Status: models.SubscriptionStatusActive}
		got, changed := ApplyPayment(sub, &mercadopago.Payment{Status: "rejected"}, now)

		require.True(t, changed)
		assert.Equal(t, models.SubscriptionStatusPending, got.Status)
	})

	t.Run("other statuses leave the subscription alone", func(t *testing.T) {
		sub := &models.Subscription{Status: models.SubscriptionStatusActive}
		got, changed := ApplyPayment(sub, &mercadopago.Payment{Status: "in_process"}, now)

		assert.False(t, changed)
		assert.True(t, got.SameState(sub))
	})
}
