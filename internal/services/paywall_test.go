package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/internal/repository"
	"github.com/syshair/backend/internal/repository/memory"
	"github.com/syshair/backend/pkg/logger"
)

func TestEvaluate(t *testing.T) {
	future := testNow.Add(10 * 24 * time.Hour)
	soon := testNow.Add(2*24*time.Hour + time.Hour)
	past := testNow.Add(-time.Hour)

	tests := []struct {
		name    string
		sub     *models.Subscription
		view    View
		days    int
		warning bool
	}{
		{name: "missing row", sub: nil, view: ViewExpired},
		{name: "active", sub: &models.Subscription{Status: models.SubscriptionStatusActive, CurrentPeriodEnd: &future}, view: ViewContent, days: 10},
		{name: "trial with time left", sub: &models.Subscription{Status: models.SubscriptionStatusTrial, IsTrial: true, CurrentPeriodEnd: &future}, view: ViewContent, days: 10},
		{name: "trial ending soon warns", sub: &models.Subscription{Status: models.SubscriptionStatusTrial, IsTrial: true, CurrentPeriodEnd: &soon}, view: ViewContent, days: 3, warning: true},
		{name: "trial over", sub: &models.Subscription{Status: models.SubscriptionStatusTrial, IsTrial: true, CurrentPeriodEnd: &past}, view: ViewTrialExpired},
		{name: "trial flag wins over pending", sub: &models.Subscription{Status: models.SubscriptionStatusPending, IsTrial: true, CurrentPeriodEnd: &future}, view: ViewTrialExpired, days: 10},
		{name: "active trial row past its end", sub: &models.Subscription{Status: models.SubscriptionStatusActive, IsTrial: true, CurrentPeriodEnd: &past}, view: ViewTrialExpired},
		{name: "active trial row without end", sub: &models.Subscription{Status: models.SubscriptionStatusActive, IsTrial: true}, view: ViewTrialExpired},
		{name: "active trial row ending soon warns", sub: &models.Subscription{Status: models.SubscriptionStatusActive, IsTrial: true, CurrentPeriodEnd: &soon}, view: ViewContent, days: 3, warning: true},
		{name: "expired", sub: &models.Subscription{Status: models.SubscriptionStatusExpired}, view: ViewExpired},
		{name: "cancelled", sub: &models.Subscription{Status: models.SubscriptionStatusCancelled}, view: ViewExpired},
		{name: "pending", sub: &models.Subscription{Status: models.SubscriptionStatusPending}, view: ViewPendingPayment},
		{name: "blocked", sub: &models.Subscription{Status: models.SubscriptionStatusBlocked}, view: ViewBlocked},
		{name: "active paid salon never warns", sub: &models.Subscription{Status: models.SubscriptionStatusActive, CurrentPeriodEnd: &soon}, view: ViewContent, days: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.sub, testNow)
			assert.Equal(t, tt.view, got.View)
			assert.Equal(t, tt.view == ViewContent, got.Allowed)
			assert.Equal(t, tt.days, got.DaysRemaining)
			assert.Equal(t, tt.warning, got.ShowTrialWarning)
		})
	}
}

func TestEvaluateEndedTrialWithActiveStatus(t *testing.T) {
	end := testNow.Add(-48 * time.Hour)
	got := Evaluate(&models.Subscription{Status: models.SubscriptionStatusActive, IsTrial: true, CurrentPeriodEnd: &end}, testNow)

	assert.Equal(t, Access{View: ViewTrialExpired, TrialExpired: true}, got)
}

func TestEvaluateWarningThreshold(t *testing.T) {
	for days, warn := range map[int]bool{1: true, 3: true, 4: false, 30: false} {
		end := testNow.Add(time.Duration(days) * 24 * time.Hour)
		sub := &models.Subscription{Status: models.SubscriptionStatusTrial, IsTrial: true, CurrentPeriodEnd: &end}
		got := Evaluate(sub, testNow)
		assert.Equal(t, days, got.DaysRemaining)
		assert.Equal(t, warn, got.ShowTrialWarning, "days=%d", days)
	}
}

func TestDaysRemaining(t *testing.T) {
	assert.Equal(t, 0, daysRemaining(nil, testNow))
	assert.Equal(t, 0, daysRemaining(timePtr(testNow.Add(-48*time.Hour)), testNow))
	assert.Equal(t, 1, daysRemaining(timePtr(testNow.Add(time.Minute)), testNow))
	assert.Equal(t, 2, daysRemaining(timePtr(testNow.Add(25*time.Hour)), testNow))
}

func TestSubscriptionServiceRecheckBypassesCache(t *testing.T) {
	sub := &models.Subscription{ID: uuid.New(), SalonID: uuid.New(), Status: models.SubscriptionStatusPending}
	store := memory.NewSubscriptionStore(sub)
	cache := memory.NewSubscriptionCache()
	cached := repository.NewCachedSubscriptionRepository(store, cache, logger.NewNop())
	svc := NewSubscriptionService(cached, logger.NewNop())
	svc.now = fixedClock
	ctx := context.Background()

	report, err := svc.Status(ctx, sub.SalonID)
	require.NoError(t, err)
	assert.Equal(t, ViewPendingPayment, report.Access.View)

	// the provider activates the subscription behind the cache's back
	activated := sub.Clone()
	activated.Status = models.SubscriptionStatusActive
	store.Put(activated)

	report, err = svc.Status(ctx, sub.SalonID)
	require.NoError(t, err)
	assert.Equal(t, ViewPendingPayment, report.Access.View)

	report, err = svc.Recheck(ctx, sub.SalonID)
	require.NoError(t, err)
	assert.Equal(t, ViewContent, report.Access.View)
}

func TestSubscriptionServiceMissingRow(t *testing.T) {
	svc := NewSubscriptionService(memory.NewSubscriptionStore(), logger.NewNop())

	report, err := svc.Status(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Nil(t, report.Subscription)
	assert.Equal(t, ViewExpired, report.Access.View)
}
