package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/internal/repository"
	"github.com/syshair/backend/pkg/logger"
)

// View is what the client should render for a salon.
type View string

const (
	ViewContent        View = "content"
	ViewTrialExpired   View = "trial_expired"
	ViewExpired        View = "expired"
	ViewPendingPayment View = "pending_payment"
	ViewBlocked        View = "blocked"
)

// trialWarningDays is the remaining-days threshold for the trial banner.
const trialWarningDays = 3

// Access is the gating decision for one subscription.
type Access struct {
	View             View `json:"view"`
	Allowed          bool `json:"allowed"`
	DaysRemaining    int  `json:"days_remaining"`
	ShowTrialWarning bool `json:"show_trial_warning"`
	TrialExpired     bool `json:"trial_expired"`
}

// Evaluate decides access for sub at now. A nil subscription is treated as
// expired. Trial expiry is computed here and never written back.
func Evaluate(sub *models.Subscription, now time.Time) Access {
	if sub == nil {
		return Access{View: ViewExpired}
	}

	days := daysRemaining(sub.CurrentPeriodEnd, now)
	inTrial := sub.IsTrial || sub.Status == models.SubscriptionStatusTrial
	// trial rows grant access only until their period end
	trialStatus := sub.Status == models.SubscriptionStatusTrial ||
		(sub.IsTrial && sub.Status == models.SubscriptionStatusActive)
	trialActive := trialStatus && sub.CurrentPeriodEnd != nil && now.Before(*sub.CurrentPeriodEnd)
	active := (sub.Status == models.SubscriptionStatusActive && !sub.IsTrial) || trialActive

	access := Access{
		DaysRemaining: days,
		TrialExpired:  inTrial && !active,
	}
	if active {
		access.View = ViewContent
		access.Allowed = true
		access.ShowTrialWarning = inTrial && days <= trialWarningDays
		return access
	}

	switch {
	case inTrial:
		access.View = ViewTrialExpired
	case sub.Status == models.SubscriptionStatusExpired, sub.Status == models.SubscriptionStatusCancelled:
		access.View = ViewExpired
	case sub.Status == models.SubscriptionStatusPending:
		access.View = ViewPendingPayment
	case sub.Status == models.SubscriptionStatusBlocked:
		access.View = ViewBlocked
	default:
		access.View = ViewExpired
	}
	return access
}

// daysRemaining rounds up to whole days and never goes below zero.
func daysRemaining(end *time.Time, now time.Time) int {
	if end == nil {
		return 0
	}
	d := end.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// SubscriptionStatusReport is the payload of the subscription endpoints.
type SubscriptionStatusReport struct {
	Subscription *models.Subscription `json:"subscription"`
	Access       Access               `json:"access"`
}

// subscriptionRefresher is implemented by repositories with a cache in front.
type subscriptionRefresher interface {
	Refresh(ctx context.Context, salonID uuid.UUID) (*models.Subscription, error)
}

// SubscriptionService answers gating questions for a salon.
type SubscriptionService struct {
	subs repository.SubscriptionRepository
	log  *logger.Logger
	now  func() time.Time
}

func NewSubscriptionService(subs repository.SubscriptionRepository, log *logger.Logger) *SubscriptionService {
	return &SubscriptionService{
		subs: subs,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Status returns the salon's subscription and access decision.
func (s *SubscriptionService) Status(ctx context.Context, salonID uuid.UUID) (*SubscriptionStatusReport, error) {
	sub, err := s.subs.GetBySalonID(ctx, salonID)
	return s.report(salonID, sub, err)
}

// Recheck re-reads the row from the store, skipping any cache. Backs the
// "check again" action on the pending-payment view.
func (s *SubscriptionService) Recheck(ctx context.Context, salonID uuid.UUID) (*SubscriptionStatusReport, error) {
	var (
		sub *models.Subscription
		err error
	)
	if r, ok := s.subs.(subscriptionRefresher); ok {
		sub, err = r.Refresh(ctx, salonID)
	} else {
		sub, err = s.subs.GetBySalonID(ctx, salonID)
	}
	return s.report(salonID, sub, err)
}

func (s *SubscriptionService) report(salonID uuid.UUID, sub *models.Subscription, err error) (*SubscriptionStatusReport, error) {
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Errorw("Failed to load subscription", "error", err, "salonID", salonID)
		return nil, fmt.Errorf("subscription status: %w", err)
	}
	if errors.Is(err, repository.ErrNotFound) {
		sub = nil
	}
	return &SubscriptionStatusReport{
		Subscription: sub,
		Access:       Evaluate(sub, s.now()),
	}, nil
}
