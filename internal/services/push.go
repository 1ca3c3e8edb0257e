package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/internal/repository"
	"github.com/syshair/backend/pkg/logger"
)

// PushRegistration is a browser Web Push subscription or an FCM token.
type PushRegistration struct {
	SalonID  uuid.UUID  `json:"salon_id" validate:"required"`
	ClientID *uuid.UUID `json:"client_id"`
	Endpoint *string    `json:"endpoint" validate:"omitempty,url"`
	P256dh   *string    `json:"p256dh"`
	Auth     *string    `json:"auth"`
	FCMToken *string    `json:"fcm_token"`
}

type PushService struct {
	repo repository.PushSubscriptionRepository
	log  *logger.Logger
}

func NewPushService(repo repository.PushSubscriptionRepository, log *logger.Logger) *PushService {
	return &PushService{repo: repo, log: log}
}

// Register stores or refreshes a push subscription keyed by endpoint or token.
func (s *PushService) Register(ctx context.Context, reg PushRegistration) (*models.PushSubscription, error) {
	if reg.SalonID == uuid.Nil {
		return nil, fmt.Errorf("%w: salon_id is required", ErrInvalidInput)
	}
	sub := &models.PushSubscription{
		SalonID:  reg.SalonID,
		ClientID: reg.ClientID,
		Endpoint: reg.Endpoint,
		P256dh:   reg.P256dh,
		Auth:     reg.Auth,
		FCMToken: reg.FCMToken,
	}
	if !sub.IsUsable() {
		return nil, fmt.Errorf("%w: fcm_token or endpoint, p256dh and auth are required", ErrInvalidInput)
	}
	if !sub.IsWebPush() {
		// a partial Web Push triple is dropped in favour of the token
		sub.Endpoint, sub.P256dh, sub.Auth = nil, nil, nil
	}

	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("push registration: %w", err)
	}
	s.log.Infow("Push subscription registered", "salonID", sub.SalonID, "id", sub.ID, "webPush", sub.IsWebPush())
	return sub, nil
}
