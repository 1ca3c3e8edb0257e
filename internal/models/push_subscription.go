package models

import (
	"time"

	"github.com/google/uuid"
)

// PushSubscription is a browser Web Push subscription or an FCM token.
type PushSubscription struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	SalonID   uuid.UUID  `db:"salon_id" json:"salon_id"`
	ClientID  *uuid.UUID `db:"client_id" json:"client_id,omitempty"`
	Endpoint  *string    `db:"endpoint" json:"endpoint,omitempty"`
	P256dh    *string    `db:"p256dh" json:"p256dh,omitempty"`
	Auth      *string    `db:"auth" json:"auth,omitempty"`
	FCMToken  *string    `db:"fcm_token" json:"fcm_token,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// IsWebPush reports whether the full endpoint/p256dh/auth triple is present.
func (p *PushSubscription) IsWebPush() bool {
	return nonEmpty(p.Endpoint) && nonEmpty(p.P256dh) && nonEmpty(p.Auth)
}

// IsUsable reports whether the subscription can receive a push.
func (p *PushSubscription) IsUsable() bool {
	return p.IsWebPush() || nonEmpty(p.FCMToken)
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}
