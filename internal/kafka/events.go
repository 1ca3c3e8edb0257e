package kafka

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatusChanged is emitted when reconciliation moves a
// subscription to a different status.
type SubscriptionStatusChanged struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	SalonID        uuid.UUID `json:"salon_id"`
	PreviousStatus string    `json:"previous_status"`
	Status         string    `json:"status"`
	Source         string    `json:"source"` // preapproval or payment
	ExternalID     string    `json:"external_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NotificationDispatched summarises one dispatch run.
type NotificationDispatched struct {
	Scheduled    int       `json:"scheduled"`
	Pending      int       `json:"pending"`
	Attempted    int       `json:"attempted"`
	Sent         int       `json:"sent"`
	Failed       int       `json:"failed"`
	AlreadyFinal int       `json:"already_final"`
	FinishedAt   time.Time `json:"finished_at"`
}

// MarketingBroadcast summarises one broadcast request.
type MarketingBroadcast struct {
	SalonID    uuid.UUID `json:"salon_id"`
	Channel    string    `json:"channel"`
	Total      int       `json:"total"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	OccurredAt time.Time `json:"occurred_at"`
}
