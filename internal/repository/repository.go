package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/syshair/backend/internal/models"
)

// SubscriptionRepository reads and writes salon subscriptions.
type SubscriptionRepository interface {
	// GetBySalonID returns the salon's subscription or ErrNotFound.
	GetBySalonID(ctx context.Context, salonID uuid.UUID) (*models.Subscription, error)

	// GetByPreapprovalID looks up by the provider's preapproval id.
	GetByPreapprovalID(ctx context.Context, preapprovalID string) (*models.Subscription, error)

	// GetByExternalReference looks up by the reference sent to the provider
	// at checkout (the salon id).
	GetByExternalReference(ctx context.Context, reference string) (*models.Subscription, error)

	// Update writes the reconciled fields of sub.
	Update(ctx context.Context, sub *models.Subscription) error
}

// PaymentRepository stores the payment audit trail.
type PaymentRepository interface {
	// Exists reports whether the provider payment was already recorded with status.
	Exists(ctx context.Context, externalPaymentID, status string) (bool, error)

	// Create appends a record. Returns ErrDuplicate when the (payment, status)
	// pair is already stored.
	Create(ctx context.Context, p *models.PaymentRecord) error
}

// NotificationRepository backs the dispatch job and marketing broadcasts.
type NotificationRepository interface {
	ListDueScheduled(ctx context.Context, now time.Time, limit int) ([]models.Notification, error)
	ListPending(ctx context.Context, limit int) ([]models.Notification, error)
	Create(ctx context.Context, n *models.Notification) error

	// MarkSent and MarkFailed only touch rows that are still pending or
	// scheduled; they return ErrNotFound otherwise.
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// ClientRepository reads salon clients.
type ClientRepository interface {
	// GetByIDs returns the clients of salonID among ids, keyed by id.
	GetByIDs(ctx context.Context, salonID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Client, error)
}

// PushSubscriptionRepository stores push endpoints and FCM tokens.
type PushSubscriptionRepository interface {
	Upsert(ctx context.Context, p *models.PushSubscription) error

	// ClientsWithPush returns the subset of clientIDs holding a usable push subscription.
	ClientsWithPush(ctx context.Context, salonID uuid.UUID, clientIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// GoalRepository reads and updates goals.
type GoalRepository interface {
	ListActive(ctx context.Context) ([]models.Goal, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, current decimal.Decimal, status models.GoalStatus) error
}

// StatsRepository runs the aggregation queries behind goals.
type StatsRepository interface {
	SumCompletedRevenue(ctx context.Context, w models.GoalWindow) (decimal.Decimal, error)
	CountCompletedAppointments(ctx context.Context, w models.GoalWindow) (int64, error)
	CountNewClients(ctx context.Context, w models.GoalWindow) (int64, error)
	AverageRating(ctx context.Context, w models.GoalWindow) (decimal.Decimal, error)
}
