package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/pkg/logger"
)

const notificationColumns = `
	id, salon_id, client_id, appointment_id, type, channel, title, message,
	phone, status, scheduled_for, sent_at, error_message, created_at`

type postgresNotificationRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresNotificationRepository creates the notification repository.
func NewPostgresNotificationRepository(db *sqlx.DB, log *logger.Logger) NotificationRepository {
	return &postgresNotificationRepo{db: db, log: log}
}

func (r *postgresNotificationRepo) ListDueScheduled(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	var out []models.Notification
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE status = 'scheduled' AND scheduled_for <= $1
		ORDER BY scheduled_for
		LIMIT $2`
	if err := r.db.SelectContext(ctx, &out, query, now, limit); err != nil {
		r.log.Errorw("Failed to list scheduled notifications", "error", err)
		return nil, fmt.Errorf("repository: failed to list scheduled notifications: %w", err)
	}
	return out, nil
}

func (r *postgresNotificationRepo) ListPending(ctx context.Context, limit int) ([]models.Notification, error) {
	var out []models.Notification
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1`
	if err := r.db.SelectContext(ctx, &out, query, limit); err != nil {
		r.log.Errorw("Failed to list pending notifications", "error", err)
		return nil, fmt.Errorf("repository: failed to list pending notifications: %w", err)
	}
	return out, nil
}

func (r *postgresNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO notifications (
			id, salon_id, client_id, appointment_id, type, channel, title, message,
			phone, status, scheduled_for, created_at
		) VALUES (
			:id, :salon_id, :client_id, :appointment_id, :type, :channel, :title, :message,
			:phone, :status, :scheduled_for, :created_at
		)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		r.log.Errorw("Failed to insert notification", "error", err, "salonID", n.SalonID)
		return fmt.Errorf("repository: failed to insert notification: %w", err)
	}
	return nil
}

func (r *postgresNotificationRepo) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := `UPDATE notifications SET status = 'sent', sent_at = $2, error_message = NULL
		WHERE id = $1 AND status IN ('pending', 'scheduled')`
	return r.transition(ctx, id, query, id, sentAt)
}

func (r *postgresNotificationRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `UPDATE notifications SET status = 'failed', error_message = $2
		WHERE id = $1 AND status IN ('pending', 'scheduled')`
	return r.transition(ctx, id, query, id, reason)
}

func (r *postgresNotificationRepo) transition(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.Errorw("Failed to update notification", "error", err, "notificationID", id)
		return fmt.Errorf("repository: failed to update notification: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
