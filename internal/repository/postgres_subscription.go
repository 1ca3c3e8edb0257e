package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/pkg/logger"
)

const subscriptionColumns = `
	id, salon_id, status, is_trial, current_period_start, current_period_end,
	next_payment_date, last_payment_date, amount, external_preapproval_id,
	external_payer_id, external_reference, created_at, updated_at`

// postgresSubscriptionRepo implements SubscriptionRepository on PostgreSQL.
type postgresSubscriptionRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresSubscriptionRepository creates the PostgreSQL subscription repository.
func NewPostgresSubscriptionRepository(db *sqlx.DB, log *logger.Logger) SubscriptionRepository {
	return &postgresSubscriptionRepo{db: db, log: log}
}

func (r *postgresSubscriptionRepo) GetBySalonID(ctx context.Context, salonID uuid.UUID) (*models.Subscription, error) {
	return r.getOne(ctx, "salon_id = $1", salonID)
}

func (r *postgresSubscriptionRepo) GetByPreapprovalID(ctx context.Context, preapprovalID string) (*models.Subscription, error) {
	return r.getOne(ctx, "external_preapproval_id = $1", preapprovalID)
}

func (r *postgresSubscriptionRepo) GetByExternalReference(ctx context.Context, reference string) (*models.Subscription, error) {
	return r.getOne(ctx, "external_reference = $1", reference)
}

func (r *postgresSubscriptionRepo) getOne(ctx context.Context, where string, arg any) (*models.Subscription, error) {
	var sub models.Subscription
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE ` + where + ` LIMIT 1`

	if err := r.db.GetContext(ctx, &sub, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debugw("Subscription not found", "where", where, "arg", arg)
			return nil, ErrNotFound
		}
		r.log.Errorw("Failed to get subscription", "error", err, "where", where)
		return nil, fmt.Errorf("repository: failed to get subscription: %w", err)
	}
	return &sub, nil
}

// Update writes the reconciled fields. Identity columns are never touched.
func (r *postgresSubscriptionRepo) Update(ctx context.Context, sub *models.Subscription) error {
	sub.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE subscriptions SET
			status = :status,
			is_trial = :is_trial,
			current_period_start = :current_period_start,
			current_period_end = :current_period_end,
			next_payment_date = :next_payment_date,
			last_payment_date = :last_payment_date,
			amount = :amount,
			external_preapproval_id = :external_preapproval_id,
			external_payer_id = :external_payer_id,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		r.log.Errorw("Failed to update subscription", "error", err, "subscriptionID", sub.ID)
		return fmt.Errorf("repository: failed to update subscription: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: rows affected: %w", err)
	}
	if rows == 0 {
		r.log.Warnw("Subscription update affected 0 rows", "subscriptionID", sub.ID)
		return ErrNotFound
	}

	r.log.Debugw("Subscription updated", "subscriptionID", sub.ID, "status", sub.Status)
	return nil
}
