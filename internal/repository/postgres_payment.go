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

type postgresPaymentRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresPaymentRepository creates the payment audit repository.
func NewPostgresPaymentRepository(db *sqlx.DB, log *logger.Logger) PaymentRepository {
	return &postgresPaymentRepo{db: db, log: log}
}

func (r *postgresPaymentRepo) Exists(ctx context.Context, externalPaymentID, status string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM subscription_payments
			WHERE external_payment_id = $1 AND external_status = $2
		)`
	if err := r.db.GetContext(ctx, &exists, query, externalPaymentID, status); err != nil {
		r.log.Errorw("Failed to check payment record", "error", err, "externalPaymentID", externalPaymentID)
		return false, fmt.Errorf("repository: failed to check payment record: %w", err)
	}
	return exists, nil
}

func (r *postgresPaymentRepo) Create(ctx context.Context, p *models.PaymentRecord) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO subscription_payments (
			id, subscription_id, external_payment_id, external_status,
			external_status_detail, amount, currency, payment_method, paid_at, created_at
		) VALUES (
			:id, :subscription_id, :external_payment_id, :external_status,
			:external_status_detail, :amount, :currency, :payment_method, :paid_at, :created_at
		)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		r.log.Errorw("Failed to insert payment record", "error", err, "externalPaymentID", p.ExternalPaymentID)
		return fmt.Errorf("repository: failed to insert payment record: %w", err)
	}
	r.log.Debugw("Payment record inserted", "externalPaymentID", p.ExternalPaymentID, "status", p.ExternalStatus)
	return nil
}
