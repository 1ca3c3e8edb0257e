package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/pkg/logger"
)

type postgresGoalRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresGoalRepository creates the goal repository.
func NewPostgresGoalRepository(db *sqlx.DB, log *logger.Logger) GoalRepository {
	return &postgresGoalRepo{db: db, log: log}
}

func (r *postgresGoalRepo) ListActive(ctx context.Context) ([]models.Goal, error) {
	var goals []models.Goal
	query := `
		SELECT id, salon_id, professional_id, title, type, target_value, current_value,
		       start_date, end_date, status, updated_at
		FROM goals
		WHERE status = 'active'
		ORDER BY end_date`
	if err := r.db.SelectContext(ctx, &goals, query); err != nil {
		r.log.Errorw("Failed to list active goals", "error", err)
		return nil, fmt.Errorf("repository: failed to list active goals: %w", err)
	}
	return goals, nil
}

func (r *postgresGoalRepo) UpdateProgress(ctx context.Context, id uuid.UUID, current decimal.Decimal, status models.GoalStatus) error {
	query := `UPDATE goals SET current_value = $2, status = $3, updated_at = $4 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, current, status, time.Now().UTC())
	if err != nil {
		r.log.Errorw("Failed to update goal", "error", err, "goalID", id)
		return fmt.Errorf("repository: failed to update goal: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

type postgresStatsRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresStatsRepository creates the aggregation repository used by goals.
func NewPostgresStatsRepository(db *sqlx.DB, log *logger.Logger) StatsRepository {
	return &postgresStatsRepo{db: db, log: log}
}

// professionalFilter is appended to every aggregation; a NULL professional
// selects the whole salon.
const professionalFilter = ` AND ($4::uuid IS NULL OR professional_id = $4::uuid)`

func (r *postgresStatsRepo) SumCompletedRevenue(ctx context.Context, w models.GoalWindow) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `
		SELECT COALESCE(SUM(total_price), 0) FROM appointments
		WHERE salon_id = $1 AND status = 'completed'
		  AND start_time >= $2 AND start_time <= $3` + professionalFilter
	if err := r.db.GetContext(ctx, &sum, query, w.SalonID, w.From, w.To, w.ProfessionalID); err != nil {
		return decimal.Zero, fmt.Errorf("repository: revenue aggregation: %w", err)
	}
	return sum, nil
}

func (r *postgresStatsRepo) CountCompletedAppointments(ctx context.Context, w models.GoalWindow) (int64, error) {
	var n int64
	query := `
		SELECT COUNT(*) FROM appointments
		WHERE salon_id = $1 AND status = 'completed'
		  AND start_time >= $2 AND start_time <= $3` + professionalFilter
	if err := r.db.GetContext(ctx, &n, query, w.SalonID, w.From, w.To, w.ProfessionalID); err != nil {
		return 0, fmt.Errorf("repository: appointment aggregation: %w", err)
	}
	return n, nil
}

func (r *postgresStatsRepo) CountNewClients(ctx context.Context, w models.GoalWindow) (int64, error) {
	var n int64
	// clients are salon-wide; the professional scope does not apply
	query := `
		SELECT COUNT(*) FROM clients
		WHERE salon_id = $1 AND created_at >= $2 AND created_at <= $3`
	if err := r.db.GetContext(ctx, &n, query, w.SalonID, w.From, w.To); err != nil {
		return 0, fmt.Errorf("repository: new clients aggregation: %w", err)
	}
	return n, nil
}

func (r *postgresStatsRepo) AverageRating(ctx context.Context, w models.GoalWindow) (decimal.Decimal, error) {
	var avg decimal.Decimal
	query := `
		SELECT COALESCE(ROUND(AVG(rating)::numeric, 2), 0) FROM reviews
		WHERE salon_id = $1 AND created_at >= $2 AND created_at <= $3` + professionalFilter
	if err := r.db.GetContext(ctx, &avg, query, w.SalonID, w.From, w.To, w.ProfessionalID); err != nil {
		return decimal.Zero, fmt.Errorf("repository: rating aggregation: %w", err)
	}
	return avg, nil
}
