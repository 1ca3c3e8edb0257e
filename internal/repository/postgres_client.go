package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/pkg/logger"
)

type postgresClientRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresClientRepository creates the client repository.
func NewPostgresClientRepository(db *sqlx.DB, log *logger.Logger) ClientRepository {
	return &postgresClientRepo{db: db, log: log}
}

func (r *postgresClientRepo) GetByIDs(ctx context.Context, salonID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Client, error) {
	out := make(map[uuid.UUID]models.Client, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var clients []models.Client
	query := `
		SELECT id, salon_id, name, phone, email, created_at
		FROM clients
		WHERE salon_id = $1 AND id = ANY($2::uuid[])`
	if err := r.db.SelectContext(ctx, &clients, query, salonID, uuidStrings(ids)); err != nil {
		r.log.Errorw("Failed to load clients", "error", err, "salonID", salonID, "count", len(ids))
		return nil, fmt.Errorf("repository: failed to load clients: %w", err)
	}
	for _, c := range clients {
		out[c.ID] = c
	}
	return out, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
