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

type postgresPushRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresPushSubscriptionRepository creates the push subscription repository.
func NewPostgresPushSubscriptionRepository(db *sqlx.DB, log *logger.Logger) PushSubscriptionRepository {
	return &postgresPushRepo{db: db, log: log}
}

// Upsert inserts p, or refreshes the keys of the row holding the same
// endpoint or FCM token.
func (r *postgresPushRepo) Upsert(ctx context.Context, p *models.PushSubscription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()

	conflict := "(endpoint) WHERE endpoint IS NOT NULL"
	if !p.IsWebPush() {
		conflict = "(fcm_token) WHERE fcm_token IS NOT NULL"
	}
	query := `
		INSERT INTO push_subscriptions (id, salon_id, client_id, endpoint, p256dh, auth, fcm_token, created_at)
		VALUES (:id, :salon_id, :client_id, :endpoint, :p256dh, :auth, :fcm_token, :created_at)
		ON CONFLICT ` + conflict + ` DO UPDATE SET
			salon_id = EXCLUDED.salon_id,
			client_id = EXCLUDED.client_id,
			p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		r.log.Errorw("Failed to upsert push subscription", "error", err, "salonID", p.SalonID)
		return fmt.Errorf("repository: failed to upsert push subscription: %w", err)
	}
	return nil
}

func (r *postgresPushRepo) ClientsWithPush(ctx context.Context, salonID uuid.UUID, clientIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool)
	if len(clientIDs) == 0 {
		return out, nil
	}

	var ids []uuid.UUID
	query := `
		SELECT DISTINCT client_id FROM push_subscriptions
		WHERE salon_id = $1
		  AND client_id = ANY($2::uuid[])
		  AND (fcm_token IS NOT NULL OR (endpoint IS NOT NULL AND p256dh IS NOT NULL AND auth IS NOT NULL))`
	if err := r.db.SelectContext(ctx, &ids, query, salonID, uuidStrings(clientIDs)); err != nil {
		r.log.Errorw("Failed to load push subscriptions", "error", err, "salonID", salonID)
		return nil, fmt.Errorf("repository: failed to load push subscriptions: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
