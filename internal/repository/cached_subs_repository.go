package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/pkg/logger"
)

// SubscriptionCache is the cache surface used by CachedSubscriptionRepository.
type SubscriptionCache interface {
	CacheSubscription(ctx context.Context, sub *models.Subscription) error
	GetCachedSubscription(ctx context.Context, salonID uuid.UUID) (*models.Subscription, error)
	DeleteCachedSubscription(ctx context.Context, salonID uuid.UUID) error
}

// CachedSubscriptionRepository serves salon lookups from the cache and
// invalidates on every write. Provider-id lookups always go to the store.
type CachedSubscriptionRepository struct {
	repo  SubscriptionRepository
	cache SubscriptionCache
	log   *logger.Logger
}

// NewCachedSubscriptionRepository decorates repo with cache.
func NewCachedSubscriptionRepository(repo SubscriptionRepository, cache SubscriptionCache, log *logger.Logger) *CachedSubscriptionRepository {
	return &CachedSubscriptionRepository{repo: repo, cache: cache, log: log}
}

func (r *CachedSubscriptionRepository) GetBySalonID(ctx context.Context, salonID uuid.UUID) (*models.Subscription, error) {
	cached, err := r.cache.GetCachedSubscription(ctx, salonID)
	if err != nil {
		// a broken cache degrades to store reads
		r.log.Warnw("Error reading subscription from cache", "error", err, "salonID", salonID)
	}
	if cached != nil {
		return cached, nil
	}

	sub, err := r.repo.GetBySalonID(ctx, salonID)
	if err != nil {
		return nil, err
	}
	if err := r.cache.CacheSubscription(ctx, sub); err != nil {
		r.log.Warnw("Failed to cache subscription after fetching", "error", err, "salonID", salonID)
	}
	return sub, nil
}

// Refresh bypasses the cache, reloads the row and re-populates the entry.
func (r *CachedSubscriptionRepository) Refresh(ctx context.Context, salonID uuid.UUID) (*models.Subscription, error) {
	if err := r.cache.DeleteCachedSubscription(ctx, salonID); err != nil {
		r.log.Warnw("Failed to invalidate subscription cache", "error", err, "salonID", salonID)
	}
	return r.GetBySalonID(ctx, salonID)
}

func (r *CachedSubscriptionRepository) GetByPreapprovalID(ctx context.Context, preapprovalID string) (*models.Subscription, error) {
	return r.repo.GetByPreapprovalID(ctx, preapprovalID)
}

func (r *CachedSubscriptionRepository) GetByExternalReference(ctx context.Context, reference string) (*models.Subscription, error) {
	return r.repo.GetByExternalReference(ctx, reference)
}

func (r *CachedSubscriptionRepository) Update(ctx context.Context, sub *models.Subscription) error {
	if err := r.repo.Update(ctx, sub); err != nil {
		return err
	}
	if err := r.cache.DeleteCachedSubscription(ctx, sub.SalonID); err != nil {
		r.log.Warnw("Failed to invalidate subscription cache after update", "error", err, "salonID", sub.SalonID)
	}
	return nil
}
