package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/internal/repository"
	"github.com/syshair/backend/internal/repository/memory"
	"github.com/syshair/backend/pkg/logger"
)

func TestCachedSubscriptionRepository(t *testing.T) {
	ctx := context.Background()
	salonID := uuid.New()
	sub := &models.Subscription{SalonID: salonID, Status: models.SubscriptionStatusPending}
	store := memory.NewSubscriptionStore(sub)
	cache := memory.NewSubscriptionCache()
	repo := repository.NewCachedSubscriptionRepository(store, cache, logger.NewNop())

	got, err := repo.GetBySalonID(ctx, salonID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusPending, got.Status)
	assert.Equal(t, 0, cache.Hits)

	_, err = repo.GetBySalonID(ctx, salonID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Hits, "second read is served from cache")

	got.Status = models.SubscriptionStatusActive
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetBySalonID(ctx, salonID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, got.Status, "update invalidates the entry")

	// a write that skips the decorator is only seen after a refresh
	direct := got.Clone()
	direct.Status = models.SubscriptionStatusCancelled
	require.NoError(t, store.Update(ctx, direct))

	got, err = repo.GetBySalonID(ctx, salonID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, got.Status)

	got, err = repo.Refresh(ctx, salonID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCancelled, got.Status)
}

func TestCachedSubscriptionRepositoryNotFound(t *testing.T) {
	repo := repository.NewCachedSubscriptionRepository(memory.NewSubscriptionStore(), memory.NewSubscriptionCache(), logger.NewNop())
	_, err := repo.GetBySalonID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
