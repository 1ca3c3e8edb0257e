package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/pkg/logger"
)

const (
	salonSubscriptionKeyPrefix = "subscription:salon:"

	defaultCacheTTL = 5 * time.Minute
)

// RedisCacheRepository caches subscription rows for gating reads.
type RedisCacheRepository struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		log.Errorw("Failed to connect to Redis", "error", err, "addr", addr)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infow("Connected to Redis", "addr", addr)
	return client, nil
}

// NewRedisCacheRepository wraps an existing client.
func NewRedisCacheRepository(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisCacheRepository {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCacheRepository{client: client, ttl: ttl, log: log}
}

func salonKey(salonID uuid.UUID) string {
	return salonSubscriptionKeyPrefix + salonID.String()
}

// CacheSubscription stores sub under its salon id.
func (r *RedisCacheRepository) CacheSubscription(ctx context.Context, sub *models.Subscription) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription: %w", err)
	}
	if err := r.client.Set(ctx, salonKey(sub.SalonID), data, r.ttl).Err(); err != nil {
		r.log.Errorw("Failed to cache subscription", "error", err, "salonID", sub.SalonID)
		return fmt.Errorf("failed to cache subscription: %w", err)
	}
	return nil
}

// GetCachedSubscription returns nil, nil on a cache miss.
func (r *RedisCacheRepository) GetCachedSubscription(ctx context.Context, salonID uuid.UUID) (*models.Subscription, error) {
	data, err := r.client.Get(ctx, salonKey(salonID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription from cache: %w", err)
	}

	var sub models.Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached subscription: %w", err)
	}
	return &sub, nil
}

// DeleteCachedSubscription invalidates the salon's entry.
func (r *RedisCacheRepository) DeleteCachedSubscription(ctx context.Context, salonID uuid.UUID) error {
	if err := r.client.Del(ctx, salonKey(salonID)).Err(); err != nil {
		r.log.Errorw("Failed to delete subscription from cache", "error", err, "salonID", salonID)
		return fmt.Errorf("failed to delete subscription from cache: %w", err)
	}
	return nil
}
