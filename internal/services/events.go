package services

import (
	"context"
	"time"

	"github.com/syshair/backend/pkg/logger"
)

// EventPublisher is the subset of kafka.Producer the services use.
// A nil publisher disables event publishing.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// publishEvent never fails the caller; publishing is best effort.
func publishEvent(ctx context.Context, p EventPublisher, log *logger.Logger, topic, key string, payload any) {
	if p == nil {
		log.Debugw("Kafka producer not available, skipping event", "topic", topic, "key", key)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := p.Publish(pubCtx, topic, key, payload); err != nil {
		log.Errorw("Failed to publish event", "error", err, "topic", topic, "key", key)
	}
}
