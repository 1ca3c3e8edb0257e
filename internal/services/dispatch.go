package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/syshair/backend/internal/kafka"
	"github.com/syshair/backend/internal/metrics"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/internal/repository"
	"github.com/syshair/backend/pkg/logger"
)

const (
	// DefaultDispatchBatch caps each of the scheduled and pending selections.
	DefaultDispatchBatch = 100

	reasonUnsupported = "unsupported channel or missing phone"
)

// DispatchSummary is the result of one dispatch run.
type DispatchSummary struct {
	Scheduled int `json:"scheduled"`
	Pending   int `json:"pending"`
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	// AlreadyFinal counts rows another run finished first.
	AlreadyFinal int `json:"already_final"`
}

type deliveryOutcome int

const (
	deliverySent deliveryOutcome = iota
	deliveryFailed
	deliveryAlreadyFinal
)

// Dispatcher moves due notifications to a terminal status.
type Dispatcher struct {
	repo      repository.NotificationRepository
	senders   map[models.NotificationChannel]ChannelSender
	events    EventPublisher
	metrics   metrics.JobMetrics
	log       *logger.Logger
	batchSize int
	now       func() time.Time
}

func NewDispatcher(
	repo repository.NotificationRepository,
	senders []ChannelSender,
	events EventPublisher,
	m metrics.JobMetrics,
	log *logger.Logger,
	batchSize int,
) *Dispatcher {
	if batchSize <= 0 {
		batchSize = DefaultDispatchBatch
	}
	bySenderChannel := make(map[models.NotificationChannel]ChannelSender, len(senders))
	for _, s := range senders {
		bySenderChannel[s.Channel()] = s
	}
	return &Dispatcher{
		repo:      repo,
		senders:   bySenderChannel,
		events:    events,
		metrics:   m,
		log:       log,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run processes due scheduled rows and pending rows. A failure on one row
// never stops the loop; only selection errors are returned.
func (d *Dispatcher) Run(ctx context.Context) (DispatchSummary, error) {
	var summary DispatchSummary
	now := d.now()

	scheduled, err := d.repo.ListDueScheduled(ctx, now, d.batchSize)
	if err != nil {
		return summary, fmt.Errorf("dispatch: list scheduled: %w", err)
	}
	pending, err := d.repo.ListPending(ctx, d.batchSize)
	if err != nil {
		return summary, fmt.Errorf("dispatch: list pending: %w", err)
	}
	summary.Scheduled = len(scheduled)
	summary.Pending = len(pending)

	seen := make(map[string]bool, len(scheduled)+len(pending))
	for _, n := range append(scheduled, pending...) {
		if seen[n.ID.String()] {
			continue
		}
		seen[n.ID.String()] = true
		summary.Attempted++

		switch d.deliver(ctx, n) {
		case deliverySent:
			summary.Sent++
			d.metrics.AddNotifications(string(n.Channel), string(models.NotificationSent), 1)
		case deliveryFailed:
			summary.Failed++
			d.metrics.AddNotifications(string(n.Channel), string(models.NotificationFailed), 1)
		case deliveryAlreadyFinal:
			summary.AlreadyFinal++
		}
	}

	d.log.Infow("Notification dispatch finished",
		"scheduled", summary.Scheduled,
		"pending", summary.Pending,
		"attempted", summary.Attempted,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"alreadyFinal", summary.AlreadyFinal)

	publishEvent(ctx, d.events, d.log, kafka.TopicNotificationDispatched, "dispatch", kafka.NotificationDispatched{
		Scheduled:    summary.Scheduled,
		Pending:      summary.Pending,
		Attempted:    summary.Attempted,
		Sent:         summary.Sent,
		Failed:       summary.Failed,
		AlreadyFinal: summary.AlreadyFinal,
		FinishedAt:   d.now(),
	})
	return summary, nil
}

// deliver sends n and records the outcome. A panicking sender fails the row
// without stopping the batch.
func (d *Dispatcher) deliver(ctx context.Context, n models.Notification) (outcome deliveryOutcome) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorw("Notification sender panicked", "panic", r, "notificationID", n.ID, "channel", n.Channel)
			outcome = d.markFailed(ctx, n, fmt.Sprintf("sender panic: %v", r))
		}
	}()

	sender := d.senderFor(n)
	if sender == nil {
		return d.markFailed(ctx, n, reasonUnsupported)
	}

	if err := sender.Send(ctx, n); err != nil {
		d.log.Warnw("Notification send failed", "error", err, "notificationID", n.ID, "channel", n.Channel)
		return d.markFailed(ctx, n, err.Error())
	}

	if err := d.repo.MarkSent(ctx, n.ID, d.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			d.log.Warnw("Notification already finalized", "notificationID", n.ID)
			return deliveryAlreadyFinal
		}
		d.log.Errorw("Failed to mark notification sent", "error", err, "notificationID", n.ID)
		return deliveryFailed
	}
	return deliverySent
}

func (d *Dispatcher) senderFor(n models.Notification) ChannelSender {
	switch n.Channel {
	case models.ChannelWhatsApp:
		if !n.HasPhone() {
			return nil
		}
	case models.ChannelPush:
	default:
		return nil
	}
	return d.senders[n.Channel]
}

func (d *Dispatcher) markFailed(ctx context.Context, n models.Notification, reason string) deliveryOutcome {
	if err := d.repo.MarkFailed(ctx, n.ID, reason); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			d.log.Warnw("Notification already finalized", "notificationID", n.ID)
			return deliveryAlreadyFinal
		}
		d.log.Errorw("Failed to mark notification failed", "error", err, "notificationID", n.ID)
	}
	return deliveryFailed
}
