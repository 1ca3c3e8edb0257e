package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/syshair/backend/internal/kafka"
	"github.com/syshair/backend/internal/metrics"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/internal/repository"
	"github.com/syshair/backend/pkg/logger"
)

const (
	defaultBroadcastType = "marketing"
	firstNamePlaceholder = "{nome}"
)

// Per-recipient broadcast results.
const (
	RecipientSent    = "sent"
	RecipientFailed  = "failed"
	RecipientSkipped = "skipped"
)

// BroadcastRequest is a marketing message addressed to a list of clients.
type BroadcastRequest struct {
	SalonID   uuid.UUID                  `json:"salon_id" validate:"required"`
	ClientIDs []uuid.UUID                `json:"client_ids" validate:"required,min=1"`
	Title     *string                    `json:"title"`
	Message   string                     `json:"message" validate:"required"`
	Channel   models.NotificationChannel `json:"channel" validate:"required,oneof=whatsapp push"`
	Type      string                     `json:"type"`
}

// RecipientResult is the outcome for one client.
type RecipientResult struct {
	ClientID uuid.UUID `json:"client_id"`
	Status   string    `json:"status"`
	Error    string    `json:"error,omitempty"`
}

// BroadcastResult is the response of a broadcast.
type BroadcastResult struct {
	Success bool              `json:"success"`
	Total   int               `json:"total"`
	Sent    int               `json:"sent"`
	Failed  int               `json:"failed"`
	Skipped int               `json:"skipped"`
	Results []RecipientResult `json:"results"`
}

// MarketingService queues personalised messages as pending notifications
// for the dispatch job.
type MarketingService struct {
	clients       repository.ClientRepository
	push          repository.PushSubscriptionRepository
	notifications repository.NotificationRepository
	events        EventPublisher
	metrics       metrics.JobMetrics
	log           *logger.Logger
	now           func() time.Time
}

func NewMarketingService(
	clients repository.ClientRepository,
	push repository.PushSubscriptionRepository,
	notifications repository.NotificationRepository,
	events EventPublisher,
	m metrics.JobMetrics,
	log *logger.Logger,
) *MarketingService {
	return &MarketingService{
		clients:       clients,
		push:          push,
		notifications: notifications,
		events:        events,
		metrics:       m,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func validateBroadcast(req *BroadcastRequest) error {
	switch {
	case req.SalonID == uuid.Nil:
		return fmt.Errorf("%w: salon_id is required", ErrInvalidInput)
	case len(req.ClientIDs) == 0:
		return fmt.Errorf("%w: client_ids must not be empty", ErrInvalidInput)
	case strings.TrimSpace(req.Message) == "":
		return fmt.Errorf("%w: message is required", ErrInvalidInput)
	case req.Channel != models.ChannelWhatsApp && req.Channel != models.ChannelPush:
		return fmt.Errorf("%w: unsupported channel %q", ErrInvalidInput, req.Channel)
	}
	return nil
}

// Broadcast queues one notification per reachable client. Per-client
// failures are reported in the result; only lookups that fail for the whole
// batch return an error.
func (s *MarketingService) Broadcast(ctx context.Context, req BroadcastRequest) (*BroadcastResult, error) {
	if err := validateBroadcast(&req); err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = defaultBroadcastType
	}
	ids := uniqueIDs(req.ClientIDs)

	clients, err := s.clients.GetByIDs(ctx, req.SalonID, ids)
	if err != nil {
		return nil, fmt.Errorf("broadcast: load clients: %w", err)
	}
	var withPush map[uuid.UUID]bool
	if req.Channel == models.ChannelPush {
		if withPush, err = s.push.ClientsWithPush(ctx, req.SalonID, ids); err != nil {
			return nil, fmt.Errorf("broadcast: load push subscriptions: %w", err)
		}
	}

	result := &BroadcastResult{Success: true, Total: len(ids), Results: make([]RecipientResult, 0, len(ids))}
	for _, id := range ids {
		r := s.queue(ctx, req, id, clients, withPush)
		switch r.Status {
		case RecipientSent:
			result.Sent++
		case RecipientFailed:
			result.Failed++
		case RecipientSkipped:
			result.Skipped++
		}
		s.metrics.IncBroadcastResult(string(req.Channel), r.Status)
		result.Results = append(result.Results, r)
	}

	s.log.Infow("Marketing broadcast queued",
		"salonID", req.SalonID, "channel", req.Channel,
		"total", result.Total, "sent", result.Sent, "failed", result.Failed, "skipped", result.Skipped)

	publishEvent(ctx, s.events, s.log, kafka.TopicMarketingBroadcast, req.SalonID.String(), kafka.MarketingBroadcast{
		SalonID:    req.SalonID,
		Channel:    string(req.Channel),
		Total:      result.Total,
		Sent:       result.Sent,
		Failed:     result.Failed,
		Skipped:    result.Skipped,
		OccurredAt: s.now(),
	})
	return result, nil
}

func (s *MarketingService) queue(ctx context.Context, req BroadcastRequest, id uuid.UUID, clients map[uuid.UUID]models.Client, withPush map[uuid.UUID]bool) RecipientResult {
	client, ok := clients[id]
	if !ok {
		return RecipientResult{ClientID: id, Status: RecipientFailed, Error: "client not found"}
	}

	n := &models.Notification{
		SalonID:  req.SalonID,
		ClientID: &client.ID,
		Type:     req.Type,
		Channel:  req.Channel,
		Title:    req.Title,
		Message:  Personalize(req.Message, client),
		Status:   models.NotificationPending,
	}
	switch req.Channel {
	case models.ChannelWhatsApp:
		if !client.HasPhone() {
			return RecipientResult{ClientID: id, Status: RecipientSkipped, Error: "client has no phone"}
		}
		phone := strings.TrimSpace(*client.Phone)
		n.Phone = &phone
	case models.ChannelPush:
		if !withPush[id] {
			return RecipientResult{ClientID: id, Status: RecipientSkipped, Error: "client has no push subscription"}
		}
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		s.log.Errorw("Failed to queue marketing notification", "error", err, "clientID", id)
		return RecipientResult{ClientID: id, Status: RecipientFailed, Error: err.Error()}
	}
	return RecipientResult{ClientID: id, Status: RecipientSent}
}

// Personalize replaces {nome} with the client's first name.
func Personalize(message string, c models.Client) string {
	return strings.ReplaceAll(message, firstNamePlaceholder, c.FirstName())
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
