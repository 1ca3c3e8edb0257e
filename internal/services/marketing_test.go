package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syshair/backend/internal/kafka"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/internal/repository"
	"github.com/syshair/backend/internal/repository/memory"
	"github.com/syshair/backend/pkg/logger"
)

type marketingFixture struct {
	service       *MarketingService
	notifications *memory.NotificationStore
	events        *recordingPublisher
	salonID       uuid.UUID
	ana           models.Client
	bruno         models.Client
	carla         models.Client
}

func newMarketingFixture() *marketingFixture {
	salonID := uuid.New()
	ana := models.Client{ID: uuid.New(), SalonID: salonID, Name: "Ana Souza", Phone: strPtr("11999990000")}
	bruno := models.Client{ID: uuid.New(), SalonID: salonID, Name: "Bruno", Phone: strPtr("  ")}
	carla := models.Client{ID: uuid.New(), SalonID: salonID, Name: "Carla Lima"}

	push := memory.NewPushStore(models.PushSubscription{
		ID:       uuid.New(),
		SalonID:  salonID,
		ClientID: &carla.ID,
		FCMToken: strPtr("token-carla"),
	})
	notifications := memory.NewNotificationStore()
	events := &recordingPublisher{}
	svc := NewMarketingService(memory.NewClientStore(ana, bruno, carla), push, notifications, events, newJobMetrics(), logger.NewNop())
	svc.now = fixedClock

	return &marketingFixture{
		service:       svc,
		notifications: notifications,
		events:        events,
		salonID:       salonID,
		ana:           ana,
		bruno:         bruno,
		carla:         carla,
	}
}

func TestBroadcastWhatsApp(t *testing.T) {
	f := newMarketingFixture()
	missing := uuid.New()

	res, err := f.service.Broadcast(context.Background(), BroadcastRequest{
		SalonID:   f.salonID,
		ClientIDs: []uuid.UUID{f.ana.ID, f.bruno.ID, missing, f.ana.ID},
		Message:   "Oi {nome}, temos novidades!",
		Channel:   models.ChannelWhatsApp,
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, res.Total, res.Sent+res.Failed+res.Skipped)

	byClient := map[uuid.UUID]RecipientResult{}
	for _, r := range res.Results {
		byClient[r.ClientID] = r
	}
	assert.Equal(t, RecipientSent, byClient[f.ana.ID].Status)
	assert.Equal(t, RecipientSkipped, byClient[f.bruno.ID].Status)
	assert.Equal(t, RecipientFailed, byClient[missing].Status)
	assert.Equal(t, "client not found", byClient[missing].Error)

	rows := f.notifications.All()
	require.Len(t, rows, 1)
	assert.Equal(t, "Oi Ana, temos novidades!", rows[0].Message)
	assert.Equal(t, models.NotificationPending, rows[0].Status)
	assert.Equal(t, "marketing", rows[0].Type)
	assert.Equal(t, "11999990000", *rows[0].Phone)
	assert.Equal(t, []string{kafka.TopicMarketingBroadcast}, f.events.topics())
}

func TestBroadcastPushNeedsSubscription(t *testing.T) {
	f := newMarketingFixture()

	res, err := f.service.Broadcast(context.Background(), BroadcastRequest{
		SalonID:   f.salonID,
		ClientIDs: []uuid.UUID{f.ana.ID, f.carla.ID},
		Title:     strPtr("Promoção"),
		Message:   "{nome}, 20% off hoje",
		Channel:   models.ChannelPush,
		Type:      "promo",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Skipped)

	rows := f.notifications.All()
	require.Len(t, rows, 1)
	assert.Equal(t, f.carla.ID, *rows[0].ClientID)
	assert.Equal(t, "Carla, 20% off hoje", rows[0].Message)
	assert.Equal(t, "promo", rows[0].Type)
	assert.Nil(t, rows[0].Phone)
}

func TestBroadcastValidation(t *testing.T) {
	f := newMarketingFixture()
	base := BroadcastRequest{SalonID: f.salonID, ClientIDs: []uuid.UUID{f.ana.ID}, Message: "oi", Channel: models.ChannelWhatsApp}

	cases := map[string]func(r *BroadcastRequest){
		"no salon":      func(r *BroadcastRequest) { r.SalonID = uuid.Nil },
		"no clients":    func(r *BroadcastRequest) { r.ClientIDs = nil },
		"blank message": func(r *BroadcastRequest) { r.Message = "  " },
		"bad channel":   func(r *BroadcastRequest) { r.Channel = "sms" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := base
			mutate(&req)
			_, err := f.service.Broadcast(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Empty(t, f.notifications.All())
}

type failingNotifications struct {
	repository.NotificationRepository
}

func (failingNotifications) Create(context.Context, *models.Notification) error {
	return errors.New("insert failed")
}

func TestBroadcastInsertFailureIsPerClient(t *testing.T) {
	f := newMarketingFixture()
	f.service.notifications = failingNotifications{}

	res, err := f.service.Broadcast(context.Background(), BroadcastRequest{
		SalonID:   f.salonID,
		ClientIDs: []uuid.UUID{f.ana.ID},
		Message:   "oi",
		Channel:   models.ChannelWhatsApp,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "insert failed", res.Results[0].Error)
}

func TestPersonalize(t *testing.T) {
	c := models.Client{Name: "  Maria   da Silva "}
	assert.Equal(t, "Olá Maria! Maria, volte sempre", Personalize("Olá {nome}! {nome}, volte sempre", c))
	assert.Equal(t, "sem nome", Personalize("sem nome", c))
}
