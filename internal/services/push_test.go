package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syshair/backend/internal/repository/memory"
	"github.com/syshair/backend/pkg/logger"
)

func TestRegisterPush(t *testing.T) {
	store := memory.NewPushStore()
	svc := NewPushService(store, logger.NewNop())
	salonID := uuid.New()
	clientID := uuid.New()
	ctx := context.Background()

	first, err := svc.Register(ctx, PushRegistration{SalonID: salonID, ClientID: &clientID, FCMToken: strPtr("tok")})
	require.NoError(t, err)

	again, err := svc.Register(ctx, PushRegistration{SalonID: salonID, ClientID: &clientID, FCMToken: strPtr("tok")})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, store.Subs, 1)

	web, err := svc.Register(ctx, PushRegistration{
		SalonID:  salonID,
		Endpoint: strPtr("https://push.example.com/abc"),
		P256dh:   strPtr("key"),
		Auth:     strPtr("secret"),
	})
	require.NoError(t, err)
	assert.True(t, web.IsWebPush())
	assert.Len(t, store.Subs, 2)

	withPush, err := store.ClientsWithPush(ctx, salonID, []uuid.UUID{clientID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{clientID: true}, withPush)
}

func TestRegisterPushRejectsIncomplete(t *testing.T) {
	svc := NewPushService(memory.NewPushStore(), logger.NewNop())

	_, err := svc.Register(context.Background(), PushRegistration{SalonID: uuid.New(), Endpoint: strPtr("https://push.example.com/abc")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(context.Background(), PushRegistration{FCMToken: strPtr("tok")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
