package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zairysbigtae/privdm-backend/internal/apperr"
	"github.com/zairysbigtae/privdm-backend/internal/store"
)

func TestRoomService(t *testing.T) {
	svc := NewRoomService(store.NewMemory())
	ctx := context.Background()

	room, err := svc.Create(ctx, "  general ")
	require.NoError(t, err)
	assert.Equal(t, "general", room.Name)

	_, err = svc.Create(ctx, " ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	rooms, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)

	require.NoError(t, svc.Delete(ctx, room.ID))
	require.NoError(t, svc.Delete(ctx, room.ID))
	rooms, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestMessageService(t *testing.T) {
	svc := NewMessageService(store.NewMemory())
	ctx := context.Background()

	msg, err := svc.Create(ctx, "hello there")
	require.NoError(t, err)
	assert.Equal(t, "hello there", msg.Content)

	_, err = svc.Create(ctx, "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	msgs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	require.NoError(t, svc.Delete(ctx, msg.ID))
	msgs, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
