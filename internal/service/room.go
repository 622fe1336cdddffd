package service

import (
	"context"
	"strings"

	"github.com/zairysbigtae/privdm-backend/internal/apperr"
	"github.com/zairysbigtae/privdm-backend/internal/models"
	"github.com/zairysbigtae/privdm-backend/internal/store"
)

const maxRoomNameLen = 128

type RoomService struct {
	store store.Store
}

func NewRoomService(st store.Store) *RoomService {
	return &RoomService{store: st}
}

func (s *RoomService) Create(ctx context.Context, name string) (*models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("room name must not be empty")
	}
	if len(name) > maxRoomNameLen {
		return nil, apperr.Validation("room name is too long")
	}
	room := &models.Room{Name: name}
	if err := s.store.InsertRoom(ctx, room); err != nil {
		return nil, storeErr(err, nil)
	}
	return room, nil
}

func (s *RoomService) List(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.store.ListRooms(ctx)
	return rooms, storeErr(err, nil)
}

// Delete removes the room. Deleting an unknown id succeeds.
func (s *RoomService) Delete(ctx context.Context, id int64) error {
	return storeErr(s.store.DeleteRoom(ctx, id), nil)
}
