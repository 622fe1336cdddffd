package service

import (
	"context"

	"github.com/zairysbigtae/privdm-backend/internal/apperr"
	"github.com/zairysbigtae/privdm-backend/internal/models"
	"github.com/zairysbigtae/privdm-backend/internal/store"
)

type MessageService struct {
	store store.Store
}

func NewMessageService(st store.Store) *MessageService {
	return &MessageService{store: st}
}

// Create stores a message with no room or author attached; the command channel only
// collects the content.
func (s *MessageService) Create(ctx context.Context, content string) (*models.Message, error) {
	if content == "" {
		return nil, apperr.Validation("message content must not be empty")
	}
	msg := &models.Message{Content: content}
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		return nil, storeErr(err, nil)
	}
	return msg, nil
}

func (s *MessageService) List(ctx context.Context) ([]models.Message, error) {
	msgs, err := s.store.ListMessages(ctx)
	return msgs, storeErr(err, nil)
}

func (s *MessageService) Delete(ctx context.Context, id int64) error {
	return storeErr(s.store.DeleteMessage(ctx, id), nil)
}
