package store

import (
	"context"
	"errors"

	"github.com/zairysbigtae/privdm-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrNameTaken = errors.New("name already taken")
)

// Store is the persistence adapter. Every method is a single atomic operation and safe
// for concurrent use by independent sessions.
type Store interface {
	// InsertUser inserts u only if no user with the same name exists; otherwise ErrNameTaken.
	// On success u.ID and u.JoinedAt are filled in.
	InsertUser(ctx context.Context, u *models.User) error
	FindUserByName(ctx context.Context, name string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	// AppendRoomToUser adds roomID to the user's room list unless it is already there.
	// Returns ErrNotFound when the user does not exist.
	AppendRoomToUser(ctx context.Context, userID, roomID int64) error

	InsertMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context) ([]models.Message, error)
	DeleteMessage(ctx context.Context, id int64) error

	InsertRoom(ctx context.Context, r *models.Room) error
	ListRooms(ctx context.Context) ([]models.Room, error)
	DeleteRoom(ctx context.Context, id int64) error
}
