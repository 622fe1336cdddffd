package store

import (
	"context"
	"errors"

	"github.com/zairysbigtae/privdm-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const appendRoomSQL = `
UPDATE users
SET room_ids = CASE WHEN ?::bigint = ANY(room_ids) THEN room_ids ELSE array_append(room_ids, ?::bigint) END
WHERE id = ?`

// Gorm is the Postgres-backed Store.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

var _ Store = (*Gorm)(nil)

func (s *Gorm) InsertUser(ctx context.Context, u *models.User) error {
	if u.RoomIDs == nil {
		u.RoomIDs = []int64{}
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(u)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNameTaken
	}
	return nil
}

func (s *Gorm) FindUserByName(ctx context.Context, name string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&u).Error
	return handleNotFound(&u, err)
}

func (s *Gorm) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	return handleNotFound(&u, err)
}

func (s *Gorm) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Gorm) DeleteUser(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&models.User{}, id).Error
}

func (s *Gorm) AppendRoomToUser(ctx context.Context, userID, roomID int64) error {
	res := s.db.WithContext(ctx).Exec(appendRoomSQL, roomID, roomID, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) InsertMessage(ctx context.Context, m *models.Message) error {
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *Gorm) ListMessages(ctx context.Context) ([]models.Message, error) {
	msgs := []models.Message{}
	if err := s.db.WithContext(ctx).Order("id").Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Gorm) DeleteMessage(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&models.Message{}, id).Error
}

func (s *Gorm) InsertRoom(ctx context.Context, r *models.Room) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *Gorm) ListRooms(ctx context.Context) ([]models.Room, error) {
	rooms := []models.Room{}
	if err := s.db.WithContext(ctx).Order("id").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *Gorm) DeleteRoom(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&models.Room{}, id).Error
}

func handleNotFound[T any](result *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
