package models

import (
	"time"

	"github.com/lib/pq"
)

type User struct {
	ID       int64         `gorm:"primaryKey" json:"id"`
	Name     string        `gorm:"uniqueIndex;size:64;not null" json:"name"`
	PassHash string        `gorm:"column:pass_hash;not null" json:"-"`
	RoomIDs  pq.Int64Array `gorm:"column:room_ids;type:bigint[];not null;default:'{}'" json:"room_ids"`
	JoinedAt time.Time     `gorm:"autoCreateTime" json:"joined_at"`
}

// PublicUser is the account record exposed by lookups. It never carries the hash.
type PublicUser struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, JoinedAt: u.JoinedAt}
}

type Room struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:128;not null" json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type Message struct {
	ID      int64     `gorm:"primaryKey" json:"id"`
	Content string    `gorm:"type:text;not null" json:"content"`
	RoomID  *int64    `gorm:"index" json:"room_id"`
	UserID  *int64    `gorm:"index" json:"user_id"`
	SentAt  time.Time `gorm:"autoCreateTime" json:"sent_at"`
}
