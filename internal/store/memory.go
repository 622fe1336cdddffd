package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/zairysbigtae/privdm-backend/internal/models"
)

// Memory is an in-process Store for tests and local runs. A single mutex makes every
// operation atomic.
type Memory struct {
	mu       sync.Mutex
	users    map[int64]models.User
	messages map[int64]models.Message
	rooms    map[int64]models.Room
	nextID   int64
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[int64]models.User),
		messages: make(map[int64]models.Message),
		rooms:    make(map[int64]models.Room),
		now:      time.Now,
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *Memory) InsertUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Name == u.Name {
			return ErrNameTaken
		}
	}
	u.ID = m.id()
	u.JoinedAt = m.now().UTC()
	u.RoomIDs = slices.Clone(u.RoomIDs)
	if u.RoomIDs == nil {
		u.RoomIDs = []int64{}
	}
	m.users[u.ID] = cloneUser(*u)
	return nil
}

func (m *Memory) FindUserByName(ctx context.Context, name string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Name == name {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (m *Memory) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, cloneUser(u))
	}
	slices.SortFunc(out, func(a, b models.User) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) DeleteUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *Memory) AppendRoomToUser(ctx context.Context, userID, roomID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	if !slices.Contains(u.RoomIDs, roomID) {
		u.RoomIDs = append(slices.Clone(u.RoomIDs), roomID)
		m.users[userID] = u
	}
	return nil
}

func (m *Memory) InsertMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = m.id()
	msg.SentAt = m.now().UTC()
	m.messages[msg.ID] = *msg
	return nil
}

func (m *Memory) ListMessages(ctx context.Context) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Message, 0, len(m.messages))
	for _, msg := range m.messages {
		out = append(out, msg)
	}
	slices.SortFunc(out, func(a, b models.Message) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) DeleteMessage(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.messages, id)
	return nil
}

func (m *Memory) InsertRoom(ctx context.Context, r *models.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.id()
	r.CreatedAt = m.now().UTC()
	m.rooms[r.ID] = *r
	return nil
}

func (m *Memory) ListRooms(ctx context.Context) ([]models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b models.Room) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) DeleteRoom(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
	return nil
}

func cloneUser(u models.User) models.User {
	u.RoomIDs = slices.Clone(u.RoomIDs)
	return u
}
