package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zairysbigtae/privdm-backend/internal/apperr"
	"github.com/zairysbigtae/privdm-backend/internal/auth"
	"github.com/zairysbigtae/privdm-backend/internal/models"
	"github.com/zairysbigtae/privdm-backend/internal/store"
)

const (
	maxNameLen = 64
	maxPassLen = 1024
)

// UserService implements the account lifecycle and the user commands of the command channel.
type UserService struct {
	store  store.Store
	secret string
	now    func() time.Time
}

func NewUserService(st store.Store, secret string) *UserService {
	return &UserService{store: st, secret: secret, now: time.Now}
}

// Signup creates the account and returns a fresh token pair for it.
func (s *UserService) Signup(ctx context.Context, name, pass string) (*auth.TokenPair, error) {
	user, err := s.Create(ctx, name, pass)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login verifies the password and issues a token pair. An unknown name and a wrong
// password are indistinguishable to the caller; a corrupt stored hash is internal.
func (s *UserService) Login(ctx context.Context, name, pass string) (*auth.TokenPair, error) {
	user, err := s.store.FindUserByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, storeErr(err, ErrInvalidCredentials)
	}
	ok, err := auth.VerifyPassword(pass, user.PassHash)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("verify password for user %d: %w", user.ID, err))
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Refresh exchanges a valid refresh token for a new pair, provided the account still exists.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := auth.ParseToken(refreshToken, s.secret, auth.TypeRefresh)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	user, err := s.store.FindUserByName(ctx, claims.Name)
	if err != nil {
		return nil, storeErr(err, ErrInvalidRefresh)
	}
	return s.issue(user)
}

func (s *UserService) LookupByID(ctx context.Context, id int64) (*models.PublicUser, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound)
	}
	pub := user.Public()
	return &pub, nil
}

func (s *UserService) LookupByName(ctx context.Context, name string) (*models.PublicUser, error) {
	user, err := s.store.FindUserByName(ctx, name)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound)
	}
	pub := user.Public()
	return &pub, nil
}

// Create hashes pass and inserts the account if the name is free.
func (s *UserService) Create(ctx context.Context, name, pass string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if err := validateCredentials(name, pass); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(pass)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	user := &models.User{Name: name, PassHash: hash}
	if err := s.store.InsertUser(ctx, user); err != nil {
		return nil, storeErr(err, nil)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	return users, storeErr(err, nil)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return storeErr(s.store.DeleteUser(ctx, id), nil)
}

// AttachRoom records roomID in the user's room list; attaching twice is a no-op.
func (s *UserService) AttachRoom(ctx context.Context, userID, roomID int64) error {
	err := s.store.AppendRoomToUser(ctx, userID, roomID)
	return storeErr(err, apperr.NotFound(fmt.Sprintf("user %d", userID)))
}

func (s *UserService) issue(user *models.User) (*auth.TokenPair, error) {
	pair, err := auth.IssueTokenPair(user.Name, s.secret, s.now())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	pair.UserID = user.ID
	return pair, nil
}

func validateCredentials(name, pass string) error {
	switch {
	case name == "":
		return apperr.Validation("account name must not be empty")
	case utf8.RuneCountInString(name) > maxNameLen:
		return apperr.Validation(fmt.Sprintf("account name must be at most %d characters", maxNameLen))
	case pass == "":
		return apperr.Validation("password must not be empty")
	case len(pass) > maxPassLen:
		return apperr.Validation(fmt.Sprintf("password must be at most %d bytes", maxPassLen))
	case !utf8.ValidString(name) || !utf8.ValidString(pass):
		return apperr.Validation("account name and password must be valid UTF-8")
	}
	return nil
}
