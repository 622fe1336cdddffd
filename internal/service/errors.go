package service

import (
	"errors"

	"github.com/zairysbigtae/privdm-backend/internal/apperr"
	"github.com/zairysbigtae/privdm-backend/internal/store"
)

// Client-facing errors. Handlers map them by kind; see apperr.HTTPStatus.
var (
	ErrNameTaken          = apperr.Conflict("account name already taken")
	ErrInvalidCredentials = apperr.Unauthorized("invalid credentials")
	ErrInvalidRefresh     = apperr.Unauthorized("invalid refresh token")
	ErrUserNotFound       = apperr.NotFound("user")
)

// storeErr classifies an error coming back from the store. Anything unrecognised is internal.
func storeErr(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, store.ErrNameTaken):
		return ErrNameTaken
	default:
		return apperr.Internal(err)
	}
}
