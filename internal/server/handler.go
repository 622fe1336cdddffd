package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/zairysbigtae/privdm-backend/internal/apperr"
	"github.com/zairysbigtae/privdm-backend/internal/auth"
	"github.com/zairysbigtae/privdm-backend/internal/models"
)

// AccountService is the account lifecycle the HTTP surface exposes.
type AccountService interface {
	Signup(ctx context.Context, name, pass string) (*auth.TokenPair, error)
	Login(ctx context.Context, name, pass string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	LookupByID(ctx context.Context, id int64) (*models.PublicUser, error)
	LookupByName(ctx context.Context, name string) (*models.PublicUser, error)
}

type Handler struct {
	accounts AccountService
}

func NewHandler(accounts AccountService) *Handler {
	return &Handler{accounts: accounts}
}

type credentials struct {
	Name string `json:"name"`
	Pass string `json:"pass"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	pair, err := h.accounts.Signup(c.Request.Context(), req.Name, req.Pass)
	if err != nil {
		writeError(c, err)
		return
	}
	log.Info().Int64("user_id", pair.UserID).Msg("account created")
	c.JSON(http.StatusCreated, pair)
}

func (h *Handler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	pair, err := h.accounts.Login(c.Request.Context(), req.Name, req.Pass)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	pair, err := h.accounts.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Lookup resolves ?id= or ?name= to the public account record. id wins when both are set.
func (h *Handler) Lookup(c *gin.Context) {
	var (
		user *models.PublicUser
		err  error
	)
	switch idStr, name := c.Query("id"), c.Query("name"); {
	case idStr != "":
		id, perr := strconv.ParseInt(idStr, 10, 64)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		user, err = h.accounts.LookupByID(c.Request.Context(), id)
	case name != "":
		user, err = h.accounts.LookupByName(c.Request.Context(), name)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "id or name is required"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(apperr.HTTPStatus(kind), gin.H{"error": apperr.Message(err)})
}
