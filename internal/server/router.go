package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zairysbigtae/privdm-backend/internal/auth"
	"github.com/zairysbigtae/privdm-backend/internal/command"
	"github.com/zairysbigtae/privdm-backend/internal/config"
	"github.com/zairysbigtae/privdm-backend/internal/metrics"
	"github.com/zairysbigtae/privdm-backend/internal/mw"
	"github.com/zairysbigtae/privdm-backend/internal/ws"
)

type Deps struct {
	Accounts AccountService
	Commands *command.Router
	Hub      *ws.Hub
	// LoginLimiter defaults to an in-memory limiter built from the config.
	LoginLimiter mw.LoginLimiter
	// RateLimiter is optional; nil disables per-route rate limiting.
	RateLimiter *mw.RL
}

// SetupRouter wires middleware, the account endpoints and the command channel.
func SetupRouter(cfg config.Config, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.Env))
	if d.RateLimiter != nil {
		r.Use(mw.RateLimit(d.RateLimiter))
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	loginLimiter := d.LoginLimiter
	if loginLimiter == nil {
		loginLimiter = mw.NewMemoryLoginLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow)
	}

	h := NewHandler(d.Accounts)
	r.POST("/signup", h.Signup)
	r.POST("/login", mw.LoginLimit(loginLimiter), h.Login)
	r.POST("/refresh", h.Refresh)
	r.GET("/", h.Lookup)

	wsHandlers := []gin.HandlerFunc{ws.Serve(d.Hub, d.Commands, cfg.PromptTimeout)}
	if cfg.WSRequireAuth {
		wsHandlers = append([]gin.HandlerFunc{auth.RequireToken(cfg.JWTSecret)}, wsHandlers...)
	}
	r.GET("/ws", wsHandlers...)

	return r
}

// NewHTTPServer sets header and idle timeouts only. A WriteTimeout would also bound
// command channel connections.
func NewHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
