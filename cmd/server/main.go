package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zairysbigtae/privdm-backend/internal/command"
	"github.com/zairysbigtae/privdm-backend/internal/config"
	"github.com/zairysbigtae/privdm-backend/internal/db"
	clog "github.com/zairysbigtae/privdm-backend/internal/log"
	"github.com/zairysbigtae/privdm-backend/internal/mw"
	"github.com/zairysbigtae/privdm-backend/internal/redis"
	"github.com/zairysbigtae/privdm-backend/internal/server"
	"github.com/zairysbigtae/privdm-backend/internal/service"
	"github.com/zairysbigtae/privdm-backend/internal/store"
	"github.com/zairysbigtae/privdm-backend/internal/ws"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	clog.Init(cfg.Env, cfg.LogLevel)
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("failed to open store")
	}
	defer closeStore()

	loginLimiter := mw.LoginLimiter(mw.NewMemoryLoginLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow))
	if cfg.RedisURL != "" {
		rc, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rc.Close()
		loginLimiter = mw.NewRedisLoginLimiter(rc.Client, cfg.LoginMaxAttempts, cfg.LoginWindow)
		log.Info().Msg("redis connected")
	}

	rl := mw.NewRateLimiter(rate.Every(time.Second/20), 40, 2*time.Minute)
	go rl.Run(30 * time.Second)
	defer rl.Stop()

	users := service.NewUserService(st, cfg.JWTSecret)
	commands := command.NewRouter(users, service.NewRoomService(st), service.NewMessageService(st))
	hub := ws.NewHub()

	engine := server.SetupRouter(cfg, server.Deps{
		Accounts:     users,
		Commands:     commands,
		Hub:          hub,
		LoginLimiter: loginLimiter,
		RateLimiter:  rl,
	})
	srv := server.NewHTTPServer(cfg, engine)

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := hub.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Int("open", hub.Online()).Msg("command channels still open")
	}
	log.Info().Msg("server stopped")
}

func openStore(cfg config.Config) (store.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return store.NewMemory(), func() {}, nil
	}
	gdb, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, err
	}
	log.Info().Msg("database connected")
	return store.NewGorm(gdb), func() { _ = sqlDB.Close() }, nil
}
