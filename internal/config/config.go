package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

// Config is loaded once at startup and passed by value; nothing mutates it afterwards.
type Config struct {
	Port             string        `env:"APP_PORT" envDefault:"8080"`
	DatabaseDSN      string        `env:"DATABASE_URL"`
	JWTSecret        string        `env:"JWT_SECRET,required,notEmpty"`
	Env              string        `env:"APP_ENV" envDefault:"dev"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	Store            string        `env:"STORE" envDefault:"postgres"`
	RedisURL         string        `env:"REDIS_URL"`
	PromptTimeout    time.Duration `env:"PROMPT_TIMEOUT" envDefault:"0s"`
	WSRequireAuth    bool          `env:"WS_REQUIRE_AUTH" envDefault:"false"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW" envDefault:"1m"`
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("APP_PORT must not be empty")
	}
	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseDSN == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.Store)
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if cfg.PromptTimeout < 0 {
		return errors.New("PROMPT_TIMEOUT must not be negative")
	}
	if cfg.LoginMaxAttempts <= 0 || cfg.LoginWindow <= 0 {
		return errors.New("LOGIN_MAX_ATTEMPTS and LOGIN_WINDOW must be positive")
	}
	if cfg.Env != "dev" {
		if err := validateSecret("JWT_SECRET", cfg.JWTSecret); err != nil {
			return err
		}
		if !cfg.WSRequireAuth {
			log.Warn().Msg("WS_REQUIRE_AUTH is off: any client can read and mutate all users, rooms and messages over /ws")
		}
	}
	return nil
}

func validateSecret(name, value string) error {
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret outside dev", name)
		}
	}
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters outside dev", name)
	}
	return nil
}
