// Package config loads and validates the service configuration from the
// environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret signs bearer tokens; the service refuses to start without
	// one, and a short secret is treated as no secret at all.
	JWTSecret string `env:"JWT_SECRET" validate:"required,min=8"`

	// SessionTTL is the data-retention window: users idle longer than this
	// are deleted by the sweep.
	SessionTTL time.Duration `env:"SESSION_TTL, default=60m" validate:"gt=0"`
	// SweepInterval is how often the retention sweep runs.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL, default=5m" validate:"gt=0"`
	// StatusCacheTTL bounds the staleness of the cached /status aggregate.
	StatusCacheTTL time.Duration `env:"STATUS_CACHE_TTL, default=30s" validate:"gt=0"`

	// MaxTasksPerUser is advertised by the status endpoint. The cap is
	// declared but not enforced on task creation.
	MaxTasksPerUser int `env:"MAX_TASKS_PER_USER, default=100" validate:"gt=0"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017" validate:"required"`
	Database string `env:"MONGO_DB,  default=task_tracker" validate:"required"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379" validate:"required"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads the configuration from environment variables and validates it.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return &cfg, nil
}
