package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, parsed from the environment.
type Config struct {
	HTTPAddr      string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel      slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	MongoURI      string     `env:"MONGODB_CONNECTION_STRING" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string     `env:"MONGODB_DATABASE" envDefault:"vulture"`
	RedisAddr     string     `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// Signing keys shared with the auth provider. Access tokens presented by
	// users are verified with AccessTokenKey; game-scoped credentials are
	// minted with the same pair.
	AccessTokenKey  string `env:"ACCESS_TOKEN_KEY" envDefault:"AT"`
	RefreshTokenKey string `env:"REFRESH_TOKEN_KEY" envDefault:"RT"`

	// External deadline scheduler used for automatic end-game triggers.
	// Leave SchedulerBaseURL empty to disable scheduling entirely (games
	// with a duration then run until stopped manually).
	SchedulerBaseURL     string `env:"SCHEDULER_BASE_URL"`
	SchedulerGroup       string `env:"SCHEDULER_GROUP_NAME" envDefault:"vulture"`
	SchedulerCallbackURL string `env:"SCHEDULER_CALLBACK_URL"`
	TriggerSharedKey     string `env:"TRIGGER_SHARED_KEY"`

	// Hard caps carried over from the hosted deployment.
	MaxTasks   int `env:"MAX_TASKS" envDefault:"20"`
	MaxPlayers int `env:"MAX_PLAYERS" envDefault:"100"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
