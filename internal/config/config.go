// Package config provides environment-based configuration.
//
// Loads from a .env file when present (godotenv), maps environment
// variables to the Config struct via go-simpler.org/env struct tags, and
// validates the result.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"4000"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	TopicCapacity     int           `env:"TOPIC_CAPACITY" default:"800"`
	KeepAliveInterval time.Duration `env:"KEEPALIVE_INTERVAL" default:"15s"`

	AssetsDir          string `env:"ASSETS_DIR" default:"web/static"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" default:"*"`

	MaxStreamConnections      int64   `env:"MAX_STREAM_CONNECTIONS" default:"10000"`
	MaxStreamConnectionsPerIP int     `env:"MAX_STREAM_CONNECTIONS_PER_IP" default:"32"`
	StreamConnectionRate      float64 `env:"STREAM_CONNECTION_RATE" default:"10"`
	StreamConnectionBurst     int     `env:"STREAM_CONNECTION_BURST" default:"20"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.TopicCapacity < 1 {
		return fmt.Errorf("TOPIC_CAPACITY must be at least 1, got %d", cfg.TopicCapacity)
	}
	if cfg.KeepAliveInterval < time.Second {
		return fmt.Errorf("KEEPALIVE_INTERVAL must be at least 1s, got %s", cfg.KeepAliveInterval)
	}
	if cfg.MaxStreamConnections < 1 {
		return fmt.Errorf("MAX_STREAM_CONNECTIONS must be at least 1, got %d", cfg.MaxStreamConnections)
	}
	if cfg.MaxStreamConnectionsPerIP < 1 {
		return fmt.Errorf("MAX_STREAM_CONNECTIONS_PER_IP must be at least 1, got %d", cfg.MaxStreamConnectionsPerIP)
	}
	if cfg.StreamConnectionRate <= 0 {
		return fmt.Errorf("STREAM_CONNECTION_RATE must be positive, got %v", cfg.StreamConnectionRate)
	}
	if cfg.StreamConnectionBurst < 1 {
		return fmt.Errorf("STREAM_CONNECTION_BURST must be at least 1, got %d", cfg.StreamConnectionBurst)
	}
	return nil
}
