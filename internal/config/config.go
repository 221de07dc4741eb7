package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all web server configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Cache   CacheConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"0s"` // SSE streams stay open
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	StaticDir       string        `envconfig:"STATIC_DIR" default:""`
}

// BackendConfig holds the REST backend settings.
type BackendConfig struct {
	URL     string        `envconfig:"BACKEND_URL" default:"http://localhost:5000/api"`
	Timeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"30s"`
}

// CacheConfig holds query cache settings.
type CacheConfig struct {
	Type     string `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	RedisURL string `envconfig:"REDIS_URL" default:"redis://localhost:6379"`
	PoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"10"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid CACHE_TYPE %q: must be memory or redis", c.Cache.Type)
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SlogLevel converts the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", l.Level)
	}
}
