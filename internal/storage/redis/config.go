package redis

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config describes how the cache reaches Redis
type Config struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	// DialTimeout also bounds the startup ping
	DialTimeout time.Duration
	// ScanCount is the COUNT hint for SCAN during prefix invalidation
	ScanCount int64
}

func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379/0",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ScanCount:    200,
	}
}

// Options turns the URL into client options with the pool settings applied
func (c Config) Options() (*redis.Options, error) {
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	if c.PoolSize > 0 {
		opts.PoolSize = c.PoolSize
	}
	if c.MinIdleConns > 0 {
		opts.MinIdleConns = c.MinIdleConns
	}
	if c.DialTimeout > 0 {
		opts.DialTimeout = c.DialTimeout
	}
	return opts, nil
}
