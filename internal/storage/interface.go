package storage

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired
var ErrMiss = errors.New("cache miss")

// Store is the backing store for the query cache. Values are opaque
// encoded payloads; a zero TTL means the entry never expires.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix and returns how
	// many were removed
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	Close() error
}
