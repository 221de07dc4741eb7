package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mcoot/boardgametracker/internal/storage"
)

// InvalidateFunc is notified with each prefix removed by Invalidate
type InvalidateFunc func(prefix string)

// Stats counts cache outcomes since the cache was created
type Stats struct {
	Hits   int64
	Misses int64
	Errors int64
}

// Cache is a read-through cache of backend query results. Entries are
// only written by Fetch and only removed by Invalidate.
type Cache struct {
	store  storage.Store
	logger *slog.Logger
	group  singleflight.Group

	mu        sync.RWMutex
	listeners []InvalidateFunc

	// genMu orders result writes against invalidations. epoch counts
	// invalidations and invalidated holds the epoch each prefix was last
	// removed at.
	genMu       sync.RWMutex
	epoch       uint64
	invalidated map[string]uint64
	inflight    map[string]int

	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

// New creates a cache over store
func New(store storage.Store, logger *slog.Logger) *Cache {
	return &Cache{
		store:       store,
		logger:      logger.With("component", "query"),
		invalidated: make(map[string]uint64),
		inflight:    make(map[string]int),
	}
}

// Fetch loads the value cached under key into dest, calling fn on a miss
// and caching its result for ttl. Concurrent misses for the same key share
// one call to fn. Store failures are logged and never fail the read.
func (c *Cache) Fetch(ctx context.Context, key string, ttl time.Duration, dest any, fn func(ctx context.Context) (any, error)) error {
	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, dest); err == nil {
			c.hits.Add(1)
			return nil
		}
		c.logger.Warn("discarding undecodable cache entry", "key", key)
	case !errors.Is(err, storage.ErrMiss):
		c.errors.Add(1)
		c.logger.Warn("cache read failed", "key", key, "error", err)
	}
	c.misses.Add(1)

	ch := c.group.DoChan(key, func() (any, error) {
		return c.load(ctx, key, ttl, fn)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-ch:
	}

	if res.Err != nil {
		// The shared call may have been cancelled by another caller's context
		if !res.Shared || !isContextErr(res.Err) || ctx.Err() != nil {
			return res.Err
		}
		res.Val, res.Err = c.load(ctx, key, ttl, fn)
		if res.Err != nil {
			return res.Err
		}
	}

	if err := json.Unmarshal(res.Val.([]byte), dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// load calls fn and caches its result unless the key was invalidated while
// fn ran, which would write back data read before the change.
func (c *Cache) load(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) (any, error)) ([]byte, error) {
	started := c.begin(key)
	defer c.end(key)

	value, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}

	c.genMu.RLock()
	defer c.genMu.RUnlock()
	if c.staleSince(key, started) {
		c.logger.Debug("skipping write of invalidated result", "key", key)
		return data, nil
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.errors.Add(1)
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return data, nil
}

func (c *Cache) begin(key string) uint64 {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.inflight[key]++
	return c.epoch
}

func (c *Cache) end(key string) {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	if c.inflight[key]--; c.inflight[key] <= 0 {
		delete(c.inflight, key)
	}
}

// staleSince reports whether a prefix of key was invalidated after epoch.
// Callers hold genMu.
func (c *Cache) staleSince(key string, epoch uint64) bool {
	for prefix, at := range c.invalidated {
		if at > epoch && strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// bump records the invalidation of prefix and detaches in-flight loads
// under it so later readers start a fresh load
func (c *Cache) bump(prefix string) {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.epoch++
	c.invalidated[prefix] = c.epoch
	for key := range c.inflight {
		if strings.HasPrefix(key, prefix) {
			c.group.Forget(key)
		}
	}
}

// Get is the typed form of Fetch
func Get[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := c.Fetch(ctx, key, ttl, &out, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	return out, err
}

// Invalidate removes every entry under each prefix and notifies listeners.
// It runs on a context detached from the caller so a write that already
// reached the backend is never left with stale reads.
func (c *Cache) Invalidate(ctx context.Context, prefixes ...string) {
	ctx = context.WithoutCancel(ctx)
	for _, prefix := range prefixes {
		c.bump(prefix)
		removed, err := c.store.DeletePrefix(ctx, prefix)
		if err != nil {
			c.errors.Add(1)
			c.logger.Error("cache invalidation failed", "prefix", prefix, "error", err)
		} else {
			c.logger.Debug("cache invalidated", "prefix", prefix, "removed", removed)
		}
		c.notify(prefix)
	}
}

// OnInvalidate registers fn to be called after each invalidated prefix
func (c *Cache) OnInvalidate(fn InvalidateFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Cache) notify(prefix string) {
	c.mu.RLock()
	listeners := make([]InvalidateFunc, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, fn := range listeners {
		fn(prefix)
	}
}

// Stats returns a snapshot of the cache counters
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errors.Load(),
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
