package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/boardgametracker/internal/dependencies/clock"
	"github.com/mcoot/boardgametracker/internal/storage"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Storage is an in-memory implementation of the store interface
type Storage struct {
	mu      sync.RWMutex
	clock   clock.Clock
	entries map[string]*entry
}

// New creates a new in-memory store using the system clock
func New() *Storage {
	return NewWithClock(clock.New())
}

// NewWithClock creates a new in-memory store with an injected clock
func NewWithClock(clk clock.Clock) *Storage {
	return &Storage{
		clock:   clk,
		entries: make(map[string]*entry),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || e.expired(s.clock.Now()) {
		return nil, storage.ErrMiss
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = s.clock.Now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *Storage) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

func (s *Storage) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of live entries
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.clock.Now()
	n := 0
	for _, e := range s.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// Sweep drops expired entries and returns how many were dropped
func (s *Storage) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *Storage) Close() error {
	return nil
}
