package settings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/boardgametracker/internal/backend"
	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/query"
)

// TTL is long because settings only change through this service
const TTL = time.Hour

// Resource is the cache namespace of settings queries
const Resource = "settings"

// Service provides the process-wide display settings
type Service struct {
	api    *backend.Settings
	cache  *query.Cache
	logger *slog.Logger
}

// New creates a new settings Service
func New(api *backend.Settings, cache *query.Cache, logger *slog.Logger) *Service {
	return &Service{
		api:    api,
		cache:  cache,
		logger: logger.With("service", "settings"),
	}
}

// Get returns the display settings
func (s *Service) Get(ctx context.Context) (*model.Settings, error) {
	settings, err := query.Get(ctx, s.cache, query.Key(Resource), TTL, s.api.Get)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

// Current returns the display settings, falling back to the defaults when
// the backend cannot be reached
func (s *Service) Current(ctx context.Context) model.Settings {
	settings, err := s.Get(ctx)
	if err != nil {
		s.logger.Warn("using default settings", "error", err)
		return model.DefaultSettings()
	}
	return *settings
}

// Update stores the display settings
func (s *Service) Update(ctx context.Context, settings *model.Settings) (*model.Settings, error) {
	updated, err := s.api.Update(context.WithoutCancel(ctx), settings)
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	s.cache.Invalidate(ctx, query.Key(Resource))
	s.logger.Info("settings updated", "currency", updated.Currency, "language", updated.Language)
	return updated, nil
}

// Languages returns the selectable UI languages
func (s *Service) Languages(ctx context.Context) ([]model.Language, error) {
	languages, err := query.Get(ctx, s.cache, query.Key(Resource, "languages"), TTL, s.api.Languages)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	return languages, nil
}

// Environment describes the backend deployment
func (s *Service) Environment(ctx context.Context) (*model.Environment, error) {
	env, err := query.Get(ctx, s.cache, query.Key(Resource, "environment"), TTL, s.api.Environment)
	if err != nil {
		return nil, fmt.Errorf("get environment: %w", err)
	}
	return env, nil
}
