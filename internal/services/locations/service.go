package locations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mcoot/boardgametracker/internal/backend"
	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/query"
)

// TTL is how long the location list stays cached
const TTL = 5 * time.Minute

// Resource is the cache namespace of location queries
const Resource = "location"

// Service reads and writes locations through the query cache
type Service struct {
	api    *backend.Locations
	cache  *query.Cache
	logger *slog.Logger
}

// New creates a new locations Service
func New(api *backend.Locations, cache *query.Cache, logger *slog.Logger) *Service {
	return &Service{
		api:    api,
		cache:  cache,
		logger: logger.With("service", "locations"),
	}
}

// ListKey is the cache key of the location list
func ListKey() string { return query.Key(Resource, "list") }

// List returns every location sorted by name
func (s *Service) List(ctx context.Context) ([]model.Location, error) {
	locations, err := query.Get(ctx, s.cache, ListKey(), TTL, s.api.List)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	sort.SliceStable(locations, func(i, j int) bool {
		return strings.ToLower(locations[i].Name) < strings.ToLower(locations[j].Name)
	})
	return locations, nil
}

// Lookup returns the locations indexed by id
func (s *Service) Lookup(ctx context.Context) (map[model.LocationID]model.Location, error) {
	locations, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[model.LocationID]model.Location, len(locations))
	for _, l := range locations {
		byID[l.ID] = l
	}
	return byID, nil
}

// Create adds a location
func (s *Service) Create(ctx context.Context, name string) (*model.Location, error) {
	created, err := s.api.Create(context.WithoutCancel(ctx), &model.Location{Name: name})
	if err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	s.cache.Invalidate(ctx, query.Key(Resource))
	s.logger.Info("location created", "location_id", created.ID)
	return created, nil
}

// Update renames a location
func (s *Service) Update(ctx context.Context, location *model.Location) (*model.Location, error) {
	updated, err := s.api.Update(context.WithoutCancel(ctx), location)
	if err != nil {
		return nil, fmt.Errorf("update location %d: %w", location.ID, err)
	}
	s.cache.Invalidate(ctx, query.Key(Resource))
	s.logger.Info("location updated", "location_id", location.ID)
	return updated, nil
}

// Delete removes a location
func (s *Service) Delete(ctx context.Context, id model.LocationID) error {
	if err := s.api.Delete(context.WithoutCancel(ctx), id); err != nil {
		return fmt.Errorf("delete location %d: %w", id, err)
	}
	s.cache.Invalidate(ctx, query.Key(Resource), query.Key("session"))
	s.logger.Info("location deleted", "location_id", id)
	return nil
}
