package badges

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mcoot/boardgametracker/internal/backend"
	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/query"
)

// TTL is how long the badge definitions stay cached
const TTL = 30 * time.Minute

// Resource is the cache namespace of badge queries
const Resource = "badge"

// Group is every level of one badge type, lowest level first
type Group struct {
	Type   model.BadgeType
	Badges []model.Badge
}

// Service lists badge definitions
type Service struct {
	api    *backend.Badges
	cache  *query.Cache
	logger *slog.Logger
}

// New creates a new badges Service
func New(api *backend.Badges, cache *query.Cache, logger *slog.Logger) *Service {
	return &Service{
		api:    api,
		cache:  cache,
		logger: logger.With("service", "badges"),
	}
}

// List returns every badge definition
func (s *Service) List(ctx context.Context) ([]model.Badge, error) {
	badges, err := query.Get(ctx, s.cache, query.Key(Resource, "list"), TTL, s.api.List)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	return badges, nil
}

// Grouped returns the badges grouped by type in first-seen type order
func (s *Service) Grouped(ctx context.Context) ([]Group, error) {
	badges, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByType(badges), nil
}

// GroupByType groups badges by type, ordering each group by level
func GroupByType(badges []model.Badge) []Group {
	index := map[model.BadgeType]int{}
	var groups []Group
	for _, b := range badges {
		i, ok := index[b.Type]
		if !ok {
			i = len(groups)
			index[b.Type] = i
			groups = append(groups, Group{Type: b.Type})
		}
		groups[i].Badges = append(groups[i].Badges, b)
	}
	for _, g := range groups {
		sort.SliceStable(g.Badges, func(i, j int) bool {
			return g.Badges[i].Level.Rank() < g.Badges[j].Level.Rank()
		})
	}
	return groups
}

// Highest returns the highest level badge of each type among earned
func Highest(earned []model.Badge) []model.Badge {
	var out []model.Badge
	for _, g := range GroupByType(earned) {
		out = append(out, g.Badges[len(g.Badges)-1])
	}
	return out
}
