package players

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mcoot/boardgametracker/internal/backend"
	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/paging"
	"github.com/mcoot/boardgametracker/internal/query"
)

// TTL is how long player queries stay cached
const TTL = 5 * time.Minute

// Resource is the cache namespace of player queries
const Resource = "player"

// Image is a profile picture submitted with a player form
type Image struct {
	Filename string
	Body     io.Reader
}

// Service reads and writes players through the query cache
type Service struct {
	api    *backend.Players
	images *backend.Images
	cache  *query.Cache
	logger *slog.Logger
}

// New creates a new players Service
func New(api *backend.Players, images *backend.Images, cache *query.Cache, logger *slog.Logger) *Service {
	return &Service{
		api:    api,
		images: images,
		cache:  cache,
		logger: logger.With("service", "players"),
	}
}

// ListKey is the cache key of the player list
func ListKey() string { return query.Key(Resource, "list") }

// PlayerKey is the cache prefix of everything about one player
func PlayerKey(id model.PlayerID) string { return query.Key(Resource, id) }

// List returns every player sorted by name
func (s *Service) List(ctx context.Context) ([]model.Player, error) {
	result, err := query.Get(ctx, s.cache, ListKey(), TTL, s.api.List)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	players := append([]model.Player(nil), result.Items...)
	sort.SliceStable(players, func(i, j int) bool {
		return strings.ToLower(players[i].Name) < strings.ToLower(players[j].Name)
	})
	return players, nil
}

// Lookup returns the players indexed by id
func (s *Service) Lookup(ctx context.Context) (map[model.PlayerID]model.Player, error) {
	players, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[model.PlayerID]model.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	return byID, nil
}

// Get returns a single player
func (s *Service) Get(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	player, err := query.Get(ctx, s.cache, query.Key(Resource, id, "detail"), TTL, func(ctx context.Context) (*model.Player, error) {
		return s.api.Get(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("get player %d: %w", id, err)
	}
	return player, nil
}

// Stats returns the statistics of a player
func (s *Service) Stats(ctx context.Context, id model.PlayerID) (*model.PlayerStatistics, error) {
	stats, err := query.Get(ctx, s.cache, query.Key(Resource, id, "stats"), TTL, func(ctx context.Context) (*model.PlayerStatistics, error) {
		return s.api.Stats(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("player %d stats: %w", id, err)
	}
	return stats, nil
}

// Sessions returns one page of the sessions a player took part in
func (s *Service) Sessions(ctx context.Context, id model.PlayerID, page paging.Page) (*model.ListResult[model.Session], error) {
	key := query.Key(Resource, id, "sessions", page.Skip(), page.Size)
	result, err := query.Get(ctx, s.cache, key, TTL, func(ctx context.Context) (*model.ListResult[model.Session], error) {
		return s.api.Sessions(ctx, id, page.Skip(), page.Size)
	})
	if err != nil {
		return nil, fmt.Errorf("player %d sessions: %w", id, err)
	}
	return result, nil
}

func (s *Service) upload(ctx context.Context, img *Image) (string, error) {
	if img == nil || img.Body == nil {
		return "", nil
	}
	ref, err := s.images.Upload(ctx, backend.ImageTypeProfile, img.Filename, img.Body)
	if err != nil {
		return "", fmt.Errorf("upload profile image: %w", err)
	}
	return ref, nil
}

// Create uploads the optional profile image and then adds the player
func (s *Service) Create(ctx context.Context, player *model.Player, img *Image) (*model.Player, error) {
	ctx = context.WithoutCancel(ctx)

	ref, err := s.upload(ctx, img)
	if err != nil {
		return nil, err
	}
	if ref != "" {
		player.Image = ref
	}

	created, err := s.api.Create(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}
	s.cache.Invalidate(ctx, ListKey())
	s.logger.Info("player created", "player_id", created.ID)
	return created, nil
}

// Update renames a player, replacing the profile image when one is given
func (s *Service) Update(ctx context.Context, player *model.Player, img *Image) (*model.Player, error) {
	ctx = context.WithoutCancel(ctx)

	ref, err := s.upload(ctx, img)
	if err != nil {
		return nil, err
	}
	if ref != "" {
		player.Image = ref
	}

	updated, err := s.api.Update(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("update player %d: %w", player.ID, err)
	}
	s.cache.Invalidate(ctx, ListKey(), PlayerKey(player.ID))
	s.logger.Info("player updated", "player_id", player.ID)
	return updated, nil
}

// Delete removes a player
func (s *Service) Delete(ctx context.Context, id model.PlayerID) error {
	if err := s.api.Delete(context.WithoutCancel(ctx), id); err != nil {
		return fmt.Errorf("delete player %d: %w", id, err)
	}
	// leaderboards and session lists reference the player
	s.cache.Invalidate(ctx, query.Key(Resource), query.Key("game"), query.Key("session"))
	s.logger.Info("player deleted", "player_id", id)
	return nil
}
