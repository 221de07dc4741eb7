package games

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mcoot/boardgametracker/internal/backend"
	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/paging"
	"github.com/mcoot/boardgametracker/internal/query"
)

// TTL is how long game queries stay cached
const TTL = 5 * time.Minute

// Resource is the cache namespace of game queries
const Resource = "game"

// Service reads and writes games through the query cache
type Service struct {
	api    *backend.Games
	cache  *query.Cache
	logger *slog.Logger
}

// New creates a new games Service
func New(api *backend.Games, cache *query.Cache, logger *slog.Logger) *Service {
	return &Service{
		api:    api,
		cache:  cache,
		logger: logger.With("service", "games"),
	}
}

// ListKey is the cache key of the game list
func ListKey() string { return query.Key(Resource, "list") }

// GameKey is the cache prefix of everything about one game
func GameKey(id model.GameID) string { return query.Key(Resource, id) }

// List returns the collection sorted by title, optionally filtered by state
func (s *Service) List(ctx context.Context, state model.GameState) ([]model.Game, error) {
	result, err := query.Get(ctx, s.cache, ListKey(), TTL, s.api.List)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	games := make([]model.Game, 0, len(result.Items))
	for _, g := range result.Items {
		if state == "" || g.State == state {
			games = append(games, g)
		}
	}
	sort.SliceStable(games, func(i, j int) bool {
		return strings.ToLower(games[i].Title) < strings.ToLower(games[j].Title)
	})
	return games, nil
}

// Get returns a single game
func (s *Service) Get(ctx context.Context, id model.GameID) (*model.Game, error) {
	game, err := query.Get(ctx, s.cache, query.Key(Resource, id, "detail"), TTL, func(ctx context.Context) (*model.Game, error) {
		return s.api.Get(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("get game %d: %w", id, err)
	}
	return game, nil
}

// Stats returns the statistics of a game
func (s *Service) Stats(ctx context.Context, id model.GameID) (*model.GameStatistics, error) {
	stats, err := query.Get(ctx, s.cache, query.Key(Resource, id, "stats"), TTL, func(ctx context.Context) (*model.GameStatistics, error) {
		return s.api.Stats(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("game %d stats: %w", id, err)
	}
	return stats, nil
}

// Top returns the leaderboard of a game
func (s *Service) Top(ctx context.Context, id model.GameID) ([]model.TopPlayer, error) {
	top, err := query.Get(ctx, s.cache, query.Key(Resource, id, "top"), TTL, func(ctx context.Context) ([]model.TopPlayer, error) {
		return s.api.Top(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("game %d top players: %w", id, err)
	}
	return top, nil
}

// Plays returns one page of the sessions of a game, newest first
func (s *Service) Plays(ctx context.Context, id model.GameID, page paging.Page) (*model.ListResult[model.Session], error) {
	key := query.Key(Resource, id, "plays", page.Skip(), page.Size)
	result, err := query.Get(ctx, s.cache, key, TTL, func(ctx context.Context) (*model.ListResult[model.Session], error) {
		return s.api.Plays(ctx, id, page.Skip(), page.Size)
	})
	if err != nil {
		return nil, fmt.Errorf("game %d plays: %w", id, err)
	}
	return result, nil
}

// Create adds a manually entered game
func (s *Service) Create(ctx context.Context, game *model.Game) (*model.Game, error) {
	created, err := s.api.Create(context.WithoutCancel(ctx), game)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	s.cache.Invalidate(ctx, ListKey())
	s.logger.Info("game created", "game_id", created.ID, "title", created.Title)
	return created, nil
}

// Update replaces a game
func (s *Service) Update(ctx context.Context, game *model.Game) (*model.Game, error) {
	updated, err := s.api.Update(context.WithoutCancel(ctx), game)
	if err != nil {
		return nil, fmt.Errorf("update game %d: %w", game.ID, err)
	}
	s.cache.Invalidate(ctx, ListKey(), GameKey(game.ID))
	s.logger.Info("game updated", "game_id", game.ID)
	return updated, nil
}

// Delete removes a game. Its sessions go with it, so every figure derived
// from sessions is invalidated too.
func (s *Service) Delete(ctx context.Context, id model.GameID) error {
	if err := s.api.Delete(context.WithoutCancel(ctx), id); err != nil {
		return fmt.Errorf("delete game %d: %w", id, err)
	}
	s.cache.Invalidate(ctx,
		query.Key(Resource),
		query.Key("player"),
		query.Key("location"),
		query.Key("session"),
		query.Key("badge"),
	)
	s.logger.Info("game deleted", "game_id", id)
	return nil
}

// ImportBgg imports a game from BoardGameGeek. A duplicate or unknown id
// is reported through the returned state with a nil game.
func (s *Service) ImportBgg(ctx context.Context, req *model.BggImport) (*model.Game, model.ResultState, error) {
	result, err := s.api.ImportBgg(context.WithoutCancel(ctx), req)
	if err != nil {
		return nil, "", fmt.Errorf("import bgg %d: %w", req.BggID, err)
	}

	if result.State != model.ResultSuccess || result.Model == nil {
		s.logger.Info("bgg import rejected", "bgg_id", req.BggID, "state", result.State)
		return nil, result.State, nil
	}

	s.cache.Invalidate(ctx, ListKey())
	s.logger.Info("game imported", "bgg_id", req.BggID, "game_id", result.Model.ID)
	return result.Model, model.ResultSuccess, nil
}
