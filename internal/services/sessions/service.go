package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/boardgametracker/internal/backend"
	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/query"
	"github.com/mcoot/boardgametracker/internal/services/games"
	"github.com/mcoot/boardgametracker/internal/services/locations"
	"github.com/mcoot/boardgametracker/internal/services/players"
)

// TTL is how long a session stays cached
const TTL = 5 * time.Minute

// Resource is the cache namespace of session queries
const Resource = "session"

// Service records play sessions. Every write invalidates the figures the
// session feeds: the game, each participant, location counts and badges.
type Service struct {
	api       *backend.Sessions
	plays     *backend.Plays
	locations *locations.Service
	cache     *query.Cache
	logger    *slog.Logger
}

// New creates a new sessions Service
func New(api *backend.Sessions, plays *backend.Plays, locationService *locations.Service, cache *query.Cache, logger *slog.Logger) *Service {
	return &Service{
		api:       api,
		plays:     plays,
		locations: locationService,
		cache:     cache,
		logger:    logger.With("service", "sessions"),
	}
}

// SessionKey is the cache prefix of one session
func SessionKey(id model.SessionID) string { return query.Key(Resource, id) }

// Get returns a single session
func (s *Service) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	session, err := query.Get(ctx, s.cache, SessionKey(id), TTL, func(ctx context.Context) (*model.Session, error) {
		return s.api.Get(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	return session, nil
}

// resolveLocation creates newLocation when given and points the session at it
func (s *Service) resolveLocation(ctx context.Context, session *model.Session, newLocation string) error {
	if newLocation == "" {
		return nil
	}
	location, err := s.locations.Create(ctx, newLocation)
	if err != nil {
		return err
	}
	session.LocationID = location.ID
	return nil
}

// Create records a session, first creating its location when newLocation
// is set
func (s *Service) Create(ctx context.Context, session *model.Session, newLocation string) (*model.Session, error) {
	ctx = context.WithoutCancel(ctx)

	if err := s.resolveLocation(ctx, session, newLocation); err != nil {
		return nil, err
	}

	created, err := s.api.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.cache.Invalidate(ctx, affected(created)...)
	s.logger.Info("session created", "session_id", created.ID, "game_id", created.GameID, "players", len(created.PlayerSessions))
	return created, nil
}

// Update replaces a session. Figures fed by the previous version are
// invalidated as well as those fed by the new one.
func (s *Service) Update(ctx context.Context, session *model.Session, newLocation string) (*model.Session, error) {
	ctx = context.WithoutCancel(ctx)

	previous, err := s.Get(ctx, session.ID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		s.logger.Warn("could not load session before update", "session_id", session.ID, "error", err)
	}

	if err := s.resolveLocation(ctx, session, newLocation); err != nil {
		return nil, err
	}

	updated, err := s.api.Update(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("update session %d: %w", session.ID, err)
	}

	prefixes := affected(updated)
	if previous != nil {
		prefixes = append(prefixes, affected(previous)...)
	}
	s.cache.Invalidate(ctx, dedupe(prefixes)...)
	s.logger.Info("session updated", "session_id", updated.ID)
	return updated, nil
}

// Delete removes a session
func (s *Service) Delete(ctx context.Context, id model.SessionID) error {
	ctx = context.WithoutCancel(ctx)

	previous, _ := s.Get(ctx, id)

	if err := s.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session %d: %w", id, err)
	}
	s.invalidateAfterDelete(ctx, id, previous)
	s.logger.Info("session deleted", "session_id", id)
	return nil
}

// QuickLog records a play through the legacy endpoint
func (s *Service) QuickLog(ctx context.Context, play *model.Play) (*model.Session, error) {
	ctx = context.WithoutCancel(ctx)

	created, err := s.plays.Create(ctx, play)
	if err != nil {
		return nil, fmt.Errorf("log play: %w", err)
	}
	s.cache.Invalidate(ctx, affected(created)...)
	return created, nil
}

// DeletePlay removes a play through the legacy endpoint
func (s *Service) DeletePlay(ctx context.Context, id model.SessionID) error {
	ctx = context.WithoutCancel(ctx)

	previous, _ := s.Get(ctx, id)

	if err := s.plays.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete play %d: %w", id, err)
	}
	s.invalidateAfterDelete(ctx, id, previous)
	return nil
}

func (s *Service) invalidateAfterDelete(ctx context.Context, id model.SessionID, previous *model.Session) {
	if previous != nil {
		s.cache.Invalidate(ctx, affected(previous)...)
		return
	}
	// Without the old session every derived figure may be stale
	s.cache.Invalidate(ctx,
		SessionKey(id),
		query.Key(games.Resource),
		query.Key(players.Resource),
		query.Key(locations.Resource),
		query.Key("badge"),
	)
}

// affected lists the cache prefixes a session feeds
func affected(session *model.Session) []string {
	prefixes := []string{
		SessionKey(session.ID),
		games.ListKey(),
		games.GameKey(session.GameID),
		players.ListKey(),
		locations.ListKey(),
		query.Key("badge"),
	}
	for _, id := range session.PlayerIDs() {
		prefixes = append(prefixes, players.PlayerKey(id))
	}
	return prefixes
}

func dedupe(prefixes []string) []string {
	seen := make(map[string]struct{}, len(prefixes))
	out := prefixes[:0]
	for _, p := range prefixes {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
