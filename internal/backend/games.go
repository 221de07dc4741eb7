package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mcoot/boardgametracker/internal/model"
)

// Games wraps the /game resource
type Games struct {
	c *Client
}

// List returns every game in the collection
func (g *Games) List(ctx context.Context) (*model.ListResult[model.Game], error) {
	var result model.ListResult[model.Game]
	if err := g.c.Get(ctx, "/game", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns a single game
func (g *Games) Get(ctx context.Context, id model.GameID) (*model.Game, error) {
	var game model.Game
	if err := g.c.Get(ctx, fmt.Sprintf("/game/%d", id), &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// Create adds a manually entered game
func (g *Games) Create(ctx context.Context, game *model.Game) (*model.Game, error) {
	var created model.Game
	if err := g.c.Post(ctx, "/game", game, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces an existing game
func (g *Games) Update(ctx context.Context, game *model.Game) (*model.Game, error) {
	var updated model.Game
	if err := g.c.Put(ctx, "/game", game, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a game and its sessions
func (g *Games) Delete(ctx context.Context, id model.GameID) error {
	return g.c.Delete(ctx, fmt.Sprintf("/game/%d", id))
}

// ImportBgg imports a game from BoardGameGeek. A duplicate is reported
// through the result state, not as an error.
func (g *Games) ImportBgg(ctx context.Context, req *model.BggImport) (*model.SearchResult[model.Game], error) {
	var result model.SearchResult[model.Game]
	if err := g.c.Post(ctx, "/game/bgg", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats returns the statistics for a game
func (g *Games) Stats(ctx context.Context, id model.GameID) (*model.GameStatistics, error) {
	var stats model.GameStatistics
	if err := g.c.Get(ctx, fmt.Sprintf("/game/%d/stats", id), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Plays returns one page of sessions for a game
func (g *Games) Plays(ctx context.Context, id model.GameID, skip, take int) (*model.ListResult[model.Session], error) {
	var result model.ListResult[model.Session]
	path := fmt.Sprintf("/game/%d/plays?%s", id, pageQuery(skip, take))
	if err := g.c.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Top returns the leaderboard for a game
func (g *Games) Top(ctx context.Context, id model.GameID) ([]model.TopPlayer, error) {
	var top []model.TopPlayer
	if err := g.c.Get(ctx, fmt.Sprintf("/game/%d/top", id), &top); err != nil {
		return nil, err
	}
	return top, nil
}

func pageQuery(skip, take int) string {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("take", strconv.Itoa(take))
	return q.Encode()
}
