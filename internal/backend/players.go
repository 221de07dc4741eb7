package backend

import (
	"context"
	"fmt"

	"github.com/mcoot/boardgametracker/internal/model"
)

// Players wraps the /player resource
type Players struct {
	c *Client
}

// List returns every player
func (p *Players) List(ctx context.Context) (*model.ListResult[model.Player], error) {
	var result model.ListResult[model.Player]
	if err := p.c.Get(ctx, "/player", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns a single player
func (p *Players) Get(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	if err := p.c.Get(ctx, fmt.Sprintf("/player/%d", id), &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// Create adds a player
func (p *Players) Create(ctx context.Context, player *model.Player) (*model.Player, error) {
	var created model.Player
	if err := p.c.Post(ctx, "/player", player, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces a player profile
func (p *Players) Update(ctx context.Context, player *model.Player) (*model.Player, error) {
	var updated model.Player
	if err := p.c.Put(ctx, "/player", player, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a player
func (p *Players) Delete(ctx context.Context, id model.PlayerID) error {
	return p.c.Delete(ctx, fmt.Sprintf("/player/%d", id))
}

// Stats returns the statistics for a player
func (p *Players) Stats(ctx context.Context, id model.PlayerID) (*model.PlayerStatistics, error) {
	var stats model.PlayerStatistics
	if err := p.c.Get(ctx, fmt.Sprintf("/player/%d/stats", id), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Sessions returns one page of sessions a player took part in
func (p *Players) Sessions(ctx context.Context, id model.PlayerID, skip, take int) (*model.ListResult[model.Session], error) {
	var result model.ListResult[model.Session]
	path := fmt.Sprintf("/player/%d/sessions?%s", id, pageQuery(skip, take))
	if err := p.c.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
