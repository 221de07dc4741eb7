package backend

import (
	"context"
	"fmt"

	"github.com/mcoot/boardgametracker/internal/model"
)

// Locations wraps the /location resource
type Locations struct {
	c *Client
}

// List returns every location with its play count
func (l *Locations) List(ctx context.Context) ([]model.Location, error) {
	var locations []model.Location
	if err := l.c.Get(ctx, "/location", &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// Create adds a location
func (l *Locations) Create(ctx context.Context, location *model.Location) (*model.Location, error) {
	var created model.Location
	if err := l.c.Post(ctx, "/location", location, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update renames a location
func (l *Locations) Update(ctx context.Context, location *model.Location) (*model.Location, error) {
	var updated model.Location
	if err := l.c.Put(ctx, "/location", location, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a location
func (l *Locations) Delete(ctx context.Context, id model.LocationID) error {
	return l.c.Delete(ctx, fmt.Sprintf("/location/%d", id))
}
