package backend

import (
	"context"
	"fmt"

	"github.com/mcoot/boardgametracker/internal/model"
)

// Sessions wraps the /session resource
type Sessions struct {
	c *Client
}

// Get returns a single session
func (s *Sessions) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	var session model.Session
	if err := s.c.Get(ctx, fmt.Sprintf("/session/%d", id), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Create records a new session
func (s *Sessions) Create(ctx context.Context, session *model.Session) (*model.Session, error) {
	var created model.Session
	if err := s.c.Post(ctx, "/session", session, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces an existing session
func (s *Sessions) Update(ctx context.Context, session *model.Session) (*model.Session, error) {
	var updated model.Session
	if err := s.c.Put(ctx, "/session", session, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a session
func (s *Sessions) Delete(ctx context.Context, id model.SessionID) error {
	return s.c.Delete(ctx, fmt.Sprintf("/session/%d", id))
}

// Plays wraps the legacy /play resource
type Plays struct {
	c *Client
}

// Create records a play through the quick-log endpoint
func (p *Plays) Create(ctx context.Context, play *model.Play) (*model.Session, error) {
	var created model.Session
	if err := p.c.Post(ctx, "/play", play, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Delete removes a play
func (p *Plays) Delete(ctx context.Context, id model.SessionID) error {
	return p.c.Delete(ctx, fmt.Sprintf("/play/%d", id))
}
