package backend

import (
	"context"
	"io"

	"github.com/mcoot/boardgametracker/internal/model"
)

// Settings wraps the /settings resource
type Settings struct {
	c *Client
}

// Get returns the display settings
func (s *Settings) Get(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	if err := s.c.Get(ctx, "/settings", &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update stores the display settings
func (s *Settings) Update(ctx context.Context, settings *model.Settings) (*model.Settings, error) {
	var updated model.Settings
	if err := s.c.Put(ctx, "/settings", settings, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Languages returns the selectable UI languages
func (s *Settings) Languages(ctx context.Context) ([]model.Language, error) {
	var languages []model.Language
	if err := s.c.Get(ctx, "/settings/languages", &languages); err != nil {
		return nil, err
	}
	return languages, nil
}

// Environment describes the backend deployment
func (s *Settings) Environment(ctx context.Context) (*model.Environment, error) {
	var env model.Environment
	if err := s.c.Get(ctx, "/settings/environment", &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Badges wraps the /badges resource
type Badges struct {
	c *Client
}

// List returns every badge definition
func (b *Badges) List(ctx context.Context) ([]model.Badge, error) {
	var badges []model.Badge
	if err := b.c.Get(ctx, "/badges", &badges); err != nil {
		return nil, err
	}
	return badges, nil
}

// ImageType tells the backend which folder an upload belongs to
type ImageType string

const (
	ImageTypeProfile ImageType = "profile"
	ImageTypeGame    ImageType = "game"
)

// Images wraps the /image upload endpoint
type Images struct {
	c *Client
}

// Upload stores an image and returns the reference the backend assigned
func (i *Images) Upload(ctx context.Context, kind ImageType, filename string, file io.Reader) (string, error) {
	var result model.ImageUpload
	fields := map[string]string{"type": string(kind)}
	if err := i.c.Upload(ctx, "/image", "image", filename, file, fields, &result); err != nil {
		return "", err
	}
	return result.Image, nil
}
