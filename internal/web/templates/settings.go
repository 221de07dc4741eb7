// Package templates holds the templ views. The layout, components and pages
// subpackages are generated from their .templ sources with `templ generate`.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ generate -path .

import (
	"context"

	"github.com/mcoot/boardgametracker/internal/model"
)

type settingsKey struct{}

// WithSettings stores the display settings used by date and currency helpers
func WithSettings(ctx context.Context, s model.Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s)
}

// SettingsFrom returns the display settings of ctx, or the defaults
func SettingsFrom(ctx context.Context) model.Settings {
	if s, ok := ctx.Value(settingsKey{}).(model.Settings); ok {
		return s
	}
	return model.DefaultSettings()
}
