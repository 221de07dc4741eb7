package middleware

import (
	"context"
	"net/http"

	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/web/templates"
)

// SettingsSource provides the current display settings
type SettingsSource interface {
	Current(ctx context.Context) model.Settings
}

// Settings returns middleware that makes the display settings available to
// every view rendered for the request
func Settings(source SettingsSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := templates.WithSettings(r.Context(), source.Current(r.Context()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSettings returns the display settings of the request
func GetSettings(ctx context.Context) model.Settings {
	return templates.SettingsFrom(ctx)
}
