package handler

import (
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/boardgametracker/internal/forms"
	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/services/badges"
	"github.com/mcoot/boardgametracker/internal/services/settings"
	"github.com/mcoot/boardgametracker/internal/web/middleware"
	"github.com/mcoot/boardgametracker/internal/web/templates/layout"
	"github.com/mcoot/boardgametracker/internal/web/templates/pages"
)

// Choices offered on the settings page
var (
	dateFormats = []string{"DD-MM-YYYY", "MM-DD-YYYY", "YYYY-MM-DD", "DD/MM/YYYY", "MM/DD/YYYY", "D MMM YYYY"}
	timeFormats = []string{"HH:mm", "hh:mm a"}
	currencies  = []string{"EUR", "USD", "GBP", "JPY", "AUD", "CAD", "CHF"}
)

// SettingsHandler handles the settings page
type SettingsHandler struct {
	settings *settings.Service
	logger   *slog.Logger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *settings.Service, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settingsService,
		logger:   logger.With(slog.String("handler", "settings")),
	}
}

// View renders the settings form
func (h *SettingsHandler) View(w http.ResponseWriter, r *http.Request) {
	current, err := h.settings.Get(r.Context())
	if err != nil {
		failPage(w, r, h.logger, err)
		return
	}
	h.render(w, r, http.StatusOK, forms.SettingsFormFromSettings(current), nil)
}

func (h *SettingsHandler) render(w http.ResponseWriter, r *http.Request, status int, form forms.SettingsForm, fieldErrors forms.FieldErrors) {
	var (
		languages   []model.Language
		environment *model.Environment
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { languages, err = h.settings.Languages(ctx); return })
	g.Go(func() (err error) { environment, err = h.settings.Environment(ctx); return })
	if err := g.Wait(); err != nil {
		failPage(w, r, h.logger, err)
		return
	}
	if fieldErrors == nil {
		fieldErrors = forms.FieldErrors{}
	}

	render(w, r, status, pages.Settings(pages.SettingsData{
		PageData:    pageData(r, "Settings", layout.NavSettings, settings.Resource),
		Form:        form,
		FieldErrors: fieldErrors,
		Languages:   languages,
		Environment: environment,
		DateFormats: dateFormats,
		TimeFormats: timeFormats,
		Currencies:  currencies,
	}))
}

// Update stores the settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	form := forms.SettingsFormFromValues(r.PostForm)
	updated, fieldErrors := form.Validate()
	if !fieldErrors.Valid() {
		h.render(w, r, http.StatusUnprocessableEntity, form, fieldErrors)
		return
	}

	if _, err := h.settings.Update(r.Context(), updated); err != nil {
		h.logger.Warn("update settings failed", slog.Any("error", err))
		middleware.SetFlash(w, middleware.FlashError, mutationMessage("Saving the settings", err))
	} else {
		middleware.SetFlash(w, middleware.FlashSuccess, "Settings saved")
	}
	redirect(w, r, "/settings")
}

// BadgeHandler handles the badge overview
type BadgeHandler struct {
	badges *badges.Service
	logger *slog.Logger
}

// NewBadgeHandler creates a new BadgeHandler
func NewBadgeHandler(badgeService *badges.Service, logger *slog.Logger) *BadgeHandler {
	return &BadgeHandler{
		badges: badgeService,
		logger: logger.With(slog.String("handler", "badges")),
	}
}

// List renders every badge grouped by type
func (h *BadgeHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.badges.Grouped(r.Context())
	if err != nil {
		failPage(w, r, h.logger, err)
		return
	}
	render(w, r, http.StatusOK, pages.Badges(pages.BadgesData{
		PageData: pageData(r, "Badges", layout.NavBadges, badges.Resource),
		Groups:   groups,
	}))
}
