package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/boardgametracker/internal/format"
	"github.com/mcoot/boardgametracker/internal/forms"
	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/paging"
	"github.com/mcoot/boardgametracker/internal/services/badges"
	"github.com/mcoot/boardgametracker/internal/services/games"
	"github.com/mcoot/boardgametracker/internal/services/locations"
	"github.com/mcoot/boardgametracker/internal/services/players"
	"github.com/mcoot/boardgametracker/internal/web/middleware"
	"github.com/mcoot/boardgametracker/internal/web/templates/layout"
	"github.com/mcoot/boardgametracker/internal/web/templates/pages"
)

// maxUploadSize bounds a profile picture upload; the whole request body may
// carry the other form fields on top
const (
	maxUploadSize = 10 << 20
	maxFormSize   = maxUploadSize + 1<<20
)

// PlayerHandler handles the player pages
type PlayerHandler struct {
	players *players.Service
	rows    rowSources
	logger  *slog.Logger
}

// NewPlayerHandler creates a new PlayerHandler
func NewPlayerHandler(playerService *players.Service, gameService *games.Service, locationService *locations.Service, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		players: playerService,
		rows:    rowSources{games: gameService, players: playerService, locations: locationService},
		logger:  logger.With(slog.String("handler", "players")),
	}
}

// List renders every player
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.players.List(r.Context())
	if err != nil {
		failPage(w, r, h.logger, err)
		return
	}
	render(w, r, http.StatusOK, pages.Players(pages.PlayersData{
		PageData: pageData(r, "Players", layout.NavPlayers, players.Resource),
		Players:  list,
	}))
}

// New renders the add player form
func (h *PlayerHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, pages.PlayerFormData{})
}

func (h *PlayerHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data pages.PlayerFormData) {
	title := "Add player"
	data.Action = "/players"
	if data.Form.ID != "" {
		title = "Edit player"
		data.Action = "/players/" + data.Form.ID
	}
	data.PageData = pageData(r, title, layout.NavPlayers, "")
	if data.FieldErrors == nil {
		data.FieldErrors = forms.FieldErrors{}
	}
	render(w, r, status, pages.PlayerForm(data))
}

// readPlayerForm parses the multipart player form and its optional picture
func readPlayerForm(w http.ResponseWriter, r *http.Request) (forms.PlayerForm, *players.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return forms.PlayerForm{}, nil, err
	}
	form := forms.PlayerFormFromValues(r.PostForm)

	file, header, err := r.FormFile("profileImage")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return form, nil, nil
	case err != nil:
		return form, nil, err
	}
	// The request body stays open until the handler returns
	return form, &players.Image{Filename: header.Filename, Body: file}, nil
}

// badPlayerForm rejects an unreadable player form; oversized uploads get 413
func badPlayerForm(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, "Upload too large", http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, "Invalid form data", http.StatusBadRequest)
}

// Create adds a player, uploading the profile picture first
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, img, err := readPlayerForm(w, r)
	if err != nil {
		badPlayerForm(w, err)
		return
	}
	form.ID = ""

	player, fieldErrors := form.Validate()
	if !fieldErrors.Valid() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, pages.PlayerFormData{Form: form, FieldErrors: fieldErrors})
		return
	}

	created, err := h.players.Create(r.Context(), player, img)
	if err != nil {
		h.logger.Warn("create player failed", slog.Any("error", err))
		h.renderForm(w, r, http.StatusOK, pages.PlayerFormData{Form: form, Error: mutationMessage("Adding the player", err)})
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, created.Name+" was added")
	redirect(w, r, fmt.Sprintf("/players/%d", created.ID))
}

// View renders a player profile with statistics and badges
func (h *PlayerHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}
	playerID := model.PlayerID(id)

	var (
		player   *model.Player
		stats    *model.PlayerStatistics
		sessions *model.ListResult[model.Session]
		dir      *directory
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { player, err = h.players.Get(ctx, playerID); return })
	g.Go(func() (err error) { stats, err = h.players.Stats(ctx, playerID); return })
	g.Go(func() (err error) {
		sessions, err = h.players.Sessions(ctx, playerID, paging.NewPage(0, recentSessions))
		return
	})
	g.Go(func() (err error) { dir, err = h.rows.directory(ctx); return })
	if err := g.Wait(); err != nil {
		failPage(w, r, h.logger, err)
		return
	}

	render(w, r, http.StatusOK, pages.PlayerDetail(pages.PlayerDetailData{
		PageData:      pageData(r, player.Name, layout.NavPlayers, players.Resource),
		Player:        player,
		Stats:         stats,
		WinPercentage: format.GetPercentage(float64(stats.WinCount), float64(stats.PlayCount)),
		Badges:        badges.Highest(player.Badges),
		Sessions:      dir.rows(sessions.Items),
		Count:         sessions.Count,
	}))
}

// Edit renders the edit form of a player
func (h *PlayerHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}
	player, err := h.players.Get(r.Context(), model.PlayerID(id))
	if err != nil {
		failPage(w, r, h.logger, err)
		return
	}
	h.renderForm(w, r, http.StatusOK, pages.PlayerFormData{Form: forms.PlayerFormFromPlayer(player)})
}

// Update renames a player and optionally replaces the picture
func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}
	form, img, err := readPlayerForm(w, r)
	if err != nil {
		badPlayerForm(w, err)
		return
	}
	form.ID = fmt.Sprint(id)

	player, fieldErrors := form.Validate()
	if !fieldErrors.Valid() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, pages.PlayerFormData{Form: form, FieldErrors: fieldErrors})
		return
	}

	updated, err := h.players.Update(r.Context(), player, img)
	if err != nil {
		h.logger.Warn("update player failed", slog.Int("player_id", id), slog.Any("error", err))
		h.renderForm(w, r, http.StatusOK, pages.PlayerFormData{Form: form, Error: mutationMessage("Saving the player", err)})
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, updated.Name+" was saved")
	redirect(w, r, fmt.Sprintf("/players/%d", updated.ID))
}

// Delete removes a player
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}

	if err := h.players.Delete(r.Context(), model.PlayerID(id)); err != nil {
		h.logger.Warn("delete player failed", slog.Int("player_id", id), slog.Any("error", err))
		middleware.SetFlash(w, middleware.FlashError, mutationMessage("Deleting the player", err))
		redirect(w, r, fmt.Sprintf("/players/%d", id))
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "The player was deleted")
	redirect(w, r, "/players")
}

func (h *PlayerHandler) pager(id model.PlayerID) sessionPager {
	return func(ctx context.Context, page paging.Page) (*model.ListResult[model.Session], error) {
		return h.players.Sessions(ctx, id, page)
	}
}

// Sessions renders the paged session table of a player
func (h *PlayerHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}
	playerID := model.PlayerID(id)

	var (
		player *model.Player
		data   pages.SessionsData
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { player, err = h.players.Get(ctx, playerID); return })
	g.Go(func() (err error) {
		data, err = h.rows.sessionsData(ctx, h.pager(playerID), queryInt(r, "page", 1))
		return
	})
	if err := g.Wait(); err != nil {
		failPage(w, r, h.logger, err)
		return
	}

	data.PageData = pageData(r, player.Name+" sessions", layout.NavPlayers, players.Resource)
	data.Heading = player.Name
	data.BackURL = fmt.Sprintf("/players/%d", id)
	data.BasePath = fmt.Sprintf("/players/%d/sessions", id)
	render(w, r, http.StatusOK, pages.Sessions(data))
}

// SessionsMore appends page ?page= to the load more list
func (h *PlayerHandler) SessionsMore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}

	data, err := h.rows.moreData(r.Context(), h.pager(model.PlayerID(id)), queryInt(r, "page", 1), seenIDs(r))
	if err != nil {
		failPage(w, r, h.logger, err)
		return
	}
	data.BasePath = fmt.Sprintf("/players/%d/sessions", id)
	render(w, r, http.StatusOK, pages.SessionsMore(data))
}
