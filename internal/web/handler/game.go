package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/boardgametracker/internal/format"
	"github.com/mcoot/boardgametracker/internal/forms"
	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/paging"
	"github.com/mcoot/boardgametracker/internal/services/games"
	"github.com/mcoot/boardgametracker/internal/services/locations"
	"github.com/mcoot/boardgametracker/internal/services/players"
	"github.com/mcoot/boardgametracker/internal/web/middleware"
	"github.com/mcoot/boardgametracker/internal/web/templates/layout"
	"github.com/mcoot/boardgametracker/internal/web/templates/pages"
)

// recentSessions is how many sessions the detail pages show
const recentSessions = 5

// GameHandler handles the game collection pages
type GameHandler struct {
	games   *games.Service
	players *players.Service
	rows    rowSources
	logger  *slog.Logger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(gameService *games.Service, playerService *players.Service, locationService *locations.Service, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		games:   gameService,
		players: playerService,
		rows:    rowSources{games: gameService, players: playerService, locations: locationService},
		logger:  logger.With(slog.String("handler", "games")),
	}
}

// List renders the collection, optionally filtered by state
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	state := model.GameState(r.URL.Query().Get("state"))
	if !state.Valid() {
		state = ""
	}

	list, err := h.games.List(r.Context(), state)
	if err != nil {
		failPage(w, r, h.logger, err)
		return
	}

	render(w, r, http.StatusOK, pages.Games(pages.GamesData{
		PageData: pageData(r, "Games", layout.NavGames, games.Resource),
		Games:    list,
		State:    state,
		States:   model.GameStates,
	}))
}

// New renders the add game page with its manual and BoardGameGeek tabs
func (h *GameHandler) New(w http.ResponseWriter, r *http.Request) {
	tab := "manual"
	if r.URL.Query().Get("tab") == "bgg" {
		tab = "bgg"
	}
	h.renderForm(w, r, http.StatusOK, pages.GameFormData{
		Tab:  tab,
		Form: forms.GameForm{State: string(model.GameStateOwned)},
		Bgg:  forms.BggImportForm{State: string(model.GameStateOwned)},
	})
}

func (h *GameHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data pages.GameFormData) {
	title := "Add game"
	data.Action = "/games"
	if data.Form.ID != "" {
		title = "Edit game"
		data.Action = "/games/" + data.Form.ID
	}
	data.PageData = pageData(r, title, layout.NavGames, "")
	data.States = model.GameStates
	if data.FieldErrors == nil {
		data.FieldErrors = forms.FieldErrors{}
	}
	render(w, r, status, pages.GameForm(data))
}

// Create stores a manually entered game
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	form := forms.GameFormFromValues(r.PostForm)
	form.ID = ""
	game, fieldErrors := form.Validate()
	if !fieldErrors.Valid() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, pages.GameFormData{Tab: "manual", Form: form, FieldErrors: fieldErrors})
		return
	}

	created, err := h.games.Create(r.Context(), game)
	if err != nil {
		h.logger.Warn("create game failed", slog.Any("error", err))
		h.renderForm(w, r, http.StatusOK, pages.GameFormData{Tab: "manual", Form: form, Error: mutationMessage("Adding the game", err)})
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, created.Title+" was added")
	redirect(w, r, fmt.Sprintf("/games/%d", created.ID))
}

// ImportBgg imports a game from BoardGameGeek. A game that is already in the
// collection is reported with a warning and the form is shown again.
func (h *GameHandler) ImportBgg(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	form := forms.BggImportFormFromValues(r.PostForm)
	req, fieldErrors := form.Validate()
	if !fieldErrors.Valid() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, pages.GameFormData{Tab: "bgg", Bgg: form, FieldErrors: fieldErrors})
		return
	}

	game, state, err := h.games.ImportBgg(r.Context(), req)
	if err != nil {
		h.logger.Warn("bgg import failed", slog.Int("bgg_id", req.BggID), slog.Any("error", err))
		middleware.SetFlash(w, middleware.FlashError, mutationMessage("Importing the game", err))
		redirect(w, r, "/games/new?tab=bgg")
		return
	}

	switch state {
	case model.ResultSuccess:
		middleware.SetFlash(w, middleware.FlashSuccess, game.Title+" was imported")
		redirect(w, r, fmt.Sprintf("/games/%d", game.ID))
	case model.ResultDuplicate:
		middleware.SetFlash(w, middleware.FlashWarning, "This game is already in your collection")
		redirect(w, r, "/games/new?tab=bgg")
	case model.ResultNotFound:
		middleware.SetFlash(w, middleware.FlashWarning, fmt.Sprintf("BoardGameGeek has no game with id %d", req.BggID))
		redirect(w, r, "/games/new?tab=bgg")
	default:
		middleware.SetFlash(w, middleware.FlashError, "The game could not be imported")
		redirect(w, r, "/games/new?tab=bgg")
	}
}

// View renders a game with its statistics, top players and recent sessions
func (h *GameHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}
	gameID := model.GameID(id)

	var (
		game   *model.Game
		stats  *model.GameStatistics
		top    []model.TopPlayer
		plays  *model.ListResult[model.Session]
		dir    *directory
		lookup map[model.PlayerID]model.Player
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { game, err = h.games.Get(ctx, gameID); return })
	g.Go(func() (err error) { stats, err = h.games.Stats(ctx, gameID); return })
	g.Go(func() (err error) { top, err = h.games.Top(ctx, gameID); return })
	g.Go(func() (err error) {
		plays, err = h.games.Plays(ctx, gameID, paging.NewPage(0, recentSessions))
		return
	})
	g.Go(func() (err error) { dir, err = h.rows.directory(ctx); return })
	g.Go(func() (err error) { lookup, err = h.players.Lookup(ctx); return })
	if err := g.Wait(); err != nil {
		failPage(w, r, h.logger, err)
		return
	}

	rows := make([]pages.TopPlayerRow, 0, len(top))
	for _, tp := range top {
		player, ok := lookup[tp.PlayerID]
		if !ok {
			player = model.Player{ID: tp.PlayerID, Name: "Unknown player"}
		}
		rows = append(rows, pages.TopPlayerRow{
			TopPlayer:     tp,
			Player:        player,
			WinPercentage: format.GetPercentage(float64(tp.Wins), float64(tp.PlayCount)),
		})
	}

	render(w, r, http.StatusOK, pages.GameDetail(pages.GameDetailData{
		PageData: pageData(r, game.Title, layout.NavGames, games.Resource),
		Game:     game,
		Stats:    stats,
		Top:      rows,
		Sessions: dir.rows(plays.Items),
		Count:    plays.Count,
	}))
}

// Edit renders the edit form of a game
func (h *GameHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}
	game, err := h.games.Get(r.Context(), model.GameID(id))
	if err != nil {
		failPage(w, r, h.logger, err)
		return
	}
	h.renderForm(w, r, http.StatusOK, pages.GameFormData{Tab: "manual", Form: forms.GameFormFromGame(game)})
}

// Update stores an edited game
func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	form := forms.GameFormFromValues(r.PostForm)
	form.ID = fmt.Sprint(id)
	game, fieldErrors := form.Validate()
	if !fieldErrors.Valid() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, pages.GameFormData{Tab: "manual", Form: form, FieldErrors: fieldErrors})
		return
	}

	// Keep the catalogue data the form does not edit
	if stored, err := h.games.Get(r.Context(), game.ID); err == nil {
		mergeCatalogue(game, stored)
	}

	updated, err := h.games.Update(r.Context(), game)
	if err != nil {
		h.logger.Warn("update game failed", slog.Int("game_id", id), slog.Any("error", err))
		h.renderForm(w, r, http.StatusOK, pages.GameFormData{Tab: "manual", Form: form, Error: mutationMessage("Saving the game", err)})
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, updated.Title+" was saved")
	redirect(w, r, fmt.Sprintf("/games/%d", updated.ID))
}

func mergeCatalogue(game, stored *model.Game) {
	game.Rating = stored.Rating
	game.Weight = stored.Weight
	game.BggID = stored.BggID
	game.Categories = stored.Categories
	game.Mechanics = stored.Mechanics
	game.People = stored.People
	game.Expansions = stored.Expansions
	if game.Image == "" {
		game.Image = stored.Image
	}
}

// Delete removes a game
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}

	if err := h.games.Delete(r.Context(), model.GameID(id)); err != nil {
		h.logger.Warn("delete game failed", slog.Int("game_id", id), slog.Any("error", err))
		middleware.SetFlash(w, middleware.FlashError, mutationMessage("Deleting the game", err))
		redirect(w, r, fmt.Sprintf("/games/%d", id))
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "The game was deleted")
	redirect(w, r, "/games")
}

func (h *GameHandler) pager(id model.GameID) sessionPager {
	return func(ctx context.Context, page paging.Page) (*model.ListResult[model.Session], error) {
		return h.games.Plays(ctx, id, page)
	}
}

// Sessions renders the paged session table of a game
func (h *GameHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}
	gameID := model.GameID(id)

	var (
		game *model.Game
		data pages.SessionsData
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { game, err = h.games.Get(ctx, gameID); return })
	g.Go(func() (err error) {
		data, err = h.rows.sessionsData(ctx, h.pager(gameID), queryInt(r, "page", 1))
		return
	})
	if err := g.Wait(); err != nil {
		failPage(w, r, h.logger, err)
		return
	}

	data.PageData = pageData(r, game.Title+" sessions", layout.NavGames, games.Resource)
	data.Heading = game.Title
	data.BackURL = fmt.Sprintf("/games/%d", id)
	data.BasePath = fmt.Sprintf("/games/%d/sessions", id)
	render(w, r, http.StatusOK, pages.Sessions(data))
}

// SessionsMore appends page ?page= to the load more list
func (h *GameHandler) SessionsMore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}

	data, err := h.rows.moreData(r.Context(), h.pager(model.GameID(id)), queryInt(r, "page", 1), seenIDs(r))
	if err != nil {
		failPage(w, r, h.logger, err)
		return
	}
	data.BasePath = fmt.Sprintf("/games/%d/sessions", id)
	render(w, r, http.StatusOK, pages.SessionsMore(data))
}
