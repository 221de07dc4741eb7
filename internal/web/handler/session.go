package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/boardgametracker/internal/dependencies/clock"
	"github.com/mcoot/boardgametracker/internal/forms"
	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/services/games"
	"github.com/mcoot/boardgametracker/internal/services/locations"
	"github.com/mcoot/boardgametracker/internal/services/players"
	"github.com/mcoot/boardgametracker/internal/services/sessions"
	"github.com/mcoot/boardgametracker/internal/web/middleware"
	"github.com/mcoot/boardgametracker/internal/web/templates/components"
	"github.com/mcoot/boardgametracker/internal/web/templates/layout"
	"github.com/mcoot/boardgametracker/internal/web/templates/pages"
)

// Player selector operations
const (
	opSave    = "save"
	opEdit    = "edit"
	opRemove  = "remove"
	opRefresh = "refresh"
)

// entryPrefix names the fields of the entry editor
const entryPrefix = "entry."

// SessionHandler handles recording and editing play sessions
type SessionHandler struct {
	sessions  *sessions.Service
	games     *games.Service
	players   *players.Service
	locations *locations.Service
	clock     clock.Clock
	logger    *slog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessionService *sessions.Service, gameService *games.Service, playerService *players.Service, locationService *locations.Service, clk clock.Clock, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:  sessionService,
		games:     gameService,
		players:   playerService,
		locations: locationService,
		clock:     clk,
		logger:    logger.With(slog.String("handler", "sessions")),
	}
}

// formChoices are the options of the session form selects
type formChoices struct {
	games     []model.Game
	players   []model.Player
	locations []model.Location
}

func (h *SessionHandler) choices(r *http.Request) (*formChoices, error) {
	c := &formChoices{}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { c.games, err = h.games.List(ctx, ""); return })
	g.Go(func() (err error) { c.players, err = h.players.List(ctx); return })
	g.Go(func() (err error) { c.locations, err = h.locations.List(ctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}

// schema picks the participant schema of the selected game
func (c *formChoices) schema(gameID string) forms.EntrySchema {
	for _, g := range c.games {
		if strconv.Itoa(int(g.ID)) == gameID {
			return forms.PlayerEntrySchema(g.HasScoring)
		}
	}
	return forms.PlayerEntrySchema(false)
}

func (c *formChoices) selector(selection forms.PlayerSelection, gameID string, editor forms.PlayerEntry, editIndex int, fieldErrors forms.FieldErrors) components.SelectorData {
	names := make(map[string]string, len(c.players))
	for _, p := range c.players {
		names[strconv.Itoa(int(p.ID))] = p.Name
	}

	rows := make([]components.SelectorRow, 0, len(selection))
	for i, entry := range selection {
		name, ok := names[entry.PlayerID]
		if !ok {
			name = "Unknown player"
		}
		rows = append(rows, components.SelectorRow{Index: i, Entry: entry, Name: name})
	}
	if fieldErrors == nil {
		fieldErrors = forms.FieldErrors{}
	}
	return components.SelectorData{
		Rows:          rows,
		Players:       c.players,
		RequiresScore: c.schema(gameID).RequiresScore(),
		Editor:        editor,
		EditIndex:     editIndex,
		FieldErrors:   fieldErrors,
	}
}

func (h *SessionHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, c *formChoices, form forms.SessionForm, fieldErrors forms.FieldErrors, errMsg string) {
	title := "Log a session"
	action := "/sessions/new"
	if form.ID != "" {
		title = "Edit session"
		action = "/sessions/update/" + form.ID
	}
	if fieldErrors == nil {
		fieldErrors = forms.FieldErrors{}
	}

	render(w, r, status, pages.SessionForm(pages.SessionFormData{
		PageData:    pageData(r, title, layout.NavSessions, ""),
		Action:      action,
		Form:        form,
		FieldErrors: fieldErrors,
		Games:       c.games,
		Locations:   c.locations,
		Selector:    c.selector(form.Players, form.GameID, forms.PlayerEntry{}, -1, fieldErrors),
		Error:       errMsg,
	}))
}

// New renders an empty session form, with the game preselected when the
// route names one
func (h *SessionHandler) New(w http.ResponseWriter, r *http.Request) {
	c, err := h.choices(r)
	if err != nil {
		failPage(w, r, h.logger, err)
		return
	}

	gameID := ""
	if id, ok := pathID(r, "gameId"); ok {
		gameID = strconv.Itoa(id)
	}
	h.renderForm(w, r, http.StatusOK, c, forms.NewSessionForm(gameID, clock.StartOfMinute(h.clock)), nil, "")
}

// Create records a session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// Edit renders the form of a stored session
func (h *SessionHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "sessionId")
	if !ok {
		notFound(w, r, h.logger)
		return
	}

	var (
		session *model.Session
		c       *formChoices
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { session, err = h.sessions.Get(ctx, model.SessionID(id)); return })
	g.Go(func() (err error) { c, err = h.choices(r.WithContext(ctx)); return })
	if err := g.Wait(); err != nil {
		failPage(w, r, h.logger, err)
		return
	}

	h.renderForm(w, r, http.StatusOK, c, forms.SessionFormFromSession(session), nil, "")
}

// Update stores an edited session
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "sessionId")
	if !ok {
		notFound(w, r, h.logger)
		return
	}
	h.save(w, r, strconv.Itoa(id))
}

func (h *SessionHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	c, err := h.choices(r)
	if err != nil {
		failPage(w, r, h.logger, err)
		return
	}

	form := forms.SessionFormFromValues(r.PostForm)
	form.ID = id
	req, fieldErrors := form.Validate(c.schema(form.GameID))
	if !fieldErrors.Valid() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, c, form, fieldErrors, "")
		return
	}

	var saved *model.Session
	if id == "" {
		saved, err = h.sessions.Create(r.Context(), req.Session, req.NewLocation)
	} else {
		saved, err = h.sessions.Update(r.Context(), req.Session, req.NewLocation)
	}
	if err != nil {
		h.logger.Warn("save session failed", slog.String("session_id", id), slog.Any("error", err))
		h.renderForm(w, r, http.StatusOK, c, form, nil, mutationMessage("Saving the session", err))
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "The session was saved")
	redirect(w, r, fmt.Sprintf("/games/%d", saved.GameID))
}

// SelectPlayers applies one player selector operation and renders the
// selector again. The selection travels in the indexed form fields.
func (h *SessionHandler) SelectPlayers(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	c, err := h.choices(r)
	if err != nil {
		failPage(w, r, h.logger, err)
		return
	}

	v := r.PostForm
	gameID := v.Get("gameId")
	selection := forms.PlayerSelectionFromValues(v)
	editor := forms.PlayerEntryFromValues(v, entryPrefix)
	editIndex := indexValue(v.Get("editIndex"), len(selection))
	fieldErrors := forms.FieldErrors{}

	switch v.Get("op") {
	case opRemove:
		if i := indexValue(v.Get("index"), len(selection)); i >= 0 {
			selection = selection.Remove(i)
		}
		editor, editIndex = forms.PlayerEntry{}, -1
	case opEdit:
		if i := indexValue(v.Get("index"), len(selection)); i >= 0 {
			editor, editIndex = selection[i], i
		}
	case opSave:
		_, entryErrs := c.schema(gameID).Validate(editor)
		for field, msg := range entryErrs {
			fieldErrors.Add(entryPrefix+field, msg)
		}
		if editor.PlayerID != "" && selection.Contains(editor.PlayerID, editIndex) {
			fieldErrors.Add(entryPrefix+"playerId", "Player was already added")
		}
		if fieldErrors.Valid() {
			if editIndex >= 0 {
				selection = selection.Update(editIndex, editor)
			} else {
				selection = selection.Add(editor)
			}
			editor, editIndex = forms.PlayerEntry{}, -1
		}
	case opRefresh:
		// The game changed; the schema may now require scores
	default:
		http.Error(w, "Unknown operation", http.StatusBadRequest)
		return
	}

	render(w, r, http.StatusOK, components.PlayerSelector(c.selector(selection, gameID, editor, editIndex, fieldErrors)))
}

// indexValue parses an index into a selection of length n, or -1
func indexValue(raw string, n int) int {
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 || i >= n {
		return -1
	}
	return i
}

// Delete removes a session
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}

	back := "/games"
	if session, err := h.sessions.Get(r.Context(), model.SessionID(id)); err == nil {
		back = fmt.Sprintf("/games/%d", session.GameID)
	}

	if err := h.sessions.Delete(r.Context(), model.SessionID(id)); err != nil {
		h.logger.Warn("delete session failed", slog.Int("session_id", id), slog.Any("error", err))
		middleware.SetFlash(w, middleware.FlashError, mutationMessage("Deleting the session", err))
	} else {
		middleware.SetFlash(w, middleware.FlashSuccess, "The session was deleted")
	}
	redirect(w, r, back)
}

// Repeat logs a new play of a session's game at the same location with the
// same players, then opens it for editing so scores can be filled in
func (h *SessionHandler) Repeat(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}

	original, err := h.sessions.Get(r.Context(), model.SessionID(id))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			notFound(w, r, h.logger)
			return
		}
		failPage(w, r, h.logger, err)
		return
	}

	play := &model.Play{
		GameID:     original.GameID,
		LocationID: original.LocationID,
		Start:      clock.StartOfMinute(h.clock),
		Minutes:    original.Minutes,
	}
	for _, ps := range original.PlayerSessions {
		play.PlayerSessions = append(play.PlayerSessions, model.PlayerSession{PlayerID: ps.PlayerID, IsBot: ps.IsBot})
	}

	created, err := h.sessions.QuickLog(r.Context(), play)
	if err != nil {
		h.logger.Warn("repeat session failed", slog.Int("session_id", id), slog.Any("error", err))
		middleware.SetFlash(w, middleware.FlashError, mutationMessage("Logging the play", err))
		redirect(w, r, fmt.Sprintf("/games/%d", original.GameID))
		return
	}
	middleware.SetFlash(w, middleware.FlashSuccess, "Play logged, add the results")
	redirect(w, r, fmt.Sprintf("/sessions/update/%d", created.ID))
}

// DeletePlay removes a play from the compact list through the plays endpoint
func (h *SessionHandler) DeletePlay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}

	back := "/games"
	if session, err := h.sessions.Get(r.Context(), model.SessionID(id)); err == nil {
		back = fmt.Sprintf("/games/%d", session.GameID)
	}

	if err := h.sessions.DeletePlay(r.Context(), model.SessionID(id)); err != nil {
		h.logger.Warn("delete play failed", slog.Int("session_id", id), slog.Any("error", err))
		middleware.SetFlash(w, middleware.FlashError, mutationMessage("Deleting the play", err))
	} else {
		middleware.SetFlash(w, middleware.FlashSuccess, "The play was deleted")
	}
	redirect(w, r, back)
}
