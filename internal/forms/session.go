package forms

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/boardgametracker/internal/model"
)

const (
	maxSessionMinutes = 14 * 24 * 60
	maxCommentLength  = 2000
)

// PlayerEntry is one participant row of the session form
type PlayerEntry struct {
	PlayerID  string
	Score     string
	Won       bool
	FirstPlay bool
	IsBot     bool
}

// PlayerEntryFromValues reads an entry whose fields are named prefix+field
func PlayerEntryFromValues(v url.Values, prefix string) PlayerEntry {
	return PlayerEntry{
		PlayerID:  value(v, prefix+"playerId"),
		Score:     value(v, prefix+"score"),
		Won:       checkbox(v, prefix+"won"),
		FirstPlay: checkbox(v, prefix+"firstPlay"),
		IsBot:     checkbox(v, prefix+"isBot"),
	}
}

// PlayerEntryFromSession converts a stored participation back to a row
func PlayerEntryFromSession(ps model.PlayerSession) PlayerEntry {
	return PlayerEntry{
		PlayerID:  strconv.Itoa(int(ps.PlayerID)),
		Score:     floatString(ps.Score),
		Won:       ps.Won,
		FirstPlay: ps.FirstPlay,
		IsBot:     ps.IsBot != nil && *ps.IsBot,
	}
}

// EntrySchema validates one participant row
type EntrySchema interface {
	Validate(e PlayerEntry) (*model.PlayerSession, FieldErrors)
	RequiresScore() bool
}

// PlayerEntrySchema picks the participant schema for a game: scoring games
// need a numeric score for every player, others ignore it
func PlayerEntrySchema(hasScoring bool) EntrySchema {
	if hasScoring {
		return scoringEntrySchema{}
	}
	return plainEntrySchema{}
}

type plainEntrySchema struct{}

func (plainEntrySchema) RequiresScore() bool { return false }

func (plainEntrySchema) Validate(e PlayerEntry) (*model.PlayerSession, FieldErrors) {
	errs := FieldErrors{}
	id := positiveID(errs, "playerId", "Player", e.PlayerID)
	if !errs.Valid() {
		return nil, errs
	}
	return newPlayerSession(id, e), nil
}

type scoringEntrySchema struct{}

func (scoringEntrySchema) RequiresScore() bool { return true }

func (scoringEntrySchema) Validate(e PlayerEntry) (*model.PlayerSession, FieldErrors) {
	errs := FieldErrors{}
	id := positiveID(errs, "playerId", "Player", e.PlayerID)

	var score *float64
	if e.Score == "" {
		errs.Add("score", "Score is required")
	} else {
		score = optionalFloat(errs, "score", "Score", e.Score, -1_000_000, 1_000_000)
	}

	if !errs.Valid() {
		return nil, errs
	}
	ps := newPlayerSession(id, e)
	ps.Score = score
	return ps, nil
}

func newPlayerSession(id int, e PlayerEntry) *model.PlayerSession {
	ps := &model.PlayerSession{
		PlayerID:  model.PlayerID(id),
		Won:       e.Won,
		FirstPlay: e.FirstPlay,
	}
	if e.IsBot {
		isBot := true
		ps.IsBot = &isBot
	}
	return ps
}

// PlayerSelection is the ordered list of participants being edited
type PlayerSelection []PlayerEntry

// Add appends entry
func (s PlayerSelection) Add(entry PlayerEntry) PlayerSelection {
	return append(slices.Clone(s), entry)
}

// Remove drops exactly the entry at index i; out of range is a no-op
func (s PlayerSelection) Remove(i int) PlayerSelection {
	if i < 0 || i >= len(s) {
		return s
	}
	return slices.Delete(slices.Clone(s), i, i+1)
}

// Update replaces the entry at index i without reordering the others
func (s PlayerSelection) Update(i int, entry PlayerEntry) PlayerSelection {
	if i < 0 || i >= len(s) {
		return s
	}
	out := slices.Clone(s)
	out[i] = entry
	return out
}

// Contains reports whether playerID is selected at any index other than skip
func (s PlayerSelection) Contains(playerID string, skip int) bool {
	for i, e := range s {
		if i != skip && e.PlayerID == playerID {
			return true
		}
	}
	return false
}

// FieldName is the form name of one field of the entry at index i
func FieldName(i int, field string) string {
	return fmt.Sprintf("players[%d].%s", i, field)
}

var entryField = regexp.MustCompile(`^players\[(\d+)\]\.playerId$`)

// PlayerSelectionFromValues reads the indexed participant fields in index
// order. Gaps left by removed rows are closed up.
func PlayerSelectionFromValues(v url.Values) PlayerSelection {
	var indexes []int
	for key := range v {
		m := entryField.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		if i, err := strconv.Atoi(m[1]); err == nil {
			indexes = append(indexes, i)
		}
	}
	slices.Sort(indexes)

	selection := make(PlayerSelection, 0, len(indexes))
	for _, i := range indexes {
		selection = append(selection, PlayerEntryFromValues(v, fmt.Sprintf("players[%d].", i)))
	}
	return selection
}

// Encode writes the selection as indexed form fields
func (s PlayerSelection) Encode(v url.Values) {
	for i, e := range s {
		v.Set(FieldName(i, "playerId"), e.PlayerID)
		if e.Score != "" {
			v.Set(FieldName(i, "score"), e.Score)
		}
		if e.Won {
			v.Set(FieldName(i, "won"), "on")
		}
		if e.FirstPlay {
			v.Set(FieldName(i, "firstPlay"), "on")
		}
		if e.IsBot {
			v.Set(FieldName(i, "isBot"), "on")
		}
	}
}

// SessionForm records or edits a play session
type SessionForm struct {
	ID          string
	GameID      string
	LocationID  string
	NewLocation string
	Start       string
	Minutes     string
	Comment     string
	Players     PlayerSelection
}

// SessionFormFromValues reads a submitted session form
func SessionFormFromValues(v url.Values) SessionForm {
	return SessionForm{
		ID:          value(v, "id"),
		GameID:      value(v, "gameId"),
		LocationID:  value(v, "locationId"),
		NewLocation: value(v, "newLocation"),
		Start:       value(v, "start"),
		Minutes:     value(v, "minutes"),
		Comment:     strings.TrimSpace(v.Get("comment")),
		Players:     PlayerSelectionFromValues(v),
	}
}

// SessionFormFromSession fills the edit form with a stored session
func SessionFormFromSession(s *model.Session) SessionForm {
	players := make(PlayerSelection, 0, len(s.PlayerSessions))
	for _, ps := range s.PlayerSessions {
		players = append(players, PlayerEntryFromSession(ps))
	}
	return SessionForm{
		ID:         strconv.Itoa(int(s.ID)),
		GameID:     strconv.Itoa(int(s.GameID)),
		LocationID: strconv.Itoa(int(s.LocationID)),
		Start:      s.Start.Format(DateTimeLayout),
		Minutes:    strconv.Itoa(s.Minutes),
		Comment:    s.Comment,
		Players:    players,
	}
}

// NewSessionForm starts an empty form for game, defaulting to now
func NewSessionForm(gameID string, now time.Time) SessionForm {
	return SessionForm{
		GameID:  gameID,
		Start:   now.Format(DateTimeLayout),
		Minutes: "60",
	}
}

// SessionRequest is a validated session form. NewLocation is set when the
// location must be created before the session is stored.
type SessionRequest struct {
	Session     *model.Session
	NewLocation string
}

// Validate checks the form against the participant schema of the selected
// game and assembles the session payload
func (f SessionForm) Validate(schema EntrySchema) (*SessionRequest, FieldErrors) {
	errs := FieldErrors{}

	session := &model.Session{
		GameID: model.GameID(positiveID(errs, "gameId", "Game", f.GameID)),
		Ended:  true,
	}

	newLocation := f.NewLocation
	if newLocation != "" {
		requiredText(errs, "newLocation", "Location name", newLocation, maxNameLength)
	} else {
		session.LocationID = model.LocationID(positiveID(errs, "locationId", "Location", f.LocationID))
	}

	if f.Start == "" {
		errs.Add("start", "Start is required")
	} else if start, err := time.Parse(DateTimeLayout, f.Start); err != nil {
		errs.Add("start", "Start must be a date and time")
	} else {
		session.Start = start
	}

	if minutes := optionalInt(errs, "minutes", "Duration", f.Minutes, 1, maxSessionMinutes); minutes != nil {
		session.Minutes = *minutes
	} else {
		errs.Add("minutes", "Duration is required")
	}

	if len([]rune(f.Comment)) > maxCommentLength {
		errs.Add("comment", fmt.Sprintf("Comment must be at most %d characters", maxCommentLength))
	}
	session.Comment = f.Comment

	if len(f.Players) == 0 {
		errs.Add("players", "Add at least one player")
	}
	for i, entry := range f.Players {
		ps, entryErrs := schema.Validate(entry)
		for field, msg := range entryErrs {
			errs.Add(FieldName(i, field), msg)
		}
		if entry.PlayerID != "" && f.Players[:i].Contains(entry.PlayerID, -1) {
			errs.Add(FieldName(i, "playerId"), "Player was already added")
		}
		if ps != nil {
			session.PlayerSessions = append(session.PlayerSessions, *ps)
		}
	}

	if f.ID != "" {
		session.ID = model.SessionID(positiveID(errs, "id", "Session id", f.ID))
	}

	if !errs.Valid() {
		return nil, errs
	}
	return &SessionRequest{Session: session, NewLocation: newLocation}, nil
}
