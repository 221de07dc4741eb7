package components

import (
	"strconv"

	"github.com/mcoot/boardgametracker/internal/forms"
	"github.com/mcoot/boardgametracker/internal/model"
)

// Participant is one player of a session row
type Participant struct {
	model.PlayerSession
	Player model.Player
}

// SessionRow is a session with its game, location and players resolved
type SessionRow struct {
	model.Session
	Game         model.Game
	Location     model.Location
	Participants []Participant
}

// SelectorRow is one selected participant
type SelectorRow struct {
	Index int
	Entry forms.PlayerEntry
	Name  string
}

// SelectorData holds the participant selector and its entry editor
type SelectorData struct {
	Rows          []SelectorRow
	Players       []model.Player
	RequiresScore bool
	// Editor is the entry being added (EditIndex -1) or changed
	Editor      forms.PlayerEntry
	EditIndex   int
	FieldErrors forms.FieldErrors
}

// Editing reports whether the editor changes an existing row
func (d SelectorData) Editing() bool {
	return d.EditIndex >= 0
}

// EditValue is the editIndex form value; empty while adding
func (d SelectorData) EditValue() string {
	if !d.Editing() {
		return ""
	}
	return strconv.Itoa(d.EditIndex)
}

// LoadMore is the mobile load more button. Page is the page it fetches next.
type LoadMore struct {
	BasePath string
	Page     int
	HasMore  bool
	Seen     []model.SessionID
	// Initial buttons fetch their page as soon as they are shown
	Initial bool
}
