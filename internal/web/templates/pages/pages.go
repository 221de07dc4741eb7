package pages

import (
	"github.com/mcoot/boardgametracker/internal/forms"
	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/services/badges"
	"github.com/mcoot/boardgametracker/internal/web/templates/components"
	"github.com/mcoot/boardgametracker/internal/web/templates/layout"
)

// GamesData holds the collection overview
type GamesData struct {
	layout.PageData
	Games  []model.Game
	State  model.GameState
	States []model.GameState
}

// GameFormData holds the new game page (manual and BoardGameGeek tabs) and
// the edit page
type GameFormData struct {
	layout.PageData
	Tab         string // "manual" or "bgg"
	Action      string
	Form        forms.GameForm
	Bgg         forms.BggImportForm
	FieldErrors forms.FieldErrors
	States      []model.GameState
	Error       string
}

// TopPlayerRow is a top player with the player record resolved
type TopPlayerRow struct {
	model.TopPlayer
	Player        model.Player
	WinPercentage int
}

// GameDetailData holds a game with its statistics
type GameDetailData struct {
	layout.PageData
	Game     *model.Game
	Stats    *model.GameStatistics
	Top      []TopPlayerRow
	Sessions []components.SessionRow
	Count    int
}

// SessionsData holds a paged session table (desktop) that can also grow
// incrementally (mobile load more)
type SessionsData struct {
	layout.PageData
	Heading    string
	BackURL    string
	BasePath   string
	Rows       []components.SessionRow
	Count      int
	Page       int
	TotalPages int
	HasMore    bool
	// Seen holds the ids the fetched page showed, for the next request
	Seen []model.SessionID
}

// PlayersData holds the player overview
type PlayersData struct {
	layout.PageData
	Players []model.Player
}

// PlayerFormData holds the create and edit player page
type PlayerFormData struct {
	layout.PageData
	Action      string
	Form        forms.PlayerForm
	FieldErrors forms.FieldErrors
	Error       string
}

// PlayerDetailData holds a player profile with statistics
type PlayerDetailData struct {
	layout.PageData
	Player        *model.Player
	Stats         *model.PlayerStatistics
	WinPercentage int
	Badges        []model.Badge
	Sessions      []components.SessionRow
	Count         int
}

// LocationsData holds the location list with its inline forms
type LocationsData struct {
	layout.PageData
	Locations   []model.Location
	Form        forms.LocationForm
	FieldErrors forms.FieldErrors
}

// SessionFormData holds the create and edit session page
type SessionFormData struct {
	layout.PageData
	Action      string
	Form        forms.SessionForm
	FieldErrors forms.FieldErrors
	Games       []model.Game
	Locations   []model.Location
	Selector    components.SelectorData
	Error       string
}

// SettingsData holds the settings page
type SettingsData struct {
	layout.PageData
	Form        forms.SettingsForm
	FieldErrors forms.FieldErrors
	Languages   []model.Language
	Environment *model.Environment
	DateFormats []string
	TimeFormats []string
	Currencies  []string
}

// BadgesData holds every badge grouped by type
type BadgesData struct {
	layout.PageData
	Groups []badges.Group
}

// ErrorData holds the error boundary page
type ErrorData struct {
	layout.PageData
	Status   int
	Message  string
	RetryURL string
}

// refreshVals asks the player selector to re-read the chosen game
const refreshVals = `{"op":"refresh"}`

// span prints a min–max range; a missing max prints only the min
func span(lo, hi *int) string {
	if hi == nil {
		return components.Int(lo)
	}
	return components.Int(lo) + "–" + components.Int(hi)
}

// firstLoad fetches the first page of cards once the list is shown
func firstLoad(data SessionsData) components.LoadMore {
	return components.LoadMore{BasePath: data.BasePath, Page: 1, HasMore: true, Initial: true}
}

// nextLoad fetches the page after the one just appended
func nextLoad(data SessionsData) components.LoadMore {
	return components.LoadMore{BasePath: data.BasePath, Page: data.Page + 1, HasMore: data.HasMore, Seen: data.Seen}
}
