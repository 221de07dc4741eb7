package forms

import (
	"net/url"
	"strconv"

	"github.com/mcoot/boardgametracker/internal/model"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
	minYear              = -5000
	maxYear              = 2100
	maxPlayers           = 100
	maxPlayTime          = 14 * 24 * 60
	maxPrice             = 1_000_000
)

// GameForm is the manual game entry and edit form
type GameForm struct {
	ID            string
	Title         string
	Description   string
	YearPublished string
	MinPlayers    string
	MaxPlayers    string
	MinPlayTime   string
	MaxPlayTime   string
	MinAge        string
	State         string
	HasScoring    bool
	PricePaid     string
	AdditionDate  string
	Image         string
}

// GameFormFromValues reads a submitted game form
func GameFormFromValues(v url.Values) GameForm {
	return GameForm{
		ID:            value(v, "id"),
		Title:         value(v, "title"),
		Description:   value(v, "description"),
		YearPublished: value(v, "yearPublished"),
		MinPlayers:    value(v, "minPlayers"),
		MaxPlayers:    value(v, "maxPlayers"),
		MinPlayTime:   value(v, "minPlayTime"),
		MaxPlayTime:   value(v, "maxPlayTime"),
		MinAge:        value(v, "minAge"),
		State:         value(v, "state"),
		HasScoring:    checkbox(v, "hasScoring"),
		PricePaid:     value(v, "pricePaid"),
		AdditionDate:  value(v, "additionDate"),
		Image:         value(v, "image"),
	}
}

// GameFormFromGame fills the edit form with a stored game
func GameFormFromGame(g *model.Game) GameForm {
	return GameForm{
		ID:            strconv.Itoa(int(g.ID)),
		Title:         g.Title,
		Description:   g.Description,
		YearPublished: intString(g.YearPublished),
		MinPlayers:    intString(g.MinPlayers),
		MaxPlayers:    intString(g.MaxPlayers),
		MinPlayTime:   intString(g.MinPlayTime),
		MaxPlayTime:   intString(g.MaxPlayTime),
		MinAge:        intString(g.MinAge),
		State:         string(g.State),
		HasScoring:    g.HasScoring,
		PricePaid:     floatString(g.PricePaid),
		AdditionDate:  dateString(g.AdditionDate),
		Image:         g.Image,
	}
}

// Validate returns the game payload or the reasons it was rejected
func (f GameForm) Validate() (*model.Game, FieldErrors) {
	errs := FieldErrors{}

	game := &model.Game{
		Title:         requiredText(errs, "title", "Title", f.Title, maxTitleLength),
		Description:   f.Description,
		YearPublished: optionalInt(errs, "yearPublished", "Year published", f.YearPublished, minYear, maxYear),
		MinPlayers:    optionalInt(errs, "minPlayers", "Minimum players", f.MinPlayers, 1, maxPlayers),
		MaxPlayers:    optionalInt(errs, "maxPlayers", "Maximum players", f.MaxPlayers, 1, maxPlayers),
		MinPlayTime:   optionalInt(errs, "minPlayTime", "Minimum play time", f.MinPlayTime, 1, maxPlayTime),
		MaxPlayTime:   optionalInt(errs, "maxPlayTime", "Maximum play time", f.MaxPlayTime, 1, maxPlayTime),
		MinAge:        optionalInt(errs, "minAge", "Minimum age", f.MinAge, 0, 99),
		State:         model.GameState(f.State),
		HasScoring:    f.HasScoring,
		PricePaid:     optionalFloat(errs, "pricePaid", "Price", f.PricePaid, 0, maxPrice),
		AdditionDate:  optionalDate(errs, "additionDate", "Addition date", f.AdditionDate),
		Image:         f.Image,
	}

	if len([]rune(f.Description)) > maxDescriptionLength {
		errs.Add("description", "Description is too long")
	}
	if !game.State.Valid() {
		errs.Add("state", "Choose an ownership state")
	}
	if game.MinPlayers != nil && game.MaxPlayers != nil && *game.MinPlayers > *game.MaxPlayers {
		errs.Add("maxPlayers", "Maximum players must not be less than minimum players")
	}
	if game.MinPlayTime != nil && game.MaxPlayTime != nil && *game.MinPlayTime > *game.MaxPlayTime {
		errs.Add("maxPlayTime", "Maximum play time must not be less than minimum play time")
	}
	if f.ID != "" {
		if id, err := strconv.Atoi(f.ID); err == nil && id > 0 {
			game.ID = model.GameID(id)
		} else {
			errs.Add("id", "Game id is invalid")
		}
	}

	if !errs.Valid() {
		return nil, errs
	}
	return game, nil
}

// BggImportForm imports a game by its BoardGameGeek id
type BggImportForm struct {
	BggID        string
	State        string
	Price        string
	AdditionDate string
	HasScoring   bool
}

// BggImportFormFromValues reads a submitted import form
func BggImportFormFromValues(v url.Values) BggImportForm {
	return BggImportForm{
		BggID:        value(v, "bggId"),
		State:        value(v, "state"),
		Price:        value(v, "price"),
		AdditionDate: value(v, "additionDate"),
		HasScoring:   checkbox(v, "hasScoring"),
	}
}

// Validate returns the import payload or the reasons it was rejected
func (f BggImportForm) Validate() (*model.BggImport, FieldErrors) {
	errs := FieldErrors{}

	req := &model.BggImport{
		BggID:        positiveID(errs, "bggId", "BoardGameGeek id", f.BggID),
		State:        model.GameState(f.State),
		Price:        optionalFloat(errs, "price", "Price", f.Price, 0, maxPrice),
		AdditionDate: optionalDate(errs, "additionDate", "Addition date", f.AdditionDate),
		HasScoring:   f.HasScoring,
	}
	if !req.State.Valid() {
		errs.Add("state", "Choose an ownership state")
	}

	if !errs.Valid() {
		return nil, errs
	}
	return req, nil
}
