package forms

import (
	"net/url"
	"strconv"

	"github.com/mcoot/boardgametracker/internal/model"
)

const maxNameLength = 100

// PlayerForm creates or renames a player
type PlayerForm struct {
	ID    string
	Name  string
	Image string
}

// PlayerFormFromValues reads a submitted player form
func PlayerFormFromValues(v url.Values) PlayerForm {
	return PlayerForm{
		ID:    value(v, "id"),
		Name:  value(v, "name"),
		Image: value(v, "image"),
	}
}

// PlayerFormFromPlayer fills the edit form with a stored player
func PlayerFormFromPlayer(p *model.Player) PlayerForm {
	return PlayerForm{
		ID:    strconv.Itoa(int(p.ID)),
		Name:  p.Name,
		Image: p.Image,
	}
}

// Validate returns the player payload or the reasons it was rejected
func (f PlayerForm) Validate() (*model.Player, FieldErrors) {
	errs := FieldErrors{}
	player := &model.Player{
		Name:  requiredText(errs, "name", "Name", f.Name, maxNameLength),
		Image: f.Image,
	}
	if f.ID != "" {
		player.ID = model.PlayerID(positiveID(errs, "id", "Player id", f.ID))
	}
	if !errs.Valid() {
		return nil, errs
	}
	return player, nil
}

// LocationForm creates or renames a location
type LocationForm struct {
	ID   string
	Name string
}

// LocationFormFromValues reads a submitted location form
func LocationFormFromValues(v url.Values) LocationForm {
	return LocationForm{
		ID:   value(v, "id"),
		Name: value(v, "name"),
	}
}

// Validate returns the location payload or the reasons it was rejected
func (f LocationForm) Validate() (*model.Location, FieldErrors) {
	errs := FieldErrors{}
	location := &model.Location{
		Name: requiredText(errs, "name", "Name", f.Name, maxNameLength),
	}
	if f.ID != "" {
		location.ID = model.LocationID(positiveID(errs, "id", "Location id", f.ID))
	}
	if !errs.Valid() {
		return nil, errs
	}
	return location, nil
}

// SettingsForm updates the display settings
type SettingsForm struct {
	DateFormat string
	TimeFormat string
	Currency   string
	Language   string
}

// SettingsFormFromValues reads a submitted settings form
func SettingsFormFromValues(v url.Values) SettingsForm {
	return SettingsForm{
		DateFormat: value(v, "dateFormat"),
		TimeFormat: value(v, "timeFormat"),
		Currency:   value(v, "currency"),
		Language:   value(v, "language"),
	}
}

// SettingsFormFromSettings fills the form with the stored settings
func SettingsFormFromSettings(s *model.Settings) SettingsForm {
	return SettingsForm{
		DateFormat: s.DateFormat,
		TimeFormat: s.TimeFormat,
		Currency:   s.Currency,
		Language:   s.Language,
	}
}

// Validate returns the settings payload or the reasons it was rejected
func (f SettingsForm) Validate() (*model.Settings, FieldErrors) {
	errs := FieldErrors{}
	settings := &model.Settings{
		DateFormat: requiredText(errs, "dateFormat", "Date format", f.DateFormat, 32),
		TimeFormat: requiredText(errs, "timeFormat", "Time format", f.TimeFormat, 32),
		Currency:   requiredText(errs, "currency", "Currency", f.Currency, 3),
		Language:   requiredText(errs, "language", "Language", f.Language, 16),
	}
	if f.Currency != "" && len(f.Currency) != 3 {
		errs.Add("currency", "Currency must be a three letter code")
	}
	if !errs.Valid() {
		return nil, errs
	}
	return settings, nil
}
