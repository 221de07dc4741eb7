package forms

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/boardgametracker/internal/model"
)

func TestGameFormValid(t *testing.T) {
	form := GameFormFromValues(url.Values{
		"title":         {"  Wingspan "},
		"yearPublished": {"2019"},
		"minPlayers":    {"1"},
		"maxPlayers":    {"5"},
		"state":         {"owned"},
		"hasScoring":    {"on"},
		"pricePaid":     {"49,95"},
		"additionDate":  {"2024-02-01"},
	})

	game, errs := form.Validate()
	require.True(t, errs.Valid(), errs)
	assert.Equal(t, "Wingspan", game.Title)
	assert.Equal(t, 2019, *game.YearPublished)
	assert.Equal(t, model.GameStateOwned, game.State)
	assert.True(t, game.HasScoring)
	assert.Equal(t, 49.95, *game.PricePaid)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *game.AdditionDate)
	assert.Nil(t, game.MinPlayTime)
}

func TestGameFormErrors(t *testing.T) {
	form := GameForm{
		MinPlayers: "4",
		MaxPlayers: "2",
		PricePaid:  "-1",
		State:      "borrowed",
		MinAge:     "ten",
	}

	game, errs := form.Validate()
	assert.Nil(t, game)
	assert.Equal(t, "Title is required", errs["title"])
	assert.True(t, errs.Has("maxPlayers"))
	assert.True(t, errs.Has("pricePaid"))
	assert.True(t, errs.Has("state"))
	assert.Equal(t, "Minimum age must be a whole number", errs["minAge"])
}

func TestGameFormRoundTrip(t *testing.T) {
	year := 2017
	game := &model.Game{ID: 9, Title: "Gloomhaven", YearPublished: &year, State: model.GameStateForTrade}

	parsed, errs := GameFormFromGame(game).Validate()
	require.True(t, errs.Valid())
	assert.Equal(t, game, parsed)
}

func TestBggImportForm(t *testing.T) {
	req, errs := BggImportFormFromValues(url.Values{
		"bggId": {"174430"},
		"state": {"wanted"},
	}).Validate()
	require.True(t, errs.Valid())
	assert.Equal(t, &model.BggImport{BggID: 174430, State: model.GameStateWanted}, req)

	_, errs = BggImportForm{BggID: "-3", State: "owned"}.Validate()
	assert.Equal(t, "BoardGameGeek id is invalid", errs["bggId"])

	_, errs = BggImportForm{State: "owned"}.Validate()
	assert.Equal(t, "BoardGameGeek id is required", errs["bggId"])
}

func TestPlayerAndLocationForms(t *testing.T) {
	player, errs := PlayerForm{Name: "Ada"}.Validate()
	require.True(t, errs.Valid())
	assert.Equal(t, "Ada", player.Name)

	long := make([]rune, maxNameLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, errs = PlayerForm{Name: string(long)}.Validate()
	assert.Equal(t, "Name must be at most 100 characters", errs["name"])

	_, errs = LocationForm{}.Validate()
	assert.Equal(t, "Name is required", errs["name"])

	location, errs := LocationForm{ID: "4", Name: "Kitchen"}.Validate()
	require.True(t, errs.Valid())
	assert.Equal(t, &model.Location{ID: 4, Name: "Kitchen"}, location)
}

func TestSettingsForm(t *testing.T) {
	settings, errs := SettingsForm{DateFormat: "YYYY-MM-DD", TimeFormat: "HH:mm", Currency: "USD", Language: "en-US"}.Validate()
	require.True(t, errs.Valid())
	assert.Equal(t, "USD", settings.Currency)

	_, errs = SettingsForm{DateFormat: "YYYY", TimeFormat: "HH", Currency: "E", Language: "en"}.Validate()
	assert.True(t, errs.Has("currency"))
}

func TestPlayerEntrySchemaDependsOnScoring(t *testing.T) {
	entry := PlayerEntry{PlayerID: "3", Won: true}

	ps, errs := PlayerEntrySchema(false).Validate(entry)
	require.True(t, errs.Valid())
	assert.Equal(t, model.PlayerSession{PlayerID: 3, Won: true}, *ps)

	_, errs = PlayerEntrySchema(true).Validate(entry)
	assert.Equal(t, "Score is required", errs["score"])

	entry.Score = "42.5"
	ps, errs = PlayerEntrySchema(true).Validate(entry)
	require.True(t, errs.Valid())
	assert.Equal(t, 42.5, *ps.Score)

	entry.Score = "lots"
	_, errs = PlayerEntrySchema(true).Validate(entry)
	assert.Equal(t, "Score must be a number", errs["score"])

	ps, errs = PlayerEntrySchema(false).Validate(entry)
	require.True(t, errs.Valid(), "non-scoring games ignore the score")
	assert.Nil(t, ps.Score)
}

func TestPlayerSelection(t *testing.T) {
	alice := PlayerEntry{PlayerID: "1"}
	bob := PlayerEntry{PlayerID: "2"}
	carol := PlayerEntry{PlayerID: "3"}

	var s PlayerSelection
	s = s.Add(alice).Add(bob).Add(carol)
	assert.Equal(t, PlayerSelection{alice, bob, carol}, s)

	removed := s.Remove(1)
	assert.Equal(t, PlayerSelection{alice, carol}, removed)
	assert.Equal(t, PlayerSelection{alice, bob, carol}, s, "original is untouched")

	winner := PlayerEntry{PlayerID: "2", Won: true, Score: "10"}
	updated := s.Update(1, winner)
	assert.Equal(t, PlayerSelection{alice, winner, carol}, updated)

	assert.Equal(t, s, s.Remove(7))
	assert.Equal(t, s, s.Update(-1, winner))

	assert.True(t, s.Contains("2", -1))
	assert.False(t, s.Contains("2", 1))
}

func TestPlayerSelectionRoundTrip(t *testing.T) {
	s := PlayerSelection{
		{PlayerID: "5", Score: "12", Won: true},
		{PlayerID: "7", FirstPlay: true, IsBot: true},
	}

	v := url.Values{}
	s.Encode(v)
	assert.Equal(t, "5", v.Get("players[0].playerId"))
	assert.Equal(t, "on", v.Get("players[1].isBot"))

	assert.Equal(t, s, PlayerSelectionFromValues(v))
}

func TestPlayerSelectionClosesGaps(t *testing.T) {
	v := url.Values{
		"players[4].playerId": {"9"},
		"players[0].playerId": {"1"},
		"players[2].playerId": {"5"},
		"players[2].won":      {"on"},
	}

	s := PlayerSelectionFromValues(v)
	require.Len(t, s, 3)
	assert.Equal(t, "1", s[0].PlayerID)
	assert.Equal(t, PlayerEntry{PlayerID: "5", Won: true}, s[1])
	assert.Equal(t, "9", s[2].PlayerID)
}

func validSessionValues() url.Values {
	v := url.Values{
		"gameId":     {"3"},
		"locationId": {"2"},
		"start":      {"2024-05-04T19:30"},
		"minutes":    {"95"},
		"comment":    {"close game"},
	}
	PlayerSelection{
		{PlayerID: "1", Score: "80", Won: true},
		{PlayerID: "2", Score: "75"},
	}.Encode(v)
	return v
}

func TestSessionFormValid(t *testing.T) {
	req, errs := SessionFormFromValues(validSessionValues()).Validate(PlayerEntrySchema(true))
	require.True(t, errs.Valid(), errs)

	s := req.Session
	assert.Equal(t, model.GameID(3), s.GameID)
	assert.Equal(t, model.LocationID(2), s.LocationID)
	assert.Equal(t, time.Date(2024, 5, 4, 19, 30, 0, 0, time.UTC), s.Start)
	assert.Equal(t, 95, s.Minutes)
	assert.True(t, s.Ended)
	require.Len(t, s.PlayerSessions, 2)
	assert.Equal(t, 80.0, *s.PlayerSessions[0].Score)
	assert.Equal(t, []model.PlayerID{1}, s.Winners())
	assert.Empty(t, req.NewLocation)
}

func TestSessionFormNewLocation(t *testing.T) {
	v := validSessionValues()
	v.Del("locationId")
	v.Set("newLocation", "Cabin")

	req, errs := SessionFormFromValues(v).Validate(PlayerEntrySchema(true))
	require.True(t, errs.Valid(), errs)
	assert.Equal(t, "Cabin", req.NewLocation)
	assert.Zero(t, req.Session.LocationID)
}

func TestSessionFormErrors(t *testing.T) {
	form := SessionForm{Minutes: "0", Start: "yesterday"}

	_, errs := form.Validate(PlayerEntrySchema(false))
	assert.Equal(t, "Game is required", errs["gameId"])
	assert.Equal(t, "Location is required", errs["locationId"])
	assert.Equal(t, "Start must be a date and time", errs["start"])
	assert.True(t, errs.Has("minutes"))
	assert.Equal(t, "Add at least one player", errs["players"])
}

func TestSessionFormRejectsTooLong(t *testing.T) {
	v := validSessionValues()
	v.Set("minutes", "20161")

	_, errs := SessionFormFromValues(v).Validate(PlayerEntrySchema(true))
	assert.Equal(t, "Duration must be between 1 and 20160", errs["minutes"])
}

func TestSessionFormPlayerErrors(t *testing.T) {
	v := validSessionValues()
	v.Del("players[1].score")
	v.Set("players[1].playerId", "1")

	_, errs := SessionFormFromValues(v).Validate(PlayerEntrySchema(true))
	assert.Equal(t, "Score is required", errs["players[1].score"])
	assert.Equal(t, "Player was already added", errs["players[1].playerId"])
	assert.False(t, errs.Has("players[0].playerId"))
}

func TestSessionFormFromSession(t *testing.T) {
	score := 12.0
	stored := &model.Session{
		ID:         8,
		GameID:     3,
		LocationID: 1,
		Start:      time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC),
		Minutes:    30,
		Ended:      true,
		PlayerSessions: []model.PlayerSession{
			{PlayerID: 4, Score: &score, Won: true},
		},
	}

	req, errs := SessionFormFromSession(stored).Validate(PlayerEntrySchema(true))
	require.True(t, errs.Valid(), errs)
	assert.Equal(t, stored, req.Session)
}

func TestFieldErrorsErr(t *testing.T) {
	assert.NoError(t, FieldErrors{}.Err())

	errs := FieldErrors{}
	errs.Add("start", "Start is required")
	errs.Add("gameId", "Game is required")
	errs.Add("gameId", "ignored")

	err := errs.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalid)
	assert.Equal(t, "invalid request: Game is required; Start is required", err.Error())
}

func TestNumbersRejectNaNAndInfinity(t *testing.T) {
	for _, raw := range []string{"NaN", "nan", "Inf", "-Inf", "+infinity"} {
		_, errs := PlayerEntrySchema(true).Validate(PlayerEntry{PlayerID: "3", Score: raw})
		assert.Equal(t, "Score must be a number", errs["score"], raw)

		_, errs = GameForm{Title: "Azul", State: "owned", PricePaid: raw}.Validate()
		assert.Equal(t, "Price must be a number", errs["pricePaid"], raw)

		_, errs = BggImportForm{BggID: "174430", State: "owned", Price: raw}.Validate()
		assert.Equal(t, "Price must be a number", errs["price"], raw)
	}
}
