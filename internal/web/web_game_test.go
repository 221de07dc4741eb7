package web_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/boardgametracker/internal/model"
)

func TestGamesListShowsCollection(t *testing.T) {
	ts := newWebTestServer(t)
	ts.api.AddGame(model.Game{Title: "Brass", State: model.GameStateWanted})
	ts.api.AddGame(model.Game{Title: "Azul", State: model.GameStateOwned})

	doc := ts.page("/games")

	cards := doc.Find(".game-card .title")
	require.Equal(t, 2, cards.Length())
	assert.Equal(t, "Azul", cards.Eq(0).Text(), "Expected games sorted by title")
	assert.Equal(t, "Brass", cards.Eq(1).Text())
	assertContainsText(t, doc, "nav.menu a.active", "Games")
	assertContainsElement(t, doc, `main#content[sse-connect="/events/game"]`)
}

func TestGamesListFiltersByState(t *testing.T) {
	ts := newWebTestServer(t)
	ts.api.AddGame(model.Game{Title: "Brass", State: model.GameStateWanted})
	ts.api.AddGame(model.Game{Title: "Azul", State: model.GameStateOwned})

	doc := ts.page("/games?state=wanted")
	cards := doc.Find(".game-card .title")
	require.Equal(t, 1, cards.Length())
	assert.Equal(t, "Brass", cards.Text())
	assertContainsText(t, doc, ".filters a.active", "Wanted")

	// An unknown state shows everything
	doc = ts.page("/games?state=stolen")
	assert.Equal(t, 2, doc.Find(".game-card").Length())
}

func TestGamesListEmpty(t *testing.T) {
	ts := newWebTestServer(t)
	doc := ts.page("/games")
	assertContainsText(t, doc, ".game-grid .empty", "No games found")
}

func TestHomeRedirectsToGames(t *testing.T) {
	ts := newWebTestServer(t)
	rr := ts.get("/")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/games", rr.Header().Get("Location"))
}

func TestBggImportSuccess(t *testing.T) {
	ts := newWebTestServer(t)
	ts.api.AddBggGame(174430, model.Game{Title: "Gloomhaven"})

	form := url.Values{"bggId": {"174430"}, "state": {"owned"}, "price": {"99.5"}, "hasScoring": {"on"}}
	rr := ts.post("/games/bgg", form)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	location := rr.Header().Get("Location")
	assert.Regexp(t, `^/games/\d+$`, location)

	rr = ts.followRedirect(rr)
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertFlash(t, doc, "success", "Gloomhaven was imported")
	assertContainsText(t, doc, ".game-detail h1", "Gloomhaven")

	// The toast is shown once
	doc = ts.page(location)
	assertNotContainsElement(t, doc, "[data-flash-type]")
}

func TestBggImportDuplicate(t *testing.T) {
	ts := newWebTestServer(t)
	ts.api.AddBggGame(174430, model.Game{Title: "Gloomhaven"})
	form := url.Values{"bggId": {"174430"}, "state": {"owned"}}

	rr := ts.post("/games/bgg", form)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	ts.followRedirect(rr)

	rr = ts.post("/games/bgg", form)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/games/new?tab=bgg", rr.Header().Get("Location"))

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "warning", "This game is already in your collection")
	assertContainsElement(t, doc, "form.bgg-form")

	games, _, _, _ := ts.api.Counts()
	assert.Equal(t, 1, games)
}

func TestBggImportUnknownID(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/games/bgg", url.Values{"bggId": {"5"}, "state": {"owned"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "warning", "BoardGameGeek has no game with id 5")
}

func TestBggImportValidation(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/games/bgg", url.Values{"bggId": {"abc"}, "state": {"owned"}})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, `.field-error[data-field="bggId"]`, "BoardGameGeek id is invalid")
	val, _ := doc.Find(`input[name="bggId"]`).Attr("value")
	assert.Equal(t, "abc", val, "Expected the rejected input to be kept")
	assert.Equal(t, 0, ts.api.Requests(http.MethodPost, "/game/bgg"))
}

func TestBggImportBackendFailure(t *testing.T) {
	ts := newWebTestServer(t)
	ts.api.Fail(http.MethodPost, "/game/bgg", http.StatusServiceUnavailable)

	rr := ts.post("/games/bgg", url.Values{"bggId": {"12"}, "state": {"owned"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "error", "Importing the game failed: the backend is not reachable")
}

func TestNewGameTabs(t *testing.T) {
	ts := newWebTestServer(t)

	doc := ts.page("/games/new")
	assertContainsElement(t, doc, "form.game-form")
	assertContainsText(t, doc, ".tabs a.active", "Manual")

	doc = ts.page("/games/new?tab=bgg")
	assertContainsElement(t, doc, "form.bgg-form")
	assertContainsText(t, doc, ".tabs a.active", "BoardGameGeek")
}

func TestCreateGameValidation(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{"title": {""}, "state": {"owned"}, "minPlayers": {"4"}, "maxPlayers": {"2"}, "pricePaid": {"cheap"}}
	rr := ts.post("/games", form)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, `.field-error[data-field="title"]`, "Title is required")
	assertContainsText(t, doc, `.field-error[data-field="maxPlayers"]`, "must not be less than minimum players")
	assertContainsText(t, doc, `.field-error[data-field="pricePaid"]`, "Price must be a number")
	val, _ := doc.Find(`input[name="minPlayers"]`).Attr("value")
	assert.Equal(t, "4", val)

	games, _, _, _ := ts.api.Counts()
	assert.Equal(t, 0, games)
}

func TestCreateGameWithHTMX(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.postHTMX("/games", url.Values{"title": {"Cascadia"}, "state": {"owned"}, "minPlayers": {"1"}, "maxPlayers": {"4"}})
	require.Equal(t, http.StatusOK, rr.Code)
	location := rr.Header().Get("HX-Redirect")
	assert.Regexp(t, `^/games/\d+$`, location)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "success", "Cascadia was added")
	assertContainsText(t, doc, ".facts", "1–4")
}

func TestGameDetailShowsStatistics(t *testing.T) {
	ts := newWebTestServer(t)
	price := 40.0
	game := ts.api.AddGame(model.Game{Title: "Azul", HasScoring: true, PricePaid: &price})
	alice := ts.api.AddPlayer(model.Player{Name: "Alice"})
	bob := ts.api.AddPlayer(model.Player{Name: "Bob"})
	home := ts.api.AddLocation(model.Location{Name: "Home"})

	start := time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC)
	for i, winner := range []model.PlayerID{alice.ID, alice.ID, bob.ID, alice.ID} {
		ts.api.AddSession(model.Session{
			GameID:     game.ID,
			LocationID: home.ID,
			Start:      start.AddDate(0, 0, i),
			Minutes:    30,
			PlayerSessions: []model.PlayerSession{
				{PlayerID: alice.ID, Score: score(50 + float64(i)), Won: winner == alice.ID},
				{PlayerID: bob.ID, Score: score(45), Won: winner == bob.ID},
			},
		})
	}

	doc := ts.page(fmt.Sprintf("/games/%d", game.ID))

	assertContainsText(t, doc, `[data-stat="playCount"]`, "4")
	assertContainsText(t, doc, `[data-stat="totalPlayedTime"]`, "2h")
	assertContainsText(t, doc, `[data-stat="uniquePlayerCount"]`, "2")
	assertContainsText(t, doc, `[data-stat="highScore"]`, "53")
	assertContainsText(t, doc, `[data-stat="pricePerPlay"]`, "10.00")

	top := doc.Find(".top-players li")
	require.Equal(t, 2, top.Length())
	assert.Contains(t, top.Eq(0).Text(), "Alice")
	assert.Contains(t, top.Eq(0).Find(".percentage").Text(), "75%")
	assert.Contains(t, top.Eq(1).Find(".percentage").Text(), "25%")

	assert.Equal(t, 4, doc.Find(".recent-sessions tr.session").Length())
	assertContainsText(t, doc, ".recent-sessions tr.session", "Home")
	assertNotContainsElement(t, doc, fmt.Sprintf(`a[href="/games/%d/sessions"]`, game.ID))
}

func TestGameDetailLinksAllSessions(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul"})
	addSessions(ts, game.ID, 7)

	doc := ts.page(fmt.Sprintf("/games/%d", game.ID))
	assert.Equal(t, 5, doc.Find(".recent-sessions tr.session").Length())
	assertContainsText(t, doc, fmt.Sprintf(`a[href="/games/%d/sessions"]`, game.ID), "All 7 sessions")
}

func TestGameDetailShowsPlaceholderForDeletedRecords(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul"})
	ts.api.AddSession(model.Session{
		GameID:         game.ID,
		LocationID:     999,
		Start:          time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC),
		Minutes:        20,
		PlayerSessions: []model.PlayerSession{{PlayerID: 998}},
	})

	doc := ts.page(fmt.Sprintf("/games/%d", game.ID))
	assertContainsText(t, doc, "tr.session", "Unknown location")
	assertContainsText(t, doc, "tr.session .participant", "Unknown player")
}

func TestGameDetailNotFound(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/games/404")
	require.Equal(t, http.StatusNotFound, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, `section.error-boundary[data-status="404"]`)
	assertNotContainsElement(t, doc, `[data-action="retry"]`)
	assertContainsElement(t, doc, `[data-action="home"]`)
}

func TestEditGameKeepsCatalogueData(t *testing.T) {
	ts := newWebTestServer(t)
	rating := 8.1
	game := ts.api.AddGame(model.Game{
		Title:      "Azul",
		Rating:     &rating,
		Categories: []model.Link{{ID: 1, Name: "Abstract"}},
	})

	doc := ts.page(fmt.Sprintf("/games/%d/edit", game.ID))
	val, _ := doc.Find(`input[name="title"]`).Attr("value")
	assert.Equal(t, "Azul", val)
	assertNotContainsElement(t, doc, ".tabs")

	rr := ts.post(fmt.Sprintf("/games/%d", game.ID), url.Values{"title": {"Azul Deluxe"}, "state": {"forTrade"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc = parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "success", "Azul Deluxe was saved")
	assertContainsText(t, doc, ".game-detail .state", "For trade")

	stored, ok := ts.api.Game(game.ID)
	require.True(t, ok)
	assert.Equal(t, "Azul Deluxe", stored.Title)
	require.NotNil(t, stored.Rating)
	assert.InDelta(t, 8.1, *stored.Rating, 0.001)
	assert.Len(t, stored.Categories, 1)
}

func TestDeleteGame(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul"})

	// Warm the list cache so the delete must invalidate it
	doc := ts.page("/games")
	require.Equal(t, 1, doc.Find(".game-card").Length())

	rr := ts.post(fmt.Sprintf("/games/%d/delete", game.ID), nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/games", rr.Header().Get("Location"))

	doc = parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "success", "The game was deleted")
	assert.Equal(t, 0, doc.Find(".game-card").Length())
}

func TestDeleteMissingGameShowsError(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/games/77/delete", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/games/77", rr.Header().Get("Location"))
	assert.Contains(t, ts.cookies.cookies["flash"].Value, "error")
}

// Shared fixtures

func score(v float64) *float64 { return &v }

// addSessions stores n sessions of game one hour apart, newest last
func addSessions(ts *webTestServer, game model.GameID, n int) []model.Session {
	start := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)
	out := make([]model.Session, 0, n)
	for i := range n {
		out = append(out, ts.api.AddSession(model.Session{
			GameID:  game,
			Start:   start.Add(time.Duration(i) * time.Hour),
			Minutes: 30,
		}))
	}
	return out
}
