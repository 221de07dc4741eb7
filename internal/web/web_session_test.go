package web_test

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/boardgametracker/internal/model"
)

func TestGameSessionsPaging(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul"})
	addSessions(ts, game.ID, 25)
	base := fmt.Sprintf("/games/%d/sessions", game.ID)

	doc := ts.page(base)
	assertContainsText(t, doc, ".count", "25 sessions")
	assert.Equal(t, 10, doc.Find(".desktop tr.session").Length())
	assertContainsText(t, doc, ".pagination a.current", "1")
	assertNotContainsElement(t, doc, `.pagination a[rel="prev"]`)

	doc = ts.page(base + "?page=3")
	assert.Equal(t, 5, doc.Find(".desktop tr.session").Length())
	assertContainsText(t, doc, ".pagination a.current", "3")
	assertNotContainsElement(t, doc, `.pagination a[rel="next"]`)
	href, _ := doc.Find(`.pagination a[rel="prev"]`).Attr("href")
	assert.Equal(t, base+"?page=2", href)

	// The mobile list loads its first page once shown
	button := doc.Find(".mobile button#load-more")
	assert.Equal(t, base+"/more?page=1", button.AttrOr("hx-get", ""))
	assert.Equal(t, "load", button.AttrOr("hx-trigger", ""))
	assert.Equal(t, "beforeend", button.AttrOr("hx-swap", ""))
	assertContainsElement(t, doc, ".mobile #session-cards")
}

func TestGameSessionsPagesAreNewestFirst(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul"})
	stored := addSessions(ts, game.ID, 12)

	doc := ts.page(fmt.Sprintf("/games/%d/sessions", game.ID))
	first, _ := doc.Find(".desktop tr.session").First().Attr("data-session-id")
	assert.Equal(t, strconv.Itoa(int(stored[11].ID)), first)
}

// cardIDs lists the session ids of the cards in doc
func cardIDs(doc *goquery.Document) []string {
	var ids []string
	doc.Find(".session-card").Each(func(_ int, s *goquery.Selection) {
		ids = append(ids, s.AttrOr("data-session-id", ""))
	})
	return ids
}

func TestSessionsLoadMore(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul"})
	addSessions(ts, game.ID, 25)
	base := fmt.Sprintf("/games/%d/sessions", game.ID)

	shown := map[string]bool{}
	next := base + "/more?page=1"
	for _, want := range []int{10, 10, 5} {
		doc := ts.page(next)
		ids := cardIDs(doc)
		assert.Len(t, ids, want)
		for _, id := range ids {
			assert.False(t, shown[id], "session %s appended twice", id)
			shown[id] = true
		}

		button := doc.Find("button#load-more")
		assert.Equal(t, "true", button.AttrOr("hx-swap-oob", ""))
		next = button.AttrOr("hx-get", "")
	}
	assert.Len(t, shown, 25)

	doc := ts.page(base + "/more?page=3")
	button := doc.Find("button.load-more")
	_, disabled := button.Attr("disabled")
	assert.True(t, disabled, "Expected load more to be disabled once every session is shown")
	assert.Contains(t, button.Text(), "No more sessions")
	assert.Empty(t, next)
}

func TestSessionsLoadMoreSkipsRowsShiftedByAnInsert(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul"})
	addSessions(ts, game.ID, 15)
	base := fmt.Sprintf("/games/%d/sessions", game.ID)

	doc := ts.page(base + "/more?page=1")
	first := cardIDs(doc)
	next := doc.Find("button#load-more").AttrOr("hx-get", "")
	u, err := url.Parse(next)
	require.NoError(t, err)
	assert.Equal(t, "2", u.Query().Get("page"))
	assert.NotEmpty(t, u.Query().Get("seen"))

	// A newer session pushes the last card of page one onto page two
	ts.api.AddSession(model.Session{GameID: game.ID, Start: time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC), Minutes: 30})

	doc = ts.page(next)
	second := cardIDs(doc)
	assert.Len(t, second, 5)
	for _, id := range second {
		assert.NotContains(t, first, id)
	}
}

func TestSessionsLoadMoreBeyondFiftyPages(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul"})
	addSessions(ts, game.ID, 510)
	base := fmt.Sprintf("/games/%d/sessions", game.ID)

	doc := ts.page(base + "/more?page=50")
	assert.Len(t, cardIDs(doc), 10)
	button := doc.Find("button#load-more")
	_, disabled := button.Attr("disabled")
	assert.False(t, disabled)
	u, err := url.Parse(button.AttrOr("hx-get", ""))
	require.NoError(t, err)
	assert.Equal(t, base+"/more", u.Path)
	assert.Equal(t, "51", u.Query().Get("page"))

	doc = ts.page(base + "/more?page=51")
	assert.Len(t, cardIDs(doc), 10)
	_, disabled = doc.Find("button#load-more").Attr("disabled")
	assert.True(t, disabled)
}

func TestPlayerSessionsPage(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul"})
	alice := ts.api.AddPlayer(model.Player{Name: "Alice"})
	for i := range 3 {
		ts.api.AddSession(model.Session{
			GameID:         game.ID,
			Start:          time.Date(2024, 2, 1+i, 20, 0, 0, 0, time.UTC),
			Minutes:        25,
			PlayerSessions: []model.PlayerSession{{PlayerID: alice.ID, Won: i == 0}},
		})
	}
	ts.api.AddSession(model.Session{GameID: game.ID, Start: time.Date(2024, 2, 9, 20, 0, 0, 0, time.UTC), Minutes: 10})

	doc := ts.page(fmt.Sprintf("/players/%d/sessions", alice.ID))
	assertContainsText(t, doc, "h1", "Alice")
	assertContainsText(t, doc, ".count", "3 sessions")
	assert.Equal(t, 3, doc.Find(".desktop tr.session").Length())
}

// selectorForm builds the form the player selector posts
func selectorForm(gameID model.GameID, op string, selection ...url.Values) url.Values {
	form := url.Values{"gameId": {strconv.Itoa(int(gameID))}, "op": {op}}
	for _, extra := range selection {
		for k, v := range extra {
			form[k] = v
		}
	}
	return form
}

// selectedPlayers returns the player ids of the selector rows in order
func selectedPlayers(doc *goquery.Document) []string {
	var ids []string
	doc.Find(".selected-players li[data-index]").Each(func(i int, s *goquery.Selection) {
		id, _ := s.Find(fmt.Sprintf(`input[name="players[%d].playerId"]`, i)).Attr("value")
		ids = append(ids, id)
	})
	return ids
}

func TestPlayerSelectorAddsEntry(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul", HasScoring: true})
	alice := ts.api.AddPlayer(model.Player{Name: "Alice"})
	aliceID := strconv.Itoa(int(alice.ID))

	rr := ts.postHTMX("/sessions/players", selectorForm(game.ID, "save", url.Values{
		"entry.playerId": {aliceID},
		"entry.score":    {"42"},
		"entry.won":      {"on"},
	}))
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "#player-selector")
	assertNotContainsElement(t, doc, "main#content")
	assert.Equal(t, []string{aliceID}, selectedPlayers(doc))
	assertContainsText(t, doc, `li[data-index="0"] .name`, "Alice")
	scoreVal, _ := doc.Find(`input[name="players[0].score"]`).Attr("value")
	assert.Equal(t, "42", scoreVal)
	assertContainsElement(t, doc, `input[name="players[0].won"]`)

	// The editor is cleared for the next player
	assertNotContainsElement(t, doc, `select[name="entry.playerId"] option[selected]`)
	editIndex, _ := doc.Find(`input[name="editIndex"]`).Attr("value")
	assert.Empty(t, editIndex)
}

func TestPlayerSelectorRequiresScoreForScoringGames(t *testing.T) {
	ts := newWebTestServer(t)
	scoring := ts.api.AddGame(model.Game{Title: "Azul", HasScoring: true})
	plain := ts.api.AddGame(model.Game{Title: "Hanabi"})
	alice := ts.api.AddPlayer(model.Player{Name: "Alice"})
	entry := url.Values{"entry.playerId": {strconv.Itoa(int(alice.ID))}}

	doc := parseHTML(ts.postHTMX("/sessions/players", selectorForm(scoring.ID, "save", entry)).Body)
	assertContainsText(t, doc, `.field-error[data-field="entry.score"]`, "Score is required")
	assert.Empty(t, selectedPlayers(doc))

	doc = parseHTML(ts.postHTMX("/sessions/players", selectorForm(plain.ID, "save", entry)).Body)
	assertNotContainsElement(t, doc, ".field-error")
	assertNotContainsElement(t, doc, `input[name="entry.score"]`)
	assert.Len(t, selectedPlayers(doc), 1)
}

func TestPlayerSelectorRejectsDuplicatePlayer(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Hanabi"})
	alice := ts.api.AddPlayer(model.Player{Name: "Alice"})
	aliceID := strconv.Itoa(int(alice.ID))

	doc := parseHTML(ts.postHTMX("/sessions/players", selectorForm(game.ID, "save", url.Values{
		"players[0].playerId": {aliceID},
		"entry.playerId":      {aliceID},
	})).Body)

	assertContainsText(t, doc, `.field-error[data-field="entry.playerId"]`, "Player was already added")
	assert.Equal(t, []string{aliceID}, selectedPlayers(doc))
}

func TestPlayerSelectorRemoveKeepsOrder(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Hanabi"})
	ids := make([]string, 0, 3)
	selection := url.Values{}
	for i, name := range []string{"Alice", "Bob", "Carol"} {
		p := ts.api.AddPlayer(model.Player{Name: name})
		ids = append(ids, strconv.Itoa(int(p.ID)))
		selection.Set(fmt.Sprintf("players[%d].playerId", i), ids[i])
	}
	selection.Set("players[2].firstPlay", "on")
	selection.Set("index", "1")

	doc := parseHTML(ts.postHTMX("/sessions/players", selectorForm(game.ID, "remove", selection)).Body)

	assert.Equal(t, []string{ids[0], ids[2]}, selectedPlayers(doc))
	assertContainsText(t, doc, `li[data-index="1"] .name`, "Carol")
	assertContainsElement(t, doc, `input[name="players[1].firstPlay"]`)
}

func TestPlayerSelectorEditUpdatesInPlace(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul", HasScoring: true})
	alice := ts.api.AddPlayer(model.Player{Name: "Alice"})
	bob := ts.api.AddPlayer(model.Player{Name: "Bob"})
	aliceID, bobID := strconv.Itoa(int(alice.ID)), strconv.Itoa(int(bob.ID))
	selection := url.Values{
		"players[0].playerId": {aliceID}, "players[0].score": {"10"},
		"players[1].playerId": {bobID}, "players[1].score": {"12"},
	}

	edit := url.Values{"index": {"1"}}
	for k, v := range selection {
		edit[k] = v
	}
	doc := parseHTML(ts.postHTMX("/sessions/players", selectorForm(game.ID, "edit", edit)).Body)
	selected, _ := doc.Find(`select[name="entry.playerId"] option[selected]`).Attr("value")
	assert.Equal(t, bobID, selected)
	scoreVal, _ := doc.Find(`input[name="entry.score"]`).Attr("value")
	assert.Equal(t, "12", scoreVal)
	editIndex, _ := doc.Find(`input[name="editIndex"]`).Attr("value")
	assert.Equal(t, "1", editIndex)
	assertContainsText(t, doc, ".entry-editor legend", "Change player")

	save := url.Values{"editIndex": {"1"}, "entry.playerId": {bobID}, "entry.score": {"30"}, "entry.won": {"on"}}
	for k, v := range selection {
		save[k] = v
	}
	doc = parseHTML(ts.postHTMX("/sessions/players", selectorForm(game.ID, "save", save)).Body)
	assert.Equal(t, []string{aliceID, bobID}, selectedPlayers(doc))
	scoreVal, _ = doc.Find(`input[name="players[1].score"]`).Attr("value")
	assert.Equal(t, "30", scoreVal)
	assertContainsElement(t, doc, `input[name="players[1].won"]`)
}

func TestPlayerSelectorUnknownOperation(t *testing.T) {
	ts := newWebTestServer(t)
	rr := ts.postHTMX("/sessions/players", url.Values{"op": {"explode"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNewSessionFormPreselectsGame(t *testing.T) {
	ts := newWebTestServer(t)
	ts.api.AddGame(model.Game{Title: "Azul"})
	game := ts.api.AddGame(model.Game{Title: "Hanabi"})

	doc := ts.page(fmt.Sprintf("/sessions/new/%d", game.ID))
	assertContainsText(t, doc, `select[name="gameId"] option[selected]`, "Hanabi")
	start, _ := doc.Find(`input[name="start"]`).Attr("value")
	assert.Equal(t, "2024-01-01T12:00", start, "Expected the start to default to now")
	assertContainsText(t, doc, "nav.menu a.active", "Log a session")
}

func TestCreateSession(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul", HasScoring: true})
	alice := ts.api.AddPlayer(model.Player{Name: "Alice"})
	bob := ts.api.AddPlayer(model.Player{Name: "Bob"})
	home := ts.api.AddLocation(model.Location{Name: "Home"})

	// Warm the statistics so saving must invalidate them
	doc := ts.page(fmt.Sprintf("/games/%d", game.ID))
	assertContainsText(t, doc, `[data-stat="playCount"]`, "0")

	form := url.Values{
		"gameId":              {strconv.Itoa(int(game.ID))},
		"locationId":          {strconv.Itoa(int(home.ID))},
		"start":               {"2024-01-01T19:30"},
		"minutes":             {"45"},
		"comment":             {"Close game"},
		"players[0].playerId": {strconv.Itoa(int(alice.ID))},
		"players[0].score":    {"61"},
		"players[0].won":      {"on"},
		"players[1].playerId": {strconv.Itoa(int(bob.ID))},
		"players[1].score":    {"58"},
	}
	rr := ts.post("/sessions/new", form)
	require.Equal(t, http.StatusSeeOther, rr.Code, rr.Body.String())
	assert.Equal(t, fmt.Sprintf("/games/%d", game.ID), rr.Header().Get("Location"))

	doc = parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "success", "The session was saved")
	assertContainsText(t, doc, `[data-stat="playCount"]`, "1")
	assertContainsText(t, doc, `[data-stat="highScore"]`, "61")
	assertContainsText(t, doc, ".recent-sessions tr.session", "Home")
	assertContainsElement(t, doc, fmt.Sprintf(`.participant.won[data-player-id="%d"]`, alice.ID))

	_, _, _, sessions := ts.api.Counts()
	assert.Equal(t, 1, sessions)
}

func TestCreateSessionWithNewLocation(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Hanabi"})
	alice := ts.api.AddPlayer(model.Player{Name: "Alice"})

	rr := ts.post("/sessions/new", url.Values{
		"gameId":              {strconv.Itoa(int(game.ID))},
		"newLocation":         {"Cafe"},
		"start":               {"2024-01-01T19:30"},
		"minutes":             {"30"},
		"players[0].playerId": {strconv.Itoa(int(alice.ID))},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code, rr.Body.String())

	doc := ts.page("/locations")
	assertContainsElement(t, doc, `.location-list input[value="Cafe"]`)
}

func TestCreateSessionValidation(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul", HasScoring: true})
	alice := ts.api.AddPlayer(model.Player{Name: "Alice"})

	rr := ts.post("/sessions/new", url.Values{
		"gameId":              {strconv.Itoa(int(game.ID))},
		"start":               {"yesterday"},
		"minutes":             {"0"},
		"players[0].playerId": {strconv.Itoa(int(alice.ID))},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, `.field-error[data-field="locationId"]`, "Location is required")
	assertContainsText(t, doc, `.field-error[data-field="start"]`, "Start must be a date and time")
	assertContainsText(t, doc, `.field-error[data-field="minutes"]`, "Duration must be between")
	assertContainsText(t, doc, `.field-error[data-field="players[0].score"]`, "Score is required")
	// The selection survives the failed submit
	assert.Equal(t, []string{strconv.Itoa(int(alice.ID))}, selectedPlayers(doc))

	rr = ts.post("/sessions/new", url.Values{"gameId": {strconv.Itoa(int(game.ID))}, "start": {"2024-01-01T19:30"}, "minutes": {"30"}, "locationId": {"1"}})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), `.field-error[data-field="players"]`, "Add at least one player")
}

func TestEditSession(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Hanabi"})
	alice := ts.api.AddPlayer(model.Player{Name: "Alice"})
	home := ts.api.AddLocation(model.Location{Name: "Home"})
	session := ts.api.AddSession(model.Session{
		GameID:         game.ID,
		LocationID:     home.ID,
		Start:          time.Date(2024, 5, 4, 18, 15, 0, 0, time.UTC),
		Minutes:        50,
		PlayerSessions: []model.PlayerSession{{PlayerID: alice.ID, Won: true}},
	})
	path := fmt.Sprintf("/sessions/update/%d", session.ID)

	doc := ts.page(path)
	action, _ := doc.Find("form.session-form").Attr("action")
	assert.Equal(t, path, action)
	start, _ := doc.Find(`input[name="start"]`).Attr("value")
	assert.Equal(t, "2024-05-04T18:15", start)
	assert.Equal(t, []string{strconv.Itoa(int(alice.ID))}, selectedPlayers(doc))

	rr := ts.post(path, url.Values{
		"gameId":              {strconv.Itoa(int(game.ID))},
		"locationId":          {strconv.Itoa(int(home.ID))},
		"start":               {"2024-05-04T18:15"},
		"minutes":             {"75"},
		"players[0].playerId": {strconv.Itoa(int(alice.ID))},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code, rr.Body.String())

	stored, ok := ts.api.Session(session.ID)
	require.True(t, ok)
	assert.Equal(t, 75, stored.Minutes)
	assert.False(t, stored.PlayerSessions[0].Won)
}

func TestDeleteSession(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Hanabi"})
	session := addSessions(ts, game.ID, 1)[0]

	rr := ts.post(fmt.Sprintf("/sessions/%d/delete", session.ID), nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, fmt.Sprintf("/games/%d", game.ID), rr.Header().Get("Location"))

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "success", "The session was deleted")
	assertContainsText(t, doc, ".recent-sessions", "No sessions yet")
}

func TestRepeatSessionLogsPlayAndOpensEditor(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Cascadia", HasScoring: true})
	alice := ts.api.AddPlayer(model.Player{Name: "Alice"})
	bob := ts.api.AddPlayer(model.Player{Name: "Bob"})
	home := ts.api.AddLocation(model.Location{Name: "Home"})
	score := 88.0
	original := ts.api.AddSession(model.Session{
		GameID:     game.ID,
		LocationID: home.ID,
		Start:      time.Date(2023, 12, 30, 20, 0, 0, 0, time.UTC),
		Minutes:    45,
		PlayerSessions: []model.PlayerSession{
			{PlayerID: alice.ID, Won: true, Score: &score},
			{PlayerID: bob.ID},
		},
	})

	rr := ts.post(fmt.Sprintf("/sessions/%d/repeat", original.ID), nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Regexp(t, `^/sessions/update/\d+$`, rr.Header().Get("Location"))
	assert.Equal(t, 1, ts.api.Requests(http.MethodPost, "/play"))

	var repeatID int
	_, err := fmt.Sscanf(rr.Header().Get("Location"), "/sessions/update/%d", &repeatID)
	require.NoError(t, err)
	repeat, ok := ts.api.Session(model.SessionID(repeatID))
	require.True(t, ok)
	assert.True(t, repeat.Start.Equal(ts.app.Clock.Now()))
	assert.Equal(t, 45, repeat.Minutes)
	require.Len(t, repeat.PlayerSessions, 2)
	assert.False(t, repeat.PlayerSessions[0].Won)
	assert.Nil(t, repeat.PlayerSessions[0].Score)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "success", "Play logged")
}

func TestRepeatMissingSession(t *testing.T) {
	ts := newWebTestServer(t)
	rr := ts.post("/sessions/999/repeat", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeletePlayFromCompactList(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Hanabi"})
	session := addSessions(ts, game.ID, 1)[0]

	rr := ts.post(fmt.Sprintf("/plays/%d/delete", session.ID), nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, fmt.Sprintf("/games/%d", game.ID), rr.Header().Get("Location"))
	assert.Equal(t, 1, ts.api.Requests(http.MethodDelete, fmt.Sprintf("/play/%d", session.ID)))

	_, ok := ts.api.Session(session.ID)
	assert.False(t, ok)
	assertFlash(t, parseHTML(ts.followRedirect(rr).Body), "success", "The play was deleted")
}
