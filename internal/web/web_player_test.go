package web_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/boardgametracker/internal/model"
)

func TestPlayersList(t *testing.T) {
	ts := newWebTestServer(t)
	ts.api.AddPlayer(model.Player{Name: "Alice Smith"})
	ts.api.AddPlayer(model.Player{Name: "Bob"})

	doc := ts.page("/players")
	assert.Equal(t, 2, doc.Find(".player-list li[data-player-id]").Length())
	assertContainsText(t, doc, ".player-list", "Alice Smith")
	// Players without a picture get their initials on a generated colour
	assertContainsText(t, doc, ".player-list span.avatar", "AS")
	style, _ := doc.Find(".player-list span.avatar").First().Attr("style")
	assert.Contains(t, style, "hsl(")
}

func TestCreatePlayer(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/players", url.Values{"name": {"Carol"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Regexp(t, `^/players/\d+$`, rr.Header().Get("Location"))

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "success", "Carol was added")
	assertContainsText(t, doc, ".player-detail h1", "Carol")
	assertContainsText(t, doc, `[data-stat="playCount"]`, "0")
}

func TestCreatePlayerValidation(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/players", url.Values{"name": {strings.Repeat("x", 101)}})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), `.field-error[data-field="name"]`, "Name must be at most 100 characters")

	_, players, _, _ := ts.api.Counts()
	assert.Equal(t, 0, players)
}

func TestCreatePlayerWithPicture(t *testing.T) {
	ts := newWebTestServer(t)
	png := []byte("\x89PNG\r\n\x1a\n0000")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Dana"))
	part, err := mw.CreateFormFile("profileImage", "dana.png")
	require.NoError(t, err)
	_, _ = part.Write(png)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/players", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	ts.cookies.extract(rr)
	require.Equal(t, http.StatusSeeOther, rr.Code, rr.Body.String())

	doc := parseHTML(ts.followRedirect(rr).Body)
	src, ok := doc.Find(".player-detail img.avatar").Attr("src")
	require.True(t, ok, "Expected the uploaded picture to be shown")
	require.True(t, strings.HasPrefix(src, "/images/profile/"), src)

	// Pictures are served through the backend proxy
	img := ts.get(src)
	require.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, png, img.Body.Bytes())
	assert.Equal(t, "image/png", img.Header().Get("Content-Type"))
}

func TestCreatePlayerRejectsOversizedUpload(t *testing.T) {
	ts := newWebTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Dana"))
	part, err := mw.CreateFormFile("profileImage", "huge.png")
	require.NoError(t, err)
	_, _ = part.Write(bytes.Repeat([]byte{0}, 12<<20))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/players", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	_, players, _, _ := ts.api.Counts()
	assert.Equal(t, 0, players, "Expected no player to be created")
}

func TestPlayerDetail(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul"})
	alice := ts.api.AddPlayer(model.Player{
		Name: "Alice",
		Badges: []model.Badge{
			{Type: model.BadgeTypeWins, Level: model.BadgeLevelGreen, TitleKey: "wins-green"},
			{Type: model.BadgeTypeWins, Level: model.BadgeLevelGold, TitleKey: "wins-gold"},
			{Type: model.BadgeTypeSessions, Level: model.BadgeLevelBlue, TitleKey: "sessions-blue"},
		},
	})
	for i := range 4 {
		ts.api.AddSession(model.Session{
			GameID:         game.ID,
			Start:          time.Date(2024, 4, 1+i, 20, 0, 0, 0, time.UTC),
			Minutes:        30,
			PlayerSessions: []model.PlayerSession{{PlayerID: alice.ID, Won: i%2 == 0}},
		})
	}

	doc := ts.page(fmt.Sprintf("/players/%d", alice.ID))
	assertContainsText(t, doc, `[data-stat="playCount"]`, "4")
	assertContainsText(t, doc, `[data-stat="winCount"]`, "2")
	assertContainsText(t, doc, `[data-stat="winPercentage"]`, "50%")

	// Only the highest level of each badge type is shown
	badges := doc.Find(".player-detail .badges .badge")
	require.Equal(t, 2, badges.Length())
	assert.Contains(t, badges.Text(), "wins-gold")
	assert.Contains(t, badges.Text(), "sessions-blue")
	assert.NotContains(t, badges.Text(), "wins-green")
}

func TestEditPlayer(t *testing.T) {
	ts := newWebTestServer(t)
	alice := ts.api.AddPlayer(model.Player{Name: "Alice"})

	doc := ts.page(fmt.Sprintf("/players/%d/edit", alice.ID))
	val, _ := doc.Find(`input[name="name"]`).Attr("value")
	assert.Equal(t, "Alice", val)

	rr := ts.post(fmt.Sprintf("/players/%d", alice.ID), url.Values{"name": {"Alicia"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	doc = parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "success", "Alicia was saved")
	assertContainsText(t, doc, ".player-detail h1", "Alicia")
}

func TestDeletePlayer(t *testing.T) {
	ts := newWebTestServer(t)
	alice := ts.api.AddPlayer(model.Player{Name: "Alice"})

	rr := ts.post(fmt.Sprintf("/players/%d/delete", alice.ID), nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/players", rr.Header().Get("Location"))

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "success", "The player was deleted")
	assertContainsText(t, doc, ".player-list .empty", "No players yet")
}

func TestLocations(t *testing.T) {
	ts := newWebTestServer(t)

	doc := ts.page("/locations")
	assertContainsText(t, doc, ".location-list .empty", "No locations yet")

	rr := ts.post("/locations", url.Values{"name": {"Game cafe"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	doc = parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "success", "Game cafe was added")

	item := doc.Find(".location-list li[data-location-id]")
	require.Equal(t, 1, item.Length())
	id, _ := item.Attr("data-location-id")

	rr = ts.post("/locations/"+id, url.Values{"name": {"Board game cafe"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	doc = parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "success", "The location was renamed")
	assertContainsElement(t, doc, `.location-list input[value="Board game cafe"]`)

	rr = ts.post("/locations/"+id+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	doc = parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "success", "The location was deleted")
	assertContainsText(t, doc, ".location-list .empty", "No locations yet")
}

func TestLocationValidation(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/locations", url.Values{"name": {" "}})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), `.field-error[data-field="name"]`, "Name is required")

	home := ts.api.AddLocation(model.Location{Name: "Home"})
	rr = ts.post(fmt.Sprintf("/locations/%d", home.ID), url.Values{"name": {""}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	doc := parseHTML(ts.followRedirect(rr).Body)
	assertFlash(t, doc, "error", "Name is required")
}
