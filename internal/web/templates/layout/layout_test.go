package layout

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/web/templates"
)

func renderDoc(t *testing.T, ctx context.Context, data PageData) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	content := templ.Raw(`<p class="body">hello</p>`)
	require.NoError(t, Base(data).Render(templ.WithChildren(ctx, content), &buf))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
	require.NoError(t, err)
	return doc
}

func TestBaseMarksNavAndTopic(t *testing.T) {
	doc := renderDoc(t, context.Background(), PageData{Title: "Oops", Nav: NavPlayers, URL: "/players", Topic: "player"})

	active := doc.Find("nav.menu a.active")
	require.Equal(t, 1, active.Length())
	assert.Equal(t, "Players", active.Text())
	assert.Equal(t, "Oops · Board game tracker", doc.Find("title").Text())
	assert.Equal(t, "en-US", doc.Find("html").AttrOr("lang", ""))

	main := doc.Find("main#content")
	assert.Equal(t, "/events/player", main.AttrOr("sse-connect", ""))
	assert.Equal(t, "/players", main.AttrOr("hx-get", ""))
	assert.Equal(t, "hello", main.Find("p.body").Text())
}

func TestBaseWithoutTopicIsStatic(t *testing.T) {
	ctx := templates.WithSettings(context.Background(), model.Settings{Language: "en-GB"})
	doc := renderDoc(t, ctx, PageData{Title: "Games", Nav: NavGames})

	_, ok := doc.Find("main#content").Attr("sse-connect")
	assert.False(t, ok)
	assert.Equal(t, "en-GB", doc.Find("html").AttrOr("lang", ""))
	assert.Zero(t, doc.Find("[data-flash-type]").Length())
}

func TestBaseShowsFlash(t *testing.T) {
	doc := renderDoc(t, context.Background(), PageData{Flash: &FlashMessage{Type: "error", Message: "Delete failed"}})

	toast := doc.Find(".toast")
	assert.True(t, toast.HasClass("toast-error"))
	assert.Equal(t, "error", toast.AttrOr("data-flash-type", ""))
	assert.Equal(t, "Delete failed", toast.Text())
}

func TestBaseRendersRepeatedly(t *testing.T) {
	data := PageData{Title: "Badges", Nav: NavBadges}
	for range 3 {
		doc := renderDoc(t, context.Background(), data)
		assert.Equal(t, "Badges", doc.Find("nav.menu a.active").Text())
	}
}
