package web_test

import (
	"bufio"
	"context"
	"fmt"
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

// TestSSE_EndpointHeaders verifies the SSE endpoint returns correct headers
func TestSSE_EndpointHeaders(t *testing.T) {
	ts := newWebTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/events/game", nil)

	// Use a context with timeout since SSE is a long-running connection
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rr.Header().Get("Connection"))
	assert.Equal(t, "no", rr.Header().Get("X-Accel-Buffering"))
	assert.Contains(t, rr.Body.String(), "event: connected")
}

// TestSSE_UnknownTopic verifies only tracked resources can be subscribed to
func TestSSE_UnknownTopic(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/events/lobby")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// readEvent reads lines until a blank line and returns the event name and data
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event string
	var data []string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if event != "" || len(data) > 0 {
				return event, strings.Join(data, "\n")
			}
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		}
	}
}

// TestSSE_MutationNotifiesOpenPages verifies that saving a game tells pages
// showing games to refetch and shows the stale notice
func TestSSE_MutationNotifiesOpenPages(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.api.AddGame(model.Game{Title: "Azul"})

	srv := httptest.NewServer(ts.handler)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events/game", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	event, _ := readEvent(t, reader)
	require.Equal(t, "connected", event)
	require.Eventually(t, func() bool {
		hub := ts.app.HubManager.Lookup("game")
		return hub != nil && hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	rr := ts.post(fmt.Sprintf("/games/%d", game.ID), url.Values{"title": {"Azul Mini"}, "state": {"owned"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	// Each invalidated prefix of the game resource is announced
	sawInvalidated, sawStale := false, false
	for !(sawInvalidated && sawStale) {
		event, data := readEvent(t, reader)
		switch event {
		case "invalidated":
			assert.True(t, strings.HasPrefix(data, "game:"), data)
			sawInvalidated = true
		case "stale":
			assert.Contains(t, data, `id="stale-notice"`)
			assert.Contains(t, data, "hx-swap-oob")
			sawStale = true
		}
	}
}
