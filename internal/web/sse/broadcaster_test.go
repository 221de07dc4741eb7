package sse

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/mcoot/boardgametracker/internal/query"
	"github.com/mcoot/boardgametracker/internal/storage/memory"
	"github.com/mcoot/boardgametracker/internal/testutil"
)

func notice(topic string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>"+topic+" changed</p>")
		return err
	})
}

func receive(t *testing.T, client *Client) string {
	t.Helper()
	select {
	case msg := <-client.send:
		return string(msg)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("client did not receive message")
		return ""
	}
}

func TestBroadcaster_ForwardsInvalidations(t *testing.T) {
	logger := testutil.NopLogger()
	manager := NewHubManager(logger)
	defer manager.Close()

	cache := query.New(memory.New(), logger)
	NewBroadcaster(manager, notice, logger).Attach(cache)

	client := NewClient()
	manager.Subscribe("game", client)

	cache.Invalidate(context.Background(), query.Key("game", 4))

	if got := receive(t, client); got != "event: invalidated\ndata: game:4:\n\n" {
		t.Errorf("unexpected invalidation event %q", got)
	}
	got := receive(t, client)
	if !strings.HasPrefix(got, "event: stale\n") || !strings.Contains(got, `hx-swap-oob="true"`) || !strings.Contains(got, "game changed") {
		t.Errorf("unexpected stale event %q", got)
	}
}

func TestBroadcaster_IgnoresTopicsWithoutHub(t *testing.T) {
	logger := testutil.NopLogger()
	manager := NewHubManager(logger)
	defer manager.Close()

	b := NewBroadcaster(manager, nil, logger)
	b.Invalidated("player:1:")

	if manager.Lookup("player") != nil {
		t.Error("broadcasting must not create hubs")
	}
}
