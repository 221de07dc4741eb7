package sse

import (
	"testing"
	"time"

	"github.com/mcoot/boardgametracker/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "invalidated",
			data:      "game:1:",
			expected:  "event: invalidated\ndata: game:1:\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "stale",
			data:      "<div>\n  <p>line1</p>\n</div>",
			expected:  "event: stale\ndata: <div>\ndata:   <p>line1</p>\ndata: </div>\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub("game", testutil.NopLogger())
	defer hub.Close()

	client := NewClient()
	hub.Register(client)
	if hub.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.BroadcastEvent("invalidated", "game:1:")

	select {
	case msg := <-client.Messages():
		if want := "event: invalidated\ndata: game:1:\n\n"; string(msg) != want {
			t.Errorf("client received %q, want %q", msg, want)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message")
	}
}

func TestHub_SlowClientLosesEvents(t *testing.T) {
	hub := NewHub("game", testutil.NopLogger())
	defer hub.Close()

	slow, fast := NewClient(), NewClient()
	hub.Register(slow)
	hub.Register(fast)

	for range sendBufferSize {
		hub.Publish([]byte("x"))
	}
	// drain fast so it has room again
	for range sendBufferSize {
		<-fast.Messages()
	}

	if got := hub.Publish([]byte("y")); got != 1 {
		t.Errorf("Publish delivered to %d clients, want 1", got)
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub("game", testutil.NopLogger())
	defer hub.Close()

	client := NewClient()
	hub.Register(client)
	hub.Unregister(client)
	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
	if _, ok := <-client.Messages(); ok {
		t.Error("client channel should be closed after unregister")
	}
}

func TestHub_CloseEndsStreams(t *testing.T) {
	hub := NewHub("game", testutil.NopLogger())

	before := NewClient()
	hub.Register(before)
	hub.Close()
	hub.Close()

	if _, ok := <-before.Messages(); ok {
		t.Error("close should end existing streams")
	}

	after := NewClient()
	hub.Register(after)
	if _, ok := <-after.Messages(); ok {
		t.Error("registering on a closed hub should end the stream")
	}
}

func TestHubManager(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	if manager.Lookup("game") != nil {
		t.Error("Lookup returned a hub nobody created")
	}

	hub1 := manager.Hub("game")
	if hub2 := manager.Hub("game"); hub1 != hub2 {
		t.Error("Hub returned different hubs for the same topic")
	}
	if manager.Hub("player") == hub1 {
		t.Error("Hub returned the same hub for different topics")
	}

	watcher := NewClient()
	hub1.Register(watcher)

	if n := manager.DropIdle(); n != 1 {
		t.Errorf("DropIdle() = %d, want 1", n)
	}
	if manager.Lookup("game") == nil || manager.Lookup("player") != nil {
		t.Error("only the idle hub should have been dropped")
	}
}

func TestSubscribeRacesDropIdle(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				manager.DropIdle()
			}
		}
	}()

	for range 200 {
		client := NewClient()
		hub := manager.Subscribe("game", client)
		if manager.Lookup("game") != hub {
			t.Fatal("Subscribe returned a hub the manager no longer holds")
		}
		hub.BroadcastEvent("invalidated", "game:")
		select {
		case _, ok := <-client.Messages():
			if !ok {
				t.Fatal("subscribed client was closed by DropIdle")
			}
		case <-time.After(time.Second):
			t.Fatal("subscribed client missed the event")
		}
		hub.Unregister(client)
	}

	close(stop)
	<-done
}
