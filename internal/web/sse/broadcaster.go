package sse

import (
	"context"
	"log/slog"

	"github.com/a-h/templ"

	"github.com/mcoot/boardgametracker/internal/query"
)

// Event names sent to pages
const (
	EventInvalidated = "invalidated"
	EventStale       = "stale"
)

// StaleNotice renders the banner shown on pages whose data changed
type StaleNotice func(topic string) templ.Component

// Broadcaster forwards query cache invalidations to the pages watching the
// affected resource
type Broadcaster struct {
	hubManager *HubManager
	notice     StaleNotice
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster. notice may be nil.
func NewBroadcaster(hubManager *HubManager, notice StaleNotice, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		notice:     notice,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Attach subscribes the broadcaster to cache invalidations
func (b *Broadcaster) Attach(cache *query.Cache) {
	cache.OnInvalidate(b.Invalidated)
}

// Invalidated tells every page watching the resource of prefix that its
// data is stale. Pages refetch on the invalidated event.
func (b *Broadcaster) Invalidated(prefix string) {
	topic := query.Resource(prefix)
	hub := b.hubManager.Lookup(topic)
	if hub == nil {
		return
	}

	hub.BroadcastEvent(EventInvalidated, prefix)

	if b.notice == nil {
		return
	}
	html, err := Render(context.Background(), b.notice(topic))
	if err != nil {
		b.logger.Error("sse failed to render stale notice",
			slog.String("topic", topic),
			slog.Any("error", err))
		return
	}
	hub.BroadcastEvent(EventStale, WrapForOOBSwap("stale-notice", html))
}
