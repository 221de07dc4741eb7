package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/boardgametracker/internal/services/badges"
	"github.com/mcoot/boardgametracker/internal/services/games"
	"github.com/mcoot/boardgametracker/internal/services/locations"
	"github.com/mcoot/boardgametracker/internal/services/players"
	"github.com/mcoot/boardgametracker/internal/services/sessions"
	"github.com/mcoot/boardgametracker/internal/services/settings"
	"github.com/mcoot/boardgametracker/internal/web/sse"
)

// topics are the resources a page can watch
var topics = map[string]bool{
	games.Resource:     true,
	players.Resource:   true,
	locations.Resource: true,
	sessions.Resource:  true,
	settings.Resource:  true,
	badges.Resource:    true,
}

// EventsHandler streams invalidation events to open pages
type EventsHandler struct {
	hubManager *sse.HubManager
	logger     *slog.Logger
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(hubManager *sse.HubManager, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		hubManager: hubManager,
		logger:     logger.With(slog.String("handler", "events")),
	}
}

// Events serves the SSE stream of one resource topic
func (h *EventsHandler) Events(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if !topics[topic] {
		http.Error(w, "Unknown topic", http.StatusNotFound)
		return
	}

	h.logger.Debug("sse connection opened", slog.String("topic", topic))
	sse.ServeSSE(w, r, h.hubManager, topic)
}
