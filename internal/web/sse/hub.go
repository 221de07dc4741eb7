package sse

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Hub fans events for one resource topic out to the pages watching it.
// Slow clients lose events rather than stall the publisher.
type Hub struct {
	topic  string
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
}

func NewHub(topic string, logger *slog.Logger) *Hub {
	return &Hub{
		topic:   topic,
		logger:  logger.With(slog.String("topic", topic)),
		clients: make(map[*Client]struct{}),
	}
}

// Register subscribes client. On a closed hub the client's channel is
// closed straight away so its stream ends.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(client.send)
		return
	}
	h.clients[client] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("sse client joined", slog.String("client_id", client.id), slog.Int("watchers", n))
}

// Unregister removes client and closes its channel
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("sse client left",
		slog.String("client_id", client.id),
		slog.Duration("connected_for", time.Since(client.connectedAt)),
		slog.Int("watchers", n))
}

// Publish queues message for every client and reports how many took it
func (h *Hub) Publish(message []byte) int {
	h.mu.Lock()
	delivered, dropped := 0, 0
	for client := range h.clients {
		select {
		case client.send <- message:
			delivered++
		default:
			dropped++
		}
	}
	h.mu.Unlock()

	if dropped > 0 {
		h.logger.Warn("sse event dropped for slow clients", slog.Int("dropped", dropped))
	}
	return delivered
}

// BroadcastEvent publishes a named event
func (h *Hub) BroadcastEvent(eventName, data string) {
	h.Publish(formatSSEMessage(eventName, data))
}

// Close ends every client stream. Later calls do nothing.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for client := range h.clients {
		close(client.send)
	}
	clear(h.clients)
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// formatSSEMessage frames data as an event, one data line per input line
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteByte('\n')

	data = strings.TrimSuffix(strings.ReplaceAll(data, "\r", ""), "\n")
	for line := range strings.SplitSeq(data, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// HubManager keeps one hub per resource topic
type HubManager struct {
	logger *slog.Logger

	mu   sync.Mutex
	hubs map[string]*Hub
}

func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		logger: logger.With(slog.String("component", "sse")),
		hubs:   make(map[string]*Hub),
	}
}

// Hub returns the hub for topic, creating it on first use
func (m *HubManager) Hub(topic string) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	hub, ok := m.hubs[topic]
	if !ok {
		hub = NewHub(topic, m.logger)
		m.hubs[topic] = hub
	}
	return hub
}

// Subscribe registers client on the hub for topic, creating it on first use.
// Registration happens under the manager lock so DropIdle cannot close the
// hub between lookup and registration.
func (m *HubManager) Subscribe(topic string, client *Client) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	hub, ok := m.hubs[topic]
	if !ok {
		hub = NewHub(topic, m.logger)
		m.hubs[topic] = hub
	}
	hub.Register(client)
	return hub
}

// Lookup returns the hub for topic or nil when nobody has watched it
func (m *HubManager) Lookup(topic string) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[topic]
}

// DropIdle closes and forgets hubs without clients, returning how many went
func (m *HubManager) DropIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for topic, hub := range m.hubs {
		if hub.ClientCount() > 0 {
			continue
		}
		hub.Close()
		delete(m.hubs, topic)
		removed++
	}
	return removed
}

// Close shuts down every hub
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for topic, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, topic)
	}
}
