package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Change notification types sent to connected calendar views.
const (
	EventCreated      = "event_created"
	EventUpdated      = "event_updated"
	EventDeleted      = "event_deleted"
	OccurrenceCreated = "occurrence_created"
	OccurrenceDeleted = "occurrence_deleted"
)

// Message tells clients that an event changed and its occurrences should be
// refetched.
type Message struct {
	Type         string `json:"type"`
	EventID      int64  `json:"event_id"`
	OccurrenceID int64  `json:"occurrence_id,omitempty"`
}

// Hub fans change notifications out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client connected", "clients", n)
}

// unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client disconnected", "clients", n)
}

// Broadcast sends msg to all clients. Clients with a full buffer miss it.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("broadcast dropped", "type", msg.Type, "clients", dropped)
	}
}

// Notify broadcasts a change of the given type for an event.
func (h *Hub) Notify(kind string, eventID int64) {
	h.Broadcast(Message{Type: kind, EventID: eventID})
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
