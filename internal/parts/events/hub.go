// Package events fans library change events out to connected SSE clients,
// optionally through a Redis channel shared by several processes.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// 事件类型
const (
	ComponentCreated  = "component.created"
	ComponentUpdated  = "component.updated"
	ComponentArchived = "component.archived"
	ComponentRestored = "component.restored"
	ComponentDeleted  = "component.deleted"
	HierarchyAdded    = "hierarchy.added"
	HierarchyRemoved  = "hierarchy.removed"
	LibraryCleared    = "library.cleared"
	ImportCompleted   = "import.completed"
	FileRegistered    = "file.registered"
	FileDeleted       = "file.deleted"
)

// Event is one library change.
type Event struct {
	Type string          `json:"event"`
	Data json.RawMessage `json:"data"`
	At   time.Time       `json:"at"`
}

// New builds an event, marshalling data to JSON.
func New(eventType string, data interface{}) Event {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("null")
	}
	return Event{Type: eventType, Data: raw, At: time.Now()}
}

// Publisher delivers events. Publish never blocks on slow consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }

// Client is one connected SSE stream.
type Client struct {
	ID     string
	Events chan Event
}

// Hub tracks SSE clients of this process.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Debug("SSE client registered", zap.String("client_id", client.ID), zap.Int("total", len(h.clients)))
}

// Unregister removes a client and closes its channel
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("SSE client unregistered", zap.String("client_id", clientID), zap.Int("total", len(h.clients)))
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to all connected clients
func (h *Hub) Broadcast(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- e:
		default:
			h.logger.Warn("SSE client buffer full, skipping event", zap.String("client_id", client.ID), zap.String("event", e.Type))
		}
	}
}

// Publish broadcasts locally; the hub is its own Publisher when no bus is configured.
func (h *Hub) Publish(_ context.Context, e Event) error {
	h.Broadcast(e)
	return nil
}
