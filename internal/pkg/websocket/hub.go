package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventTypeOrganizationChanged is the type of every event pushed to feed clients
const EventTypeOrganizationChanged = "organization_changed"

// Event tells subscribers that an organization was modified and should be reloaded
type Event struct {
	Type           string    `json:"type"`
	OrganizationID int64     `json:"organizationId"`
	Action         string    `json:"action"`
	Actor          string    `json:"actor"`
	Timestamp      time.Time `json:"timestamp"`
}

// Hub keeps the clients watching each organization and fans events out to them
type Hub struct {
	// Registered clients organized by organization ID
	clients map[int64]map[*Client]bool

	// Events waiting to be delivered
	broadcast chan *Event

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Guards clients for ClientsCount
	mu sync.RWMutex

	now    func() time.Time
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		now:        time.Now,
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled, then closes every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// OrganizationChanged queues an event for the watchers of organizationID.
// It never blocks: when the queue is full the event is dropped.
func (h *Hub) OrganizationChanged(organizationID int64, action string, actor string) {
	event := &Event{
		Type:           EventTypeOrganizationChanged,
		OrganizationID: organizationID,
		Action:         action,
		Actor:          actor,
		Timestamp:      h.now().UTC(),
	}

	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().
			Int64("organizationID", organizationID).
			Str("action", action).
			Msg("Feed queue full, dropped organization change event")
	}
}

// join registers client, failing once the hub has stopped
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters client unless the hub has already stopped
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientsCount returns the number of clients watching an organization
func (h *Hub) ClientsCount(organizationID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[organizationID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	organizationID := client.organizationID
	if _, ok := h.clients[organizationID]; !ok {
		h.clients[organizationID] = make(map[*Client]bool)
	}
	h.clients[organizationID][client] = true

	h.logger.Debug().
		Int64("organizationID", organizationID).
		Str("userID", client.userID).
		Msg("Feed client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops client and closes its send channel. Callers hold mu.
func (h *Hub) removeLocked(client *Client) {
	organizationID := client.organizationID
	clients, ok := h.clients[organizationID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, organizationID)
	}

	h.logger.Debug().
		Int64("organizationID", organizationID).
		Str("userID", client.userID).
		Msg("Feed client unregistered")
}

// broadcastEvent delivers event to the watchers of its organization.
// Clients whose buffer is full are disconnected.
func (h *Hub) broadcastEvent(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("organizationID", event.OrganizationID).
			Msg("Failed to marshal feed event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[event.OrganizationID]
	var slow []*Client
	for client := range clients {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	for _, client := range slow {
		h.logger.Warn().
			Int64("organizationID", event.OrganizationID).
			Str("userID", client.userID).
			Msg("Dropping slow feed client")
		h.removeLocked(client)
	}

	h.logger.Debug().
		Int64("organizationID", event.OrganizationID).
		Str("action", event.Action).
		Int("clientCount", len(clients)).
		Msg("Organization change broadcasted")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}
