package ws

import (
	"encoding/json"
	"sync"

	"fintrack/internal/domain"
	"fintrack/internal/logger"
)

// EventType names a ledger change pushed over the feed.
type EventType string

const (
	EventCreated EventType = "transaction.created"
	EventUpdated EventType = "transaction.updated"
	EventDeleted EventType = "transaction.deleted"
)

// Event is one message on the change feed.
type Event struct {
	Type        EventType           `json:"type"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
	ID          int64               `json:"id,omitempty"`
}

// Hub tracks open feed connections per owner. Events for one owner are never
// delivered to another owner's connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.OwnerID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.OwnerID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.OwnerID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.OwnerID)
	}
}

// Publish delivers an event to every connection the owner currently holds.
// Best-effort: a client whose send buffer is full is disconnected rather
// than allowed to stall the publisher.
func (h *Hub) Publish(ownerID int64, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws: marshal event", "error", err)
		return
	}

	h.mu.RLock()
	var slow []*Client
	for c := range h.clients[ownerID] {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logger.Warn("ws: dropping slow client", "owner_id", ownerID)
		c.Close()
	}
}

// ConnCount reports how many connections an owner holds. Used by tests.
func (h *Hub) ConnCount(ownerID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[ownerID])
}
