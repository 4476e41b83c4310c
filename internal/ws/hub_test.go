package ws

import (
	"encoding/json"
	"testing"

	"fintrack/internal/domain"
)

func newTestClient(hub *Hub, ownerID int64) *Client {
	return &Client{
		OwnerID: ownerID,
		hub:     hub,
		send:    make(chan []byte, 8),
		done:    make(chan struct{}),
	}
}

func TestHub_PublishReachesOwnerOnly(t *testing.T) {
	hub := NewHub()

	ownerA := newTestClient(hub, 1)
	ownerB := newTestClient(hub, 2)
	hub.register(ownerA)
	hub.register(ownerB)

	hub.Publish(1, Event{
		Type:        EventCreated,
		Transaction: &domain.Transaction{ID: 5, OwnerID: 1, Type: domain.TypeExpense, Amount: 10},
	})

	select {
	case msg := <-ownerA.send:
		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if ev.Type != EventCreated || ev.Transaction.ID != 5 {
			t.Errorf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("owner A received nothing")
	}

	select {
	case <-ownerB.send:
		t.Fatal("owner B must not receive owner A's events")
	default:
	}
}

func TestHub_PublishToAllOwnerConnections(t *testing.T) {
	hub := NewHub()

	first := newTestClient(hub, 1)
	second := newTestClient(hub, 1)
	hub.register(first)
	hub.register(second)

	hub.Publish(1, Event{Type: EventDeleted, ID: 9})

	for i, c := range []*Client{first, second} {
		select {
		case <-c.send:
		default:
			t.Errorf("connection %d received nothing", i)
		}
	}
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()

	c := newTestClient(hub, 1)
	hub.register(c)
	if hub.ConnCount(1) != 1 {
		t.Fatalf("expected 1 connection, got %d", hub.ConnCount(1))
	}

	hub.unregister(c)
	if hub.ConnCount(1) != 0 {
		t.Fatalf("expected 0 connections, got %d", hub.ConnCount(1))
	}

	hub.Publish(1, Event{Type: EventDeleted, ID: 1})
	select {
	case <-c.send:
		t.Fatal("unregistered client must not receive events")
	default:
	}
}
