package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/lutong-pos/terminal/internal/backend"
)

// Event is a WebSocket message broadcast to all connected screens.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub maintains the set of connected screens and fans broadcasts out to
// them. A single terminal has one room: every screen sees every event.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan Event

	mu sync.RWMutex
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
	}
}

// Run starts the hub's main loop.
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if h.clients[client] {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Send buffer full: the screen stopped reading, drop it.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an event for every connected screen.
func (h *Hub) Broadcast(event Event) {
	h.broadcast <- event
}

// OrderEvent broadcasts an order lifecycle event. Satisfies the order
// manager's Notifier interface.
func (h *Hub) OrderEvent(eventType string, order backend.Order) {
	payload, err := json.Marshal(order)
	if err != nil {
		log.Printf("ERROR: encode %s event: %v", eventType, err)
		return
	}
	h.Broadcast(Event{Type: eventType, Payload: payload})
}
