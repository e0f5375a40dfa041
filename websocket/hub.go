package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is a ledger event pushed to connected admin dashboards
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
	Time time.Time   `json:"time"`
}

// Client represents a connected dashboard
type Client struct {
	Conn *websocket.Conn
	send chan Event
}

// Hub maintains the set of connected dashboards and broadcasts ledger events
// to all of them. Slow consumers are dropped rather than allowed to block the
// broadcast loop.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 64),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				client.Conn.Close()
			}
			h.mu.Unlock()
		case event := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- event:
				default:
					// Consumer not keeping up; disconnect it.
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish queues a ledger event for broadcast. It implements the ledger's
// EventPublisher and never blocks the caller.
func (h *Hub) Publish(eventType string, data interface{}) {
	event := Event{Type: eventType, Data: data, Time: time.Now()}
	select {
	case h.broadcast <- event:
	default:
		log.Printf("Warning: dashboard event queue full, dropping %s event", eventType)
	}
}
