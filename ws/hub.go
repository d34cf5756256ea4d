package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
)

// EventPublisher is the interface services use to broadcast catalog
// events. Services depend on this, not on the concrete Hub, so tests
// can plug in a no-op publisher.
type EventPublisher interface {
	BroadcastToAll(event Event)
}

// Hub tracks every open WebSocket connection and fans events out to
// them. Register and unregister go through channels consumed by Run,
// the clients map itself is guarded by mu for the broadcast path.
type Hub struct {
	// clients: username -> connection set. A user with several tabs
	// open holds several entries in the inner map.
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client

	// seq numbers every outbound event.
	seq atomic.Int64
}

// NewHub creates an empty hub. Call Run in a goroutine to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run is the hub's event loop, started from main with go hub.Run().
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.username]; !ok {
		h.clients[client.username] = make(map[*Client]bool)
	}
	h.clients[client.username][client] = true

	log.Printf("[ws] client connected: user=%s (connections for user: %d)",
		client.username, len(h.clients[client.username]))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.username]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}

	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.clients, client.username)
		log.Printf("[ws] user fully disconnected: %s", client.username)
	} else {
		log.Printf("[ws] client disconnected: user=%s (remaining: %d)",
			client.username, len(clients))
	}
}

// BroadcastToAll sends the event to every connected client. A client
// whose send buffer is full is considered stuck and gets dropped.
func (h *Hub) BroadcastToAll(event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal broadcast event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				go func(c *Client) { h.unregister <- c }(client)
			}
		}
	}
}

// Shutdown closes every client connection during graceful shutdown.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
	}
	h.clients = make(map[string]map[*Client]bool)
	log.Println("[ws] hub shut down, all connections closed")
}
