package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub maintains the set of active clients and fans room events out to them.
// Each room has two audiences: watchers, who receive room and file events
// (enough to render the upload-required view), and members, who additionally
// receive message events. Membership of the two sets is managed by the
// connection handler; the hub itself does no access checking.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Members per room (roomID -> clients receiving message events)
	rooms map[uint]map[*Client]bool

	// Watchers per room (roomID -> clients receiving room/file events)
	watchers map[uint]map[*Client]bool

	// Mutex for clients, rooms and watchers maps
	mu sync.RWMutex

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a new hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rooms:      make(map[uint]map[*Client]bool),
		watchers:   make(map[uint]map[*Client]bool),
	}
}

// Run starts the hub
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

				// Remove client from all rooms
				removeFromAll(h.rooms, client)
				removeFromAll(h.watchers, client)
			}
			h.mu.Unlock()
		}
	}
}

func removeFromAll(sets map[uint]map[*Client]bool, client *Client) {
	for roomID, clients := range sets {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			// Clean up empty rooms
			if len(clients) == 0 {
				delete(sets, roomID)
			}
		}
	}
}

// joinRoom adds a client to a room's member set
func (h *Hub) joinRoom(client *Client, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
}

// leaveRoom removes a client from a room's member set
func (h *Hub) leaveRoom(client *Client, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.rooms[roomID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// watchRoom adds a client to a room's watcher set
func (h *Hub) watchRoom(client *Client, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.watchers[roomID]; !ok {
		h.watchers[roomID] = make(map[*Client]bool)
	}
	h.watchers[roomID][client] = true
}

// unwatchRoom removes a client from a room's watcher set
func (h *Hub) unwatchRoom(client *Client, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.watchers[roomID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.watchers, roomID)
		}
	}
}

// sendTo delivers raw bytes to a client. A client whose send buffer is full
// misses the event; its connection is reaped by the write pump, not here.
func sendTo(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		log.Printf("dropping event for slow client (user %d)", client.userID)
	}
}

// broadcastToRoom sends a message to all members of a room
func (h *Hub) broadcastToRoom(roomID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		sendTo(client, message)
	}
}

// broadcastToWatchers sends a message to all watchers and members of a room
func (h *Hub) broadcastToWatchers(roomID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[*Client]bool)
	for client := range h.watchers[roomID] {
		seen[client] = true
		sendTo(client, message)
	}
	for client := range h.rooms[roomID] {
		if !seen[client] {
			sendTo(client, message)
		}
	}
}

// broadcastAll sends a message to every connected client
func (h *Hub) broadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		sendTo(client, message)
	}
}

func marshalEvent(event string, payload interface{}) ([]byte, bool) {
	msgBytes, err := json.Marshal(Event{Type: event, Payload: payload})
	if err != nil {
		log.Printf("error marshaling %s event: %v", event, err)
		return nil, false
	}
	return msgBytes, true
}

// BroadcastToRoom sends an event to all members of a room
func (h *Hub) BroadcastToRoom(roomID uint, event string, payload interface{}) {
	if msg, ok := marshalEvent(event, payload); ok {
		h.broadcastToRoom(roomID, msg)
	}
}

// BroadcastToWatchers sends an event to all watchers and members of a room
func (h *Hub) BroadcastToWatchers(roomID uint, event string, payload interface{}) {
	if msg, ok := marshalEvent(event, payload); ok {
		h.broadcastToWatchers(roomID, msg)
	}
}

// BroadcastAll sends an event to every connected client
func (h *Hub) BroadcastAll(event string, payload interface{}) {
	if msg, ok := marshalEvent(event, payload); ok {
		h.broadcastAll(msg)
	}
}
