package ws

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tasteparadise/pos/internal/enum"
)

// Rooms a client can join. Kitchen staff watch the kitchen room, every other
// role watches the floor.
const (
	RoomFloor   = "floor"
	RoomKitchen = "kitchen"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// roomEvent is an internal struct for routing events to a room
type roomEvent struct {
	Room  string
	Event Event
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by room
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *roomEvent

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomEvent, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.room] == nil {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.Room] {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop it, it reconnects and refetches
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove closes the client's send channel and deletes empty rooms.
// Callers hold h.mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.room]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.room)
	}
}

// BroadcastToRoom sends an event to every client in room.
func (h *Hub) BroadcastToRoom(room string, event Event) {
	h.broadcast <- &roomEvent{
		Room:  room,
		Event: event,
	}
}

// ClientCount returns the number of connected clients in room.
func (h *Hub) ClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// RoomForRole returns the room a staff member with role joins.
func RoomForRole(role string) string {
	if role == enum.StaffRoleKitchen {
		return RoomKitchen
	}
	return RoomFloor
}

// JoinRoom resolves the room a terminal asked for. An empty request gets the
// role's room; only managers may watch a room other than their own.
func JoinRoom(role, requested string) (string, error) {
	own := RoomForRole(role)
	switch requested {
	case "", own:
		return own, nil
	case RoomFloor, RoomKitchen:
		if role == enum.StaffRoleManager {
			return requested, nil
		}
		return "", fmt.Errorf("role %s cannot join room %q", role, requested)
	}
	return "", fmt.Errorf("unknown room %q", requested)
}
