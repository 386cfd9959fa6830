package handler

import (
	"encoding/json"
	"log"

	"github.com/tasteparadise/pos/internal/ws"
)

// EventBroadcaster pushes live updates to connected terminals.
// Satisfied by *ws.Hub.
type EventBroadcaster interface {
	BroadcastToRoom(room string, event ws.Event)
}

// notify broadcasts payload as an event of eventType to rooms. A nil
// broadcaster disables live updates.
func notify(b EventBroadcaster, eventType string, payload interface{}, rooms ...string) {
	if b == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: encode %s event: %v", eventType, err)
		return
	}
	for _, room := range rooms {
		b.BroadcastToRoom(room, ws.Event{Type: eventType, Payload: data})
	}
}
