// Package notify carries engine events out of the orchestrator. Delivery is
// fire-and-forget: a failed or slow dispatch never affects an execution.
package notify

import (
	"encoding/json"
	"log"
	"time"

	ws "backend/internal/websocket"
)

// Event names broadcast by the engine.
const (
	EventExecutionCompleted = "auto_po.execution_completed"
	EventExecutionFailed    = "auto_po.execution_failed"
	EventPendingApproval    = "auto_po.pending_approval"
)

// Dispatcher delivers an engine event to its recipients.
type Dispatcher interface {
	Notify(event string, recipients []string, payload interface{})
}

type envelope struct {
	Event      string      `json:"event"`
	Recipients []string    `json:"recipients,omitempty"`
	Data       interface{} `json:"data"`
	SentAt     time.Time   `json:"sent_at"`
}

type hubDispatcher struct {
	hub *ws.Hub
}

// NewHubDispatcher broadcasts events to all connected websocket clients.
func NewHubDispatcher(hub *ws.Hub) Dispatcher {
	return &hubDispatcher{hub: hub}
}

func (d *hubDispatcher) Notify(event string, recipients []string, payload interface{}) {
	msg, err := json.Marshal(envelope{
		Event:      event,
		Recipients: recipients,
		Data:       payload,
		SentAt:     time.Now(),
	})
	if err != nil {
		log.Printf("notify: failed to marshal %s event: %v", event, err)
		return
	}
	select {
	case d.hub.Broadcast <- msg:
	default:
		log.Printf("notify: hub busy, dropped %s event", event)
	}
}
