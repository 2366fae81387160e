package hub

import (
	"time"

	"github.com/soar/padmapper/internal/engine"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string           `json:"type"` // "full", "event", "ack", "error"
	Seq       int64            `json:"seq"`
	Timestamp int64            `json:"timestamp"` // Unix milliseconds
	Event     string           `json:"event,omitempty"`
	DPad      *DPadEvent       `json:"dpad,omitempty"`
	State     *engine.Snapshot `json:"state,omitempty"`
	Command   string           `json:"command,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// DPadEvent identifies the resolver an event came from.
type DPadEvent struct {
	Index     int    `json:"index"`
	Set       int    `json:"set"`
	Direction string `json:"direction,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Delay     *int   `json:"delay,omitempty"`
	Name      string `json:"name,omitempty"`
}

// NewFullMessage creates a "full" message carrying a complete snapshot.
func NewFullMessage(seq int64, state *engine.Snapshot) *WSMessage {
	return &WSMessage{
		Type:      "full",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		State:     state,
	}
}

// NewEventMessage creates an "event" message for one resolver notification.
func NewEventMessage(seq int64, event string, dpad *DPadEvent) *WSMessage {
	return &WSMessage{
		Type:      "event",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Event:     event,
		DPad:      dpad,
	}
}

// NewAckMessage confirms a client command.
func NewAckMessage(command string) *WSMessage {
	return &WSMessage{
		Type:      "ack",
		Timestamp: time.Now().UnixMilli(),
		Command:   command,
	}
}

// NewErrorMessage reports a failed client command.
func NewErrorMessage(command, reason string) *WSMessage {
	return &WSMessage{
		Type:      "error",
		Timestamp: time.Now().UnixMilli(),
		Command:   command,
		Error:     reason,
	}
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type string `json:"type"` // "switch_set", "save"
	Set  int    `json:"set,omitempty"`
}
