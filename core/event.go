package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Run stream event types this layer assigns meaning to. Anything else is
// passed through to the consumer untouched.
const (
	// EventFinish marks a clean terminal finish of a remote run.
	EventFinish = "finish"
	// EventError marks a terminal server-side failure of a remote run.
	EventError = "error"
)

// RunEvent is one decoded event from a remote run stream. After emission it
// should be treated as immutable. The transport layer only interprets the
// terminal types above; intermediate events keep their raw payload so the
// consumer can decode whatever the server sent.
type RunEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewRunEvent creates a run event with a fresh ID and UTC timestamp. The data
// payload is copied; stream decoders are free to reuse their buffers.
func NewRunEvent(eventType string, data []byte) RunEvent {
	var payload json.RawMessage
	if len(data) > 0 {
		payload = append(json.RawMessage(nil), data...)
	}
	return RunEvent{
		ID:        NewID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	}
}

// NewID generates a new unique identifier for events and runs.
func NewID() string { return uuid.NewString() }

// IsTerminal reports whether this event ends the run stream.
func (e RunEvent) IsTerminal() bool {
	return e.Type == EventFinish || e.Type == EventError
}

// ErrorMessage extracts the server message from a terminal error event
// payload ({"message": ...}). Empty for other events or opaque payloads.
func (e RunEvent) ErrorMessage() string {
	if e.Type != EventError || len(e.Data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return ""
	}
	return payload.Message
}
