// Package events contains the event contract for WebSocket push in the FSN
// analytics backend. The envelope is deliberately small: one type tag, one
// payload, one timestamp, an optional trace ID for correlating with request
// logs.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies a WebSocket event.
type MessageType string

const (
	// MessageTypeConnected greets a newly registered client.
	MessageTypeConnected MessageType = "connected"

	// MessageTypeDatasetRefreshed announces that a new cleaned snapshot is
	// available; payload is DatasetRefreshedData.
	MessageTypeDatasetRefreshed MessageType = "dataset:refreshed"

	// MessageTypeFeedbackCreated announces an accepted feedback submission;
	// payload is FeedbackCreatedData.
	MessageTypeFeedbackCreated MessageType = "feedback:created"
)

// Envelope is the wire shape of every pushed event.
type Envelope struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// NewEnvelope builds an envelope for the given event type and payload.
func NewEnvelope(msgType MessageType, data interface{}) Envelope {
	return Envelope{
		ID:        uuid.New().String(),
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// WithTraceID returns a copy of the envelope carrying the trace ID.
func (e Envelope) WithTraceID(traceID string) Envelope {
	e.TraceID = traceID
	return e
}

// Marshal serializes the envelope for transmission.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
