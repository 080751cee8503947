package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAuthAllowed EventType = "auth_allowed"
	EventAuthDenied  EventType = "auth_denied"
)

// Event represents an auth decision emitted by the gate pipeline.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AuthAllowedPayload payload.
type AuthAllowedPayload struct {
	UserID string `json:"user.id"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

// AuthDeniedPayload payload. Diagnostic may carry internal error text and
// must never be returned to clients.
type AuthDeniedPayload struct {
	FailureKind string `json:"failure_kind"`
	Diagnostic  string `json:"diagnostic"`
	Method      string `json:"method"`
	Path        string `json:"path"`
}
