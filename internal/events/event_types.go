package events

import (
	"time"

	"github.com/spec-kit/auth-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventLoginSucceeded EventType = "login_succeeded"
	EventLoginFailed    EventType = "login_failed"
	EventTokenRejected  EventType = "token_rejected"
)

// Event represents an auth event emitted by the service or middleware.
// Subject is the account identifier when known, empty otherwise.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Roles []domain.Role `json:"roles"`
}

// LoginFailedPayload payload. Reason stays internal; responses to the client
// never carry it.
type LoginFailedPayload struct {
	Reason string `json:"reason"`
}

// TokenRejectedPayload payload.
type TokenRejectedPayload struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}
