package events

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated        EventType = "ticket_created"
	EventTicketStatusChanged  EventType = "ticket_status_changed"
	EventTicketLevelChanged   EventType = "ticket_level_changed"
	EventTicketEscalated      EventType = "ticket_escalated"
	EventConversationArchived EventType = "conversation_archived"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	CollaboratorID *string `json:"collaborator_id,omitempty"`
	AnalystID      *string `json:"analyst_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject         string             `json:"subject"`
	Type            domain.TicketType  `json:"type"`
	Level           domain.TicketLevel `json:"level"`
	ClientServiceID string             `json:"client_service_id"`
	AnalystID       *string            `json:"analyst_id,omitempty"`
	MessageCount    int                `json:"message_count"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Diagnosis string              `json:"diagnosis,omitempty"`
}

// TicketLevelChangedPayload payload.
type TicketLevelChangedPayload struct {
	OldLevel domain.TicketLevel `json:"old_level"`
	NewLevel domain.TicketLevel `json:"new_level"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	FromAnalystID string `json:"from_analyst_id"`
	ToAnalystID   string `json:"to_analyst_id"`
	ToLevel       int    `json:"to_level"`
	Justification string `json:"justification"`
}
