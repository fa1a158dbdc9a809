package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// MessageEntry is one captured conversation record.
type MessageEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CreateTicketRequest payload. Status and level accept UI labels or raw
// tokens; the service name is matched against the caller's contracted
// services by case-insensitive substring.
type CreateTicketRequest struct {
	Subject     string         `json:"subject"`
	Type        string         `json:"type"`
	Level       string         `json:"level"`
	ServiceName string         `json:"service_name"`
	Messages    []MessageEntry `json:"messages"`
}

// TicketSummary response for collaborator-facing reads.
type TicketSummary struct {
	ID        int64              `json:"id"`
	Subject   string             `json:"subject"`
	Type      domain.TicketType  `json:"type"`
	Level     domain.TicketLevel `json:"level"`
	Status    string             `json:"status"`
	SLAHours  float64            `json:"sla_hours"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	ClosedAt  *time.Time         `json:"closed_at,omitempty"`
	Diagnosis *string            `json:"diagnosis,omitempty"`
}

// ConversationResponse is the archived transcript of a ticket.
type ConversationResponse struct {
	TicketID  int64          `json:"ticket_id"`
	Messages  []MessageEntry `json:"messages"`
	CreatedAt time.Time      `json:"created_at"`
}
