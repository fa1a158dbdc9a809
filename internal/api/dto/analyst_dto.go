package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// AnalystTicketRow is one hydrated row of the analyst inbox. Reference
// fields stay null when the joined row no longer exists.
type AnalystTicketRow struct {
	ID        int64              `json:"id"`
	Subject   string             `json:"subject"`
	Type      domain.TicketType  `json:"type"`
	Level     domain.TicketLevel `json:"level"`
	Status    string             `json:"status"`
	CreatedAt string             `json:"created_at"`
	User      *string            `json:"user"`
	Email     *string            `json:"email"`
	Company   *string            `json:"company"`
	Service   *string            `json:"service"`
}

// AnalystTicketPage is a stable page of the inbox plus the unpaged total.
type AnalystTicketPage struct {
	Items  []AnalystTicketRow `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// AnalystTicketDetail is the full ticket view: the hydrated row plus the
// transcript, diagnosis and the latest escalation justification.
type AnalystTicketDetail struct {
	AnalystTicketRow
	SLAHours         float64        `json:"sla_hours"`
	Diagnosis        *string        `json:"diagnosis,omitempty"`
	ClosedAt         *time.Time     `json:"closed_at,omitempty"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Messages         []MessageEntry `json:"messages"`
	EscalationReason *string        `json:"escalation_reason,omitempty"`
}

// UpdateStatusRequest payload. Status and level accept UI labels or raw
// tokens; description is required when closing.
type UpdateStatusRequest struct {
	Status      string  `json:"status"`
	Description string  `json:"description,omitempty"`
	Level       *string `json:"level,omitempty"`
}

// UpdateLevelRequest payload.
type UpdateLevelRequest struct {
	Level string `json:"level"`
}

// EscalateRequest payload.
type EscalateRequest struct {
	Justification string `json:"justification"`
}

// EscalateResponse reports who the ticket landed on.
type EscalateResponse struct {
	TicketID  int64  `json:"ticket_id"`
	AnalystID string `json:"analyst_id"`
	Level     int    `json:"level"`
}
