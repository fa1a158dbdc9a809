package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusAccepted   TicketStatus = "accepted"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusFinalized  TicketStatus = "finalized"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

// TicketLevel enumerates SLA urgency. Distinct from the analyst hierarchy level.
type TicketLevel string

const (
	TicketLevelLow      TicketLevel = "low"
	TicketLevelMedium   TicketLevel = "medium"
	TicketLevelHigh     TicketLevel = "high"
	TicketLevelCritical TicketLevel = "critical"
)

// TicketType enumerates the request categories a collaborator can raise.
type TicketType string

const (
	TicketTypeIncident TicketType = "incident"
	TicketTypeRequest  TicketType = "request"
)

// Ticket is the aggregate for support requests. The subject is captured once at
// creation and never regenerated from the live conversation.
type Ticket struct {
	ID              int64
	Subject         string
	Type            TicketType
	Level           TicketLevel
	Status          TicketStatus
	CollaboratorID  string
	ClientServiceID string
	AnalystID       *string
	Diagnosis       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ClosedAt        *time.Time
}

// ValidStatus reports whether s is one of the persisted status values.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusAccepted, TicketStatusInProgress, TicketStatusFinalized, TicketStatusCancelled:
		return true
	}
	return false
}

// ValidLevel reports whether l is one of the persisted urgency values.
func ValidLevel(l TicketLevel) bool {
	switch l {
	case TicketLevelLow, TicketLevelMedium, TicketLevelHigh, TicketLevelCritical:
		return true
	}
	return false
}

// ValidType reports whether t is one of the persisted ticket types.
func ValidType(t TicketType) bool {
	return t == TicketTypeIncident || t == TicketTypeRequest
}

// ResponseSLA returns the committed first-response window for an urgency level.
// Critical is 4 hours; the 8-hour figure that circulated in older prompt text
// was a documentation defect.
func ResponseSLA(level TicketLevel) time.Duration {
	switch level {
	case TicketLevelCritical:
		return 4 * time.Hour
	case TicketLevelHigh:
		return 24 * time.Hour
	case TicketLevelMedium:
		return 48 * time.Hour
	default:
		return 96 * time.Hour
	}
}
