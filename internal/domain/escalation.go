package domain

import "time"

// Escalation is an append-only audit record of a ticket handoff to a
// higher-level analyst. Rows are never mutated or deleted.
type Escalation struct {
	ID            int64
	TicketID      int64
	FromAnalystID string
	ToAnalystID   string
	Justification string
	CreatedAt     time.Time
}
