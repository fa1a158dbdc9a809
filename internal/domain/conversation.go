package domain

import "time"

// MessageRole identifies the author side of a transcript entry.
type MessageRole string

const (
	MessageRoleUser  MessageRole = "user"
	MessageRoleAgent MessageRole = "agent"
)

// Message is one transcript entry. The sequence is insertion-ordered and
// carries no schema version field.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// Conversation is the write-once transcript captured from the agent session
// that produced a ticket. Exactly one per ticket.
type Conversation struct {
	ID        int64
	TicketID  int64
	Messages  []Message
	CreatedAt time.Time
}
