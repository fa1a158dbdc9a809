package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// ErrConversationExists is returned when a second transcript is persisted for
// the same ticket. Conversations are write-once.
var ErrConversationExists = errors.New("conversation already exists for ticket")

// ConversationRepository persists write-once ticket transcripts.
type ConversationRepository interface {
	Create(ctx context.Context, ticketID int64, messages []domain.Message) (*domain.Conversation, error)
	GetByTicket(ctx context.Context, ticketID int64) (*domain.Conversation, error)
}

type conversationRepository struct {
	pool *pgxpool.Pool
}

// NewConversationRepository instantiates the repository.
func NewConversationRepository(pool *pgxpool.Pool) ConversationRepository {
	return &conversationRepository{pool: pool}
}

func (r *conversationRepository) Create(ctx context.Context, ticketID int64, messages []domain.Message) (*domain.Conversation, error) {
	return insertConversation(ctx, r.pool, ticketID, messages)
}

func (r *conversationRepository) GetByTicket(ctx context.Context, ticketID int64) (*domain.Conversation, error) {
	const query = `
        SELECT id, ticket_id, messages, created_at
        FROM conversations WHERE ticket_id=$1`

	var conversation domain.Conversation
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&conversation.ID,
		&conversation.TicketID,
		&conversation.Messages,
		&conversation.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// insertConversation is shared with the ticket repository so the ticket-plus-
// transcript insert can run inside one transaction.
func insertConversation(ctx context.Context, q Querier, ticketID int64, messages []domain.Message) (*domain.Conversation, error) {
	if messages == nil {
		messages = []domain.Message{}
	}
	const query = `
        INSERT INTO conversations (ticket_id, messages)
        VALUES ($1, $2)
        RETURNING id, created_at`

	conversation := &domain.Conversation{TicketID: ticketID, Messages: messages}
	err := q.QueryRow(ctx, query, ticketID, messages).Scan(&conversation.ID, &conversation.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrConversationExists
		}
		return nil, err
	}
	return conversation, nil
}
