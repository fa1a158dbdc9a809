package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EscalationRepository owns the append-only escalation log. The reassignment
// and the log entry commit as one unit; a ticket pointing at a new analyst with
// no matching escalation row is a consistency bug.
type EscalationRepository interface {
	Escalate(ctx context.Context, ticketID int64, fromAnalystID, toAnalystID, justification string) (*domain.Escalation, error)
	LatestReason(ctx context.Context, ticketID int64) (*string, error)
}

type escalationRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRepository instantiates the repository.
func NewEscalationRepository(pool *pgxpool.Pool) EscalationRepository {
	return &escalationRepository{pool: pool}
}

// Escalate reassigns the ticket and appends the audit record in a single
// transaction.
func (r *escalationRepository) Escalate(ctx context.Context, ticketID int64, fromAnalystID, toAnalystID, justification string) (*domain.Escalation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const reassign = `UPDATE tickets SET analyst_id=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := tx.Exec(ctx, reassign, toAnalystID, ticketID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	escalation := &domain.Escalation{
		TicketID:      ticketID,
		FromAnalystID: fromAnalystID,
		ToAnalystID:   toAnalystID,
		Justification: justification,
	}
	const insert = `
        INSERT INTO escalations (ticket_id, from_analyst_id, to_analyst_id, justification)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insert,
		escalation.TicketID,
		escalation.FromAnalystID,
		escalation.ToAnalystID,
		escalation.Justification,
	).Scan(&escalation.ID, &escalation.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return escalation, nil
}

// LatestReason returns the most recent justification for a ticket, ordered by
// escalation id (insertion order, not timestamp). Nil when never escalated.
func (r *escalationRepository) LatestReason(ctx context.Context, ticketID int64) (*string, error) {
	const query = `
        SELECT justification FROM escalations
        WHERE ticket_id=$1
        ORDER BY id DESC LIMIT 1`

	var reason string
	err := r.pool.QueryRow(ctx, query, ticketID).Scan(&reason)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reason, nil
}
