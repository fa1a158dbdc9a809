package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// AnalystPageFilter captures the analyst inbox query parameters.
type AnalystPageFilter struct {
	Statuses []domain.TicketStatus
	Limit    int
	Offset   int
}

// TicketRepository encapsulates ticket persistence. The ticket row is the only
// entity mutated by more than one call path; every mutation goes through here.
type TicketRepository interface {
	CreateWithConversation(ctx context.Context, ticket *domain.Ticket, messages []domain.Message) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByCollaboratorAndID(ctx context.Context, collaboratorID string, id int64) (*domain.Ticket, error)
	ListOpenByCollaborator(ctx context.Context, collaboratorID string) ([]domain.Ticket, error)
	SearchBySubject(ctx context.Context, collaboratorID, subject string) ([]domain.Ticket, error)
	ListByAnalyst(ctx context.Context, analystID string, filter AnalystPageFilter) ([]domain.Ticket, int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, subject, type, level, status, collaborator_id, client_service_id,
               analyst_id, diagnosis, created_at, updated_at, closed_at`

// CreateWithConversation inserts the ticket and its originating transcript in
// one transaction, so a ticket is never left without its conversation.
func (r *ticketRepository) CreateWithConversation(ctx context.Context, ticket *domain.Ticket, messages []domain.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO tickets (subject, type, level, status, collaborator_id, client_service_id, analyst_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Type,
		ticket.Level,
		ticket.Status,
		ticket.CollaboratorID,
		ticket.ClientServiceID,
		ticket.AnalystID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	if _, err := insertConversation(ctx, tx, ticket.ID, messages); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET level=$1, status=$2, analyst_id=$3, diagnosis=$4, closed_at=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Level,
		ticket.Status,
		ticket.AnalystID,
		ticket.Diagnosis,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return fetchSingleTicket(ctx, r.pool, query, id)
}

func (r *ticketRepository) GetByCollaboratorAndID(ctx context.Context, collaboratorID string, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 AND collaborator_id=$2`
	return fetchSingleTicket(ctx, r.pool, query, id, collaboratorID)
}

func (r *ticketRepository) ListOpenByCollaborator(ctx context.Context, collaboratorID string) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
             FROM tickets
             WHERE collaborator_id=$1 AND status <> $2
             ORDER BY updated_at DESC`
	rows, err := r.pool.Query(ctx, query, collaboratorID, domain.TicketStatusFinalized)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// likeEscaper neutralizes LIKE metacharacters so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *ticketRepository) SearchBySubject(ctx context.Context, collaboratorID, subject string) ([]domain.Ticket, error) {
	search := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(subject))) + "%"
	query := `SELECT ` + ticketColumns + `
             FROM tickets
             WHERE collaborator_id=$1 AND LOWER(subject) LIKE $2
             ORDER BY updated_at DESC`
	rows, err := r.pool.Query(ctx, query, collaboratorID, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// ListByAnalyst returns one inbox page ordered by updated_at descending, plus
// the total for the unpaginated predicate.
func (r *ticketRepository) ListByAnalyst(ctx context.Context, analystID string, filter AnalystPageFilter) ([]domain.Ticket, int, error) {
	clauses := []string{"analyst_id=$1"}
	args := []any{analystID}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM tickets WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, where, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func fetchSingleTicket(ctx context.Context, q Querier, query string, args ...any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := q.QueryRow(ctx, query, args...).Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Type,
		&ticket.Level,
		&ticket.Status,
		&ticket.CollaboratorID,
		&ticket.ClientServiceID,
		&ticket.AnalystID,
		&ticket.Diagnosis,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Subject,
			&ticket.Type,
			&ticket.Level,
			&ticket.Status,
			&ticket.CollaboratorID,
			&ticket.ClientServiceID,
			&ticket.AnalystID,
			&ticket.Diagnosis,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ClosedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
