package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CollaboratorRepository handles persistence for Person-by-Client roles.
type CollaboratorRepository interface {
	Create(ctx context.Context, collaborator *domain.Collaborator) error
	GetByID(ctx context.Context, id string) (*domain.Collaborator, error)
	GetByPersonAndClient(ctx context.Context, personID, clientID string) (*domain.Collaborator, error)
	GetByPersonID(ctx context.Context, personID string) (*domain.Collaborator, error)
}

type collaboratorRepository struct {
	pool *pgxpool.Pool
}

// NewCollaboratorRepository instantiates the repository.
func NewCollaboratorRepository(pool *pgxpool.Pool) CollaboratorRepository {
	return &collaboratorRepository{pool: pool}
}

func (r *collaboratorRepository) Create(ctx context.Context, collaborator *domain.Collaborator) error {
	const query = `
        INSERT INTO collaborators (person_id, client_id)
        VALUES ($1, $2)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		collaborator.PersonID,
		collaborator.ClientID,
	).Scan(&collaborator.ID, &collaborator.CreatedAt)
}

func (r *collaboratorRepository) GetByID(ctx context.Context, id string) (*domain.Collaborator, error) {
	const query = `
        SELECT id, person_id, client_id, created_at
        FROM collaborators WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *collaboratorRepository) GetByPersonAndClient(ctx context.Context, personID, clientID string) (*domain.Collaborator, error) {
	const query = `
        SELECT id, person_id, client_id, created_at
        FROM collaborators WHERE person_id=$1 AND client_id=$2`

	var collaborator domain.Collaborator
	if err := r.pool.QueryRow(ctx, query, personID, clientID).Scan(
		&collaborator.ID,
		&collaborator.PersonID,
		&collaborator.ClientID,
		&collaborator.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &collaborator, nil
}

func (r *collaboratorRepository) GetByPersonID(ctx context.Context, personID string) (*domain.Collaborator, error) {
	const query = `
        SELECT id, person_id, client_id, created_at
        FROM collaborators WHERE person_id=$1`
	return r.fetchSingle(ctx, query, personID)
}

func (r *collaboratorRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Collaborator, error) {
	var collaborator domain.Collaborator
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&collaborator.ID,
		&collaborator.PersonID,
		&collaborator.ClientID,
		&collaborator.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &collaborator, nil
}
