package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// PersonRepository defines persistence access for identity anchors.
type PersonRepository interface {
	Upsert(ctx context.Context, person *domain.Person) error
	GetByID(ctx context.Context, id string) (*domain.Person, error)
}

type personRepository struct {
	pool *pgxpool.Pool
}

// NewPersonRepository returns a Postgres-backed implementation.
func NewPersonRepository(pool *pgxpool.Pool) PersonRepository {
	return &personRepository{pool: pool}
}

// Upsert inserts the person keyed by (provider, provider_id), refreshing the
// cached display name, email and hosted domain on every call.
func (r *personRepository) Upsert(ctx context.Context, person *domain.Person) error {
	const query = `
        INSERT INTO people (provider, provider_id, name, email, hosted_domain)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (provider, provider_id)
        DO UPDATE SET name=EXCLUDED.name, email=EXCLUDED.email,
                      hosted_domain=EXCLUDED.hosted_domain, updated_at=NOW()
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		person.Provider,
		person.ProviderID,
		person.Name,
		person.Email,
		person.HostedDomain,
	).Scan(&person.ID, &person.CreatedAt, &person.UpdatedAt)
}

func (r *personRepository) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	const query = `
        SELECT id, provider, provider_id, name, email, hosted_domain, created_at, updated_at
        FROM people WHERE id=$1`

	var person domain.Person
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&person.ID,
		&person.Provider,
		&person.ProviderID,
		&person.Name,
		&person.Email,
		&person.HostedDomain,
		&person.CreatedAt,
		&person.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &person, nil
}
