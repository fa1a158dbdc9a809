package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CollaboratorRef is the display-ready slice of a ticket owner's identity.
type CollaboratorRef struct {
	Name       string
	Email      string
	ClientName string
}

// ReferenceRepository serves the hydrator's batched reference-data lookups.
// Each method is exactly one round trip no matter how many ids it receives.
type ReferenceRepository interface {
	CollaboratorRefs(ctx context.Context, ids []string) (map[string]CollaboratorRef, error)
	ServiceNames(ctx context.Context, clientServiceIDs []string) (map[string]string, error)
}

type referenceRepository struct {
	pool *pgxpool.Pool
}

// NewReferenceRepository instantiates the repository.
func NewReferenceRepository(pool *pgxpool.Pool) ReferenceRepository {
	return &referenceRepository{pool: pool}
}

func (r *referenceRepository) CollaboratorRefs(ctx context.Context, ids []string) (map[string]CollaboratorRef, error) {
	result := make(map[string]CollaboratorRef, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	const query = `
        SELECT co.id, p.name, p.email, cl.name
        FROM collaborators co
        JOIN people p ON p.id = co.person_id
        JOIN clients cl ON cl.id = co.client_id
        WHERE co.id = ANY($1::uuid[])`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var ref CollaboratorRef
		if err := rows.Scan(&id, &ref.Name, &ref.Email, &ref.ClientName); err != nil {
			return nil, err
		}
		result[id] = ref
	}
	return result, rows.Err()
}

func (r *referenceRepository) ServiceNames(ctx context.Context, clientServiceIDs []string) (map[string]string, error) {
	result := make(map[string]string, len(clientServiceIDs))
	if len(clientServiceIDs) == 0 {
		return result, nil
	}

	const query = `
        SELECT cs.id, s.name
        FROM client_services cs
        JOIN services s ON s.id = cs.service_id
        WHERE cs.id = ANY($1::uuid[])`

	rows, err := r.pool.Query(ctx, query, clientServiceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		result[id] = name
	}
	return result, rows.Err()
}
