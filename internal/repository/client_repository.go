package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// ClientRepository resolves tenant organizations and their contracted services.
type ClientRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Client, error)
	GetByDomain(ctx context.Context, emailDomain string) (*domain.Client, error)
	ContractedServices(ctx context.Context, clientID string) ([]domain.ContractedService, error)
}

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository instantiates the repository.
func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &clientRepository{pool: pool}
}

func (r *clientRepository) GetByName(ctx context.Context, name string) (*domain.Client, error) {
	const query = `SELECT id, name, created_at FROM clients WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *clientRepository) GetByDomain(ctx context.Context, emailDomain string) (*domain.Client, error) {
	const query = `
        SELECT c.id, c.name, c.created_at
        FROM clients c
        JOIN client_domains cd ON cd.client_id = c.id
        WHERE cd.domain=$1`
	return r.fetchSingle(ctx, query, emailDomain)
}

func (r *clientRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Client, error) {
	var client domain.Client
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&client.ID,
		&client.Name,
		&client.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) ContractedServices(ctx context.Context, clientID string) ([]domain.ContractedService, error) {
	const query = `
        SELECT cs.id, s.id, s.name
        FROM client_services cs
        JOIN services s ON s.id = cs.service_id
        WHERE cs.client_id=$1
        ORDER BY s.name`

	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ContractedService
	for rows.Next() {
		var svc domain.ContractedService
		if err := rows.Scan(&svc.ClientServiceID, &svc.ServiceID, &svc.Name); err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	return result, rows.Err()
}
