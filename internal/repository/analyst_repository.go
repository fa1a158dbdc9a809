package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// AnalystRepository handles persistence for the analyst hierarchy.
type AnalystRepository interface {
	Create(ctx context.Context, analyst *domain.Analyst) error
	GetByID(ctx context.Context, id string) (*domain.Analyst, error)
	GetByPersonID(ctx context.Context, personID string) (*domain.Analyst, error)
	ListAboveLevel(ctx context.Context, level int) ([]domain.Analyst, error)
}

type analystRepository struct {
	pool *pgxpool.Pool
}

// NewAnalystRepository instantiates the repository.
func NewAnalystRepository(pool *pgxpool.Pool) AnalystRepository {
	return &analystRepository{pool: pool}
}

func (r *analystRepository) Create(ctx context.Context, analyst *domain.Analyst) error {
	const query = `
        INSERT INTO analysts (person_id, level)
        VALUES ($1, $2)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		analyst.PersonID,
		analyst.Level,
	).Scan(&analyst.ID, &analyst.CreatedAt)
}

func (r *analystRepository) GetByID(ctx context.Context, id string) (*domain.Analyst, error) {
	const query = `SELECT id, person_id, level, created_at FROM analysts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *analystRepository) GetByPersonID(ctx context.Context, personID string) (*domain.Analyst, error) {
	const query = `SELECT id, person_id, level, created_at FROM analysts WHERE person_id=$1`
	return r.fetchSingle(ctx, query, personID)
}

func (r *analystRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Analyst, error) {
	var analyst domain.Analyst
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&analyst.ID,
		&analyst.PersonID,
		&analyst.Level,
		&analyst.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &analyst, nil
}

// ListAboveLevel returns every analyst strictly above the given hierarchy
// level. The caller does the random pick; the query stays deterministic.
func (r *analystRepository) ListAboveLevel(ctx context.Context, level int) ([]domain.Analyst, error) {
	const query = `
        SELECT id, person_id, level, created_at
        FROM analysts WHERE level > $1
        ORDER BY level, created_at`

	rows, err := r.pool.Query(ctx, query, level)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Analyst
	for rows.Next() {
		var analyst domain.Analyst
		if err := rows.Scan(&analyst.ID, &analyst.PersonID, &analyst.Level, &analyst.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, analyst)
	}
	return result, rows.Err()
}
