package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evpower/recruit-backend/internal/model"
)

// JobPositionRepository handles open role data access.
type JobPositionRepository struct {
	pool *pgxpool.Pool
}

// NewJobPositionRepository creates a new JobPositionRepository.
func NewJobPositionRepository(pool *pgxpool.Pool) *JobPositionRepository {
	return &JobPositionRepository{pool: pool}
}

// List returns every position in creation order.
func (r *JobPositionRepository) List(ctx context.Context) ([]model.JobPosition, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, created_at FROM job_positions ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := make([]model.JobPosition, 0)
	for rows.Next() {
		var p model.JobPosition
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// Create inserts a position. A duplicate title surfaces as a unique violation.
func (r *JobPositionRepository) Create(ctx context.Context, p *model.JobPosition) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO job_positions (title, description)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		p.Title, p.Description,
	).Scan(&p.ID, &p.CreatedAt)
}

// EnsureDefaults inserts the given titles when missing.
func (r *JobPositionRepository) EnsureDefaults(ctx context.Context, titles []string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO job_positions (title)
		 SELECT UNNEST($1::text[])
		 ON CONFLICT (title) DO NOTHING`, titles,
	)
	return err
}
