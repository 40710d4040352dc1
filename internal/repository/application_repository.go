package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evpower/recruit-backend/internal/model"
)

// ApplicationRepository handles job application data access.
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// ExistsByEmail reports whether an application with this email is stored.
func (r *ApplicationRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE LOWER(email) = LOWER($1))`, email,
	).Scan(&exists)
	return exists, err
}

// CreateWithCandidate stores the application and the candidate login in one transaction.
func (r *ApplicationRepository) CreateWithCandidate(ctx context.Context, a *model.Application, u *model.AptitudeUser) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO applications (first_name, last_name, address, mobile, email, graduation, cgpa, position, resume_path)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING id, created_at`,
			a.FirstName, a.LastName, a.Address, a.Mobile, a.Email, a.Graduation, a.CGPA, a.Position, a.ResumePath,
		).Scan(&a.ID, &a.CreatedAt)
		if err != nil {
			return err
		}

		return tx.QueryRow(ctx,
			`INSERT INTO aptitude_users (email, password_hash)
			 VALUES ($1, $2)
			 ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
			 RETURNING id, created_at`,
			u.Email, u.PasswordHash,
		).Scan(&u.ID, &u.CreatedAt)
	})
}

// List returns applications newest first.
func (r *ApplicationRepository) List(ctx context.Context, limit, offset int) ([]model.Application, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM applications`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, first_name, last_name, address, mobile, email, graduation, cgpa::float8, position, resume_path, created_at
		 FROM applications
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	apps := make([]model.Application, 0)
	for rows.Next() {
		var a model.Application
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Address, &a.Mobile, &a.Email,
			&a.Graduation, &a.CGPA, &a.Position, &a.ResumePath, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		apps = append(apps, a)
	}
	return apps, total, rows.Err()
}
