package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evpower/recruit-backend/internal/model"
)

// AptitudeUserRepository handles candidate login data access.
type AptitudeUserRepository struct {
	pool *pgxpool.Pool
}

// NewAptitudeUserRepository creates a new AptitudeUserRepository.
func NewAptitudeUserRepository(pool *pgxpool.Pool) *AptitudeUserRepository {
	return &AptitudeUserRepository{pool: pool}
}

// GetByEmail retrieves a candidate login by email.
func (r *AptitudeUserRepository) GetByEmail(ctx context.Context, email string) (*model.AptitudeUser, error) {
	u := &model.AptitudeUser{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at
		 FROM aptitude_users WHERE LOWER(email) = LOWER($1)`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a candidate login.
func (r *AptitudeUserRepository) Create(ctx context.Context, u *model.AptitudeUser) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO aptitude_users (email, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
}
