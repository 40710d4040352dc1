package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evpower/recruit-backend/internal/model"
)

// StaffRepository handles admin and HR account data access.
type StaffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository creates a new StaffRepository.
func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

// GetByID retrieves a staff user by ID.
func (r *StaffRepository) GetByID(ctx context.Context, id int) (*model.StaffUser, error) {
	u := &model.StaffUser{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, full_name, role, password_hash, is_active, created_at
		 FROM staff_users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail retrieves a staff user by their unique email.
func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*model.StaffUser, error) {
	u := &model.StaffUser{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, full_name, role, password_hash, is_active, created_at
		 FROM staff_users WHERE LOWER(email) = LOWER($1)`, email,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new staff user.
func (r *StaffRepository) Create(ctx context.Context, u *model.StaffUser) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO staff_users (email, full_name, role, password_hash, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		u.Email, u.FullName, u.Role, u.PasswordHash, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt)
}

// UpdatePassword replaces the password hash and reactivates the account.
func (r *StaffRepository) UpdatePassword(ctx context.Context, email, hash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE staff_users SET password_hash = $2, is_active = TRUE WHERE LOWER(email) = LOWER($1)`,
		email, hash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
