package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/repository"
)

// ErrStaffNotFound is returned when no active account matches email and role.
var ErrStaffNotFound = errors.New("staff user not found")

// StaffService handles admin and HR account logic.
type StaffService struct {
	staffRepo *repository.StaffRepository
	auth      *AuthService
}

// NewStaffService creates a new StaffService.
func NewStaffService(staffRepo *repository.StaffRepository, auth *AuthService) *StaffService {
	return &StaffService{staffRepo: staffRepo, auth: auth}
}

// GetByID retrieves a staff user by ID.
func (s *StaffService) GetByID(ctx context.Context, id int) (*model.StaffUser, error) {
	return s.staffRepo.GetByID(ctx, id)
}

// GetByEmail retrieves a staff user by email.
func (s *StaffService) GetByEmail(ctx context.Context, email string) (*model.StaffUser, error) {
	return s.staffRepo.GetByEmail(ctx, email)
}

// Authenticate checks the credentials of an active account with the given role.
func (s *StaffService) Authenticate(ctx context.Context, email, password string, role model.Role) (*model.StaffUser, error) {
	u, err := s.staffRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	if u.Role != role {
		return nil, ErrStaffNotFound
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}
	if err := s.auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, err
	}
	return u, nil
}

// Create hashes the password and stores a new staff account.
func (s *StaffService) Create(ctx context.Context, u *model.StaffUser, password string) error {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.IsActive = true
	return s.staffRepo.Create(ctx, u)
}

// ResetPassword replaces the password of an existing account.
func (s *StaffService) ResetPassword(ctx context.Context, email, password string) error {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.staffRepo.UpdatePassword(ctx, email, hash)
}
