package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/repository"
)

// CandidateService handles aptitude test logins.
type CandidateService struct {
	userRepo *repository.AptitudeUserRepository
	auth     *AuthService
}

// NewCandidateService creates a new CandidateService.
func NewCandidateService(userRepo *repository.AptitudeUserRepository, auth *AuthService) *CandidateService {
	return &CandidateService{userRepo: userRepo, auth: auth}
}

// Authenticate checks candidate credentials. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *CandidateService) Authenticate(ctx context.Context, email, password string) (*model.AptitudeUser, error) {
	u, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, err
	}
	return u, nil
}
