package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/model"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrSessionInvalidated = errors.New("session invalidated")
)

// TokenType distinguishes candidate vs staff tokens.
type TokenType string

const (
	TokenTypeCandidate TokenType = "candidate"
	TokenTypeStaff     TokenType = "staff"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType  `json:"token_type"`
	UserID    int        `json:"user_id"`
	Email     string     `json:"email"`
	Name      string     `json:"name,omitempty"` // Staff only
	Role      model.Role `json:"role,omitempty"` // Staff only
}

// SessionContext returns the dashboard identity carried by a staff token.
func (c *Claims) SessionContext() model.SessionContext {
	return model.SessionContext{Name: c.Name, Email: c.Email, Role: c.Role}
}

// AuthService handles authentication, JWT, and session management.
type AuthService struct {
	cfg *config.Config
	rdb *redis.Client
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateTempPassword returns a random 8-character hex password.
func GenerateTempPassword() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateStaffToken creates a JWT for an admin or HR user. A new login
// replaces the previous session.
func (s *AuthService) GenerateStaffToken(ctx context.Context, u *model.StaffUser) (string, error) {
	claims := s.newClaims(strconv.Itoa(u.ID))
	claims.TokenType = TokenTypeStaff
	claims.UserID = u.ID
	claims.Email = u.Email
	claims.Name = u.FullName
	claims.Role = u.Role

	return s.signAndRegister(ctx, claims, config.CacheKey.StaffSessionKey(u.ID))
}

// GenerateCandidateToken creates a JWT for an aptitude test candidate.
func (s *AuthService) GenerateCandidateToken(ctx context.Context, u *model.AptitudeUser) (string, error) {
	claims := s.newClaims(strconv.Itoa(u.ID))
	claims.TokenType = TokenTypeCandidate
	claims.UserID = u.ID
	claims.Email = strings.ToLower(u.Email)

	return s.signAndRegister(ctx, claims, config.CacheKey.CandidateSessionKey(u.Email))
}

func (s *AuthService) newClaims(subject string) Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
	}
}

func (s *AuthService) signAndRegister(ctx context.Context, claims Claims, sessionKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	// Store session in Redis with same expiry as JWT.
	if err := s.rdb.Set(ctx, sessionKey, claims.ID, s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateSession checks that the token's JTI is still the active session.
func (s *AuthService) ValidateSession(ctx context.Context, claims *Claims) error {
	stored, err := s.rdb.Get(ctx, sessionKeyFor(claims)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionInvalidated
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != claims.ID {
		return ErrSessionInvalidated
	}
	return nil
}

// Logout removes the session so the token stops working.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	return s.rdb.Del(ctx, sessionKeyFor(claims)).Err()
}

func sessionKeyFor(claims *Claims) string {
	if claims.TokenType == TokenTypeCandidate {
		return config.CacheKey.CandidateSessionKey(claims.Email)
	}
	return config.CacheKey.StaffSessionKey(claims.UserID)
}
