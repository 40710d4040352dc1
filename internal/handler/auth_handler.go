package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/middleware"
	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/response"
	"github.com/evpower/recruit-backend/internal/service"
	"github.com/evpower/recruit-backend/internal/validator"
)

// Login failure details read by the dashboard and test clients.
const (
	detailStaffNotFound      = "Invalid credentials or user not found"
	detailStaffBadPassword   = "Invalid credentials"
	detailCandidateBadLogin  = "Please try to login with correct credentials"
	detailInternalServerFail = "Internal Server Error"
)

// StaffAuthenticator checks admin and HR credentials.
type StaffAuthenticator interface {
	Authenticate(ctx context.Context, email, password string, role model.Role) (*model.StaffUser, error)
}

// CandidateAuthenticator checks aptitude test credentials.
type CandidateAuthenticator interface {
	Authenticate(ctx context.Context, email, password string) (*model.AptitudeUser, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	staff       StaffAuthenticator
	candidates  CandidateAuthenticator
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	staff StaffAuthenticator,
	candidates CandidateAuthenticator,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		staff:       staff,
		candidates:  candidates,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// StaffLogin godoc
// POST /api/v1/auth/staff/login
// Validates email + password + role, returns a bearer token.
func (h *AuthHandler) StaffLogin(c *gin.Context) {
	var req model.StaffLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.staff.Authenticate(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStaffNotFound), errors.Is(err, service.ErrAccountInactive):
			response.Detail(c, http.StatusUnauthorized, detailStaffNotFound)
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Detail(c, http.StatusUnauthorized, detailStaffBadPassword)
		default:
			h.log.Error().Err(err).Str("email", req.Email).Msg("Staff login failed")
			response.Detail(c, http.StatusInternalServerError, detailInternalServerFail)
		}
		return
	}

	token, err := h.authService.GenerateStaffToken(c.Request.Context(), user)
	if err != nil {
		h.log.Error().Err(err).Int("staff_id", user.ID).Msg("Failed to issue staff token")
		response.Detail(c, http.StatusInternalServerError, detailInternalServerFail)
		return
	}

	c.JSON(http.StatusOK, model.StaffLoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        user.Role,
		Email:       user.Email,
		FullName:    user.FullName,
	})
}

// CandidateLogin godoc
// POST /api/v1/auth/candidate/login
// Exchanges the emailed test password for an assessment token.
func (h *AuthHandler) CandidateLogin(c *gin.Context) {
	var req model.CandidateLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.Detail(c, http.StatusBadRequest, detailCandidateBadLogin)
		return
	}

	user, err := h.candidates.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.log.Error().Err(err).Str("email", req.Email).Msg("Candidate login failed")
			response.Detail(c, http.StatusInternalServerError, detailInternalServerFail)
			return
		}
		response.Detail(c, http.StatusUnauthorized, detailCandidateBadLogin)
		return
	}

	token, err := h.authService.GenerateCandidateToken(c.Request.Context(), user)
	if err != nil {
		h.log.Error().Err(err).Int("user_id", user.ID).Msg("Failed to issue candidate token")
		response.Detail(c, http.StatusInternalServerError, detailInternalServerFail)
		return
	}

	c.JSON(http.StatusOK, model.CandidateLoginResponse{Success: true, AuthToken: token})
}

// StaffMe godoc
// GET /api/v1/auth/staff/me
// Returns the session context of the signed-in staff member.
func (h *AuthHandler) StaffMe(c *gin.Context) {
	sc, ok := middleware.GetSessionContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	response.Success(c, http.StatusOK, sc)
}

// Logout godoc
// POST /api/v1/auth/staff/logout
// POST /api/v1/auth/candidate/logout
// Ends the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.log.Error().Err(err).Str("email", claims.Email).Msg("Logout failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
