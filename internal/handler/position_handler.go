package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/response"
	"github.com/evpower/recruit-backend/internal/service"
	"github.com/evpower/recruit-backend/internal/validator"
)

// PositionCatalog lists and creates open roles.
type PositionCatalog interface {
	List(ctx context.Context) ([]model.JobPosition, error)
	Create(ctx context.Context, req *model.CreateJobPositionRequest) (*model.JobPosition, error)
}

// PositionHandler handles job position endpoints.
type PositionHandler struct {
	positions PositionCatalog
	log       zerolog.Logger
}

// NewPositionHandler creates a new PositionHandler.
func NewPositionHandler(positions PositionCatalog, log zerolog.Logger) *PositionHandler {
	return &PositionHandler{
		positions: positions,
		log:       log.With().Str("component", "position_handler").Logger(),
	}
}

// ListPositions godoc
// GET /api/v1/public/positions
func (h *PositionHandler) ListPositions(c *gin.Context) {
	positions, err := h.positions.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list positions")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, positions)
}

// CreatePosition godoc
// POST /api/v1/staff/positions
// Admin only.
func (h *PositionHandler) CreatePosition(c *gin.Context) {
	var req model.CreateJobPositionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p, err := h.positions.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrPositionExists) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		h.log.Error().Err(err).Str("title", req.Title).Msg("Failed to create position")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, p)
}
