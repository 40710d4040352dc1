package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/middleware"
	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/response"
	"github.com/evpower/recruit-backend/internal/service"
)

// DashboardSource builds the staff dashboard metrics.
type DashboardSource interface {
	GetDashboardData(ctx context.Context, viewer model.SessionContext) (*service.DashboardData, error)
}

// DashboardHandler handles staff dashboard endpoints.
type DashboardHandler struct {
	dashboardService DashboardSource
	log              zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService DashboardSource, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		log:              log.With().Str("component", "dashboard_handler").Logger(),
	}
}

// GetDashboardData godoc
// GET /api/v1/staff/dashboard
// Returns summary stat cards, attempt bands, the position breakdown and recent attempts.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	viewer, ok := middleware.GetSessionContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	data, err := h.dashboardService.GetDashboardData(c.Request.Context(), viewer)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build dashboard")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, data)
}
