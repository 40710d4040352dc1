package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/attemptstore"
	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/response"
	"github.com/evpower/recruit-backend/internal/service"
	"github.com/evpower/recruit-backend/internal/validator"
)

const (
	keepAliveInterval = 30 * time.Second
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// AttemptHandler serves the attempt log and result views to staff.
type AttemptHandler struct {
	attempts *service.AttemptService
	log      zerolog.Logger
	now      func() time.Time
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attempts *service.AttemptService, log zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		attempts: attempts,
		log:      log.With().Str("component", "attempt_handler").Logger(),
		now:      time.Now,
	}
}

// ListAttempts godoc
// GET /api/v1/staff/attempts?email=
// Lists attempts in completion order. Filtered entries keep their log index.
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	var q model.AttemptsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	list, err := h.attempts.List(c.Request.Context(), nil, q.Email)
	if err != nil {
		h.failAttempts(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": list})
}

// ListHandoffAttempts godoc
// POST /api/v1/staff/attempts/view?email=
// Lists the attempts supplied in the body instead of reading the log.
func (h *AttemptHandler) ListHandoffAttempts(c *gin.Context) {
	var q model.AttemptsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	var handoff model.AttemptHandoff
	if fields := validator.Bind(c, &handoff); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	list, err := h.attempts.List(c.Request.Context(), &handoff, q.Email)
	if err != nil {
		h.failAttempts(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": list})
}

// GetAttemptResults godoc
// GET /api/v1/staff/attempts/:index/results
// Renders the per-question breakdown of one attempt.
func (h *AttemptHandler) GetAttemptResults(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.attempts.View(c.Request.Context(), nil, index)
	if err != nil {
		h.failAttempts(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// ViewHandoffResults godoc
// POST /api/v1/staff/results/view?index=
// Renders the body's selected attempt, or the attempt at index among the
// body's attempts.
func (h *AttemptHandler) ViewHandoffResults(c *gin.Context) {
	var handoff model.AttemptHandoff
	if fields := validator.Bind(c, &handoff); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	index := -1
	if raw := c.Query("index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		index = n
	}

	view, err := h.attempts.View(c.Request.Context(), &handoff, index)
	if err != nil {
		h.failAttempts(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// ExportAttempts godoc
// GET /api/v1/staff/attempts/export?email=
// Downloads the attempts as an .xlsx workbook.
func (h *AttemptHandler) ExportAttempts(c *gin.Context) {
	var q model.AttemptsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	// Build the workbook before any header goes out so failures stay JSON.
	var buf bytes.Buffer
	if err := h.attempts.Export(c.Request.Context(), &buf, q.Email); err != nil {
		h.failAttempts(c, err)
		return
	}

	filename := fmt.Sprintf("aptitude_attempts_%s.xlsx", h.now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// StreamAttempts godoc
// GET /api/v1/staff/attempts/stream?token=
// Server-sent events: one "attempt" event per finalized assessment.
func (h *AttemptHandler) StreamAttempts(c *gin.Context) {
	reqCtx := c.Request.Context()

	feed, err := h.attempts.Feed(reqCtx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to subscribe to attempt feed")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrAttemptStore)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	h.log.Info().Msg("Staff attached to attempt feed")

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Staff detached from attempt feed")
			return

		case rec, ok := <-feed:
			if !ok {
				return
			}
			c.SSEvent("attempt", rec)
			c.Writer.Flush()

		case <-keepAliveTicker.C:
			c.SSEvent("ping", gin.H{"type": "ping"})
			c.Writer.Flush()
		}
	}
}

func (h *AttemptHandler) failAttempts(c *gin.Context, err error) {
	var pe *attemptstore.PersistenceError
	switch {
	case errors.Is(err, attemptstore.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.As(err, &pe):
		h.log.Error().Err(err).Msg("Attempt log unavailable")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrAttemptStore)
	default:
		h.log.Error().Err(err).Msg("Attempt request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
