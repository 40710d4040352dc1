package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/assessment"
	"github.com/evpower/recruit-backend/internal/middleware"
	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/response"
	"github.com/evpower/recruit-backend/internal/validator"
)

// AssessmentHandler handles the candidate aptitude test endpoints.
type AssessmentHandler struct {
	manager *assessment.Manager
	log     zerolog.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(manager *assessment.Manager, log zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		manager: manager,
		log:     log.With().Str("component", "assessment_handler").Logger(),
	}
}

// StartAssessment godoc
// POST /api/v1/candidate/assessment/start
// Loads the question set and starts the countdown. Resumes a running test.
func (h *AssessmentHandler) StartAssessment(c *gin.Context) {
	email, ok := candidateEmail(c)
	if !ok {
		return
	}

	sess, err := h.manager.Start(c.Request.Context(), email)
	if err != nil {
		h.log.Warn().Err(err).Str("email", email).Msg("Failed to start assessment")
		failAssessment(c, err)
		return
	}

	response.Success(c, http.StatusOK, sess.Snapshot())
}

// GetAssessmentState godoc
// GET /api/v1/candidate/assessment/state
// Returns questions without the answer key, selections and remaining time.
func (h *AssessmentHandler) GetAssessmentState(c *gin.Context) {
	email, ok := candidateEmail(c)
	if !ok {
		return
	}

	sess, err := h.manager.Get(email)
	if err != nil {
		failAssessment(c, err)
		return
	}

	response.Success(c, http.StatusOK, sess.Snapshot())
}

// SelectAnswer godoc
// PUT /api/v1/candidate/assessment/answers
// Records an option for one question. The last selection wins.
func (h *AssessmentHandler) SelectAnswer(c *gin.Context) {
	email, ok := candidateEmail(c)
	if !ok {
		return
	}

	var req model.SelectAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.manager.Select(email, req.QuestionID, *req.OptionIndex); err != nil {
		failAssessment(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"question_id":  req.QuestionID,
		"option_index": *req.OptionIndex,
	})
}

// SubmitAssessment godoc
// POST /api/v1/candidate/assessment/submit
// Grades the test and appends it to the attempt log.
func (h *AssessmentHandler) SubmitAssessment(c *gin.Context) {
	email, ok := candidateEmail(c)
	if !ok {
		return
	}

	// The append must not be cut short by a client disconnect.
	res, err := h.manager.Submit(context.WithoutCancel(c.Request.Context()), email)
	if err != nil {
		failAssessment(c, err)
		return
	}

	body := gradedBody(res)
	if !res.Persisted() {
		h.log.Error().Err(res.PersistErr).Str("email", email).Msg("Attempt scored but not saved")
		response.FailWithData(c, http.StatusServiceUnavailable, response.ErrAttemptNotSaved, body)
		return
	}

	response.Success(c, http.StatusOK, body)
}

// ─── Helpers ────────────────────────────────────────────────────────

func candidateEmail(c *gin.Context) (string, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.Email == "" {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return "", false
	}
	return claims.Email, true
}

func gradedBody(res assessment.Result) gin.H {
	return gin.H{
		"status":     res.Record.Outcome,
		"score":      res.Record.Score,
		"total":      res.Record.TotalQuestions,
		"percentage": res.Record.Percentage,
		"time_spent": res.Record.TimeSpent,
		"saved":      res.Persisted(),
	}
}

// assessmentErrCode maps session errors onto API error codes.
func assessmentErrCode(err error) (int, response.ErrCode) {
	var loadErr *assessment.LoadError
	switch {
	case errors.As(err, &loadErr):
		return http.StatusServiceUnavailable, response.ErrQuestionsUnavailable
	case errors.Is(err, assessment.ErrNoActiveSession), errors.Is(err, assessment.ErrSessionAbandoned):
		return http.StatusNotFound, response.ErrNoActiveAssessment
	case errors.Is(err, assessment.ErrSessionFinalized):
		return http.StatusConflict, response.ErrAssessmentFinished
	case errors.Is(err, assessment.ErrNotStarted):
		return http.StatusConflict, response.ErrAssessmentNotStarted
	case errors.Is(err, assessment.ErrAlreadyStarted):
		return http.StatusConflict, response.ErrConflict
	case errors.Is(err, assessment.ErrUnknownQuestion), errors.Is(err, assessment.ErrOptionOutOfRange):
		return http.StatusBadRequest, response.ErrInvalidAnswer
	case errors.Is(err, assessment.ErrCandidateRequired):
		return http.StatusUnauthorized, response.ErrTokenRequired
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

func failAssessment(c *gin.Context, err error) {
	status, code := assessmentErrCode(err)
	response.Fail(c, status, code)
}
