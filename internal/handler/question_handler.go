package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/response"
	"github.com/evpower/recruit-backend/internal/validator"
)

// QuestionEditor reads and extends the aptitude question bank.
type QuestionEditor interface {
	LoadQuestions(ctx context.Context) ([]model.Question, error)
	Add(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error)
}

// QuestionHandler handles question bank endpoints.
type QuestionHandler struct {
	questionService QuestionEditor
	log             zerolog.Logger
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService QuestionEditor, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		log:             log.With().Str("component", "question_handler").Logger(),
	}
}

// ListQuestions godoc
// GET /api/v1/staff/questions
// Lists the question bank including answer keys. Admin only.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	questions, err := h.questionService.LoadQuestions(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load questions")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if questions == nil {
		questions = []model.Question{}
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// AddQuestion godoc
// POST /api/v1/staff/questions
// Appends a question to the bank and refreshes the cached payload. Admin only.
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Add(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidQuestion) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
				"correctAnswer": err.Error(),
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to add question")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}
