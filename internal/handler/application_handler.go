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

// multipartOverhead leaves room for the text fields next to the resume.
const multipartOverhead = 1 << 20

// ApplicationSubmitter accepts and lists job applications.
type ApplicationSubmitter interface {
	Submit(ctx context.Context, in *model.ApplicationFormInput) (*model.ApplicationAck, error)
	List(ctx context.Context, page, perPage int) ([]model.Application, int, error)
}

// ApplicationHandler handles the public intake endpoint and the staff listing.
type ApplicationHandler struct {
	apps     ApplicationSubmitter
	maxBytes int64
	log      zerolog.Logger
}

// NewApplicationHandler creates a new ApplicationHandler. maxUpload is the
// resume size limit in bytes.
func NewApplicationHandler(apps ApplicationSubmitter, maxUpload int64, log zerolog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		apps:     apps,
		maxBytes: maxUpload + multipartOverhead,
		log:      log.With().Str("component", "application_handler").Logger(),
	}
}

// SubmitApplication godoc
// POST /api/applicationform
// POST /api/v1/public/applications
// Accepts the multipart application form. Errors use the flat detail shape.
func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)

	if err := c.Request.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Detail(c, http.StatusRequestEntityTooLarge, response.GetMessage(response.ErrFileTooLarge))
			return
		}
		response.Detail(c, http.StatusBadRequest, response.GetMessage(response.ErrInvalidPayload))
		return
	}

	var in model.ApplicationFormInput
	if fields := validator.BindForm(c, &in); fields != nil {
		response.Detail(c, http.StatusBadRequest, response.GetMessage(response.ErrInvalidPayload))
		return
	}

	if fh, err := c.FormFile("resume"); err == nil {
		f, err := fh.Open()
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to open uploaded resume")
			response.Detail(c, http.StatusBadRequest, response.GetMessage(response.ErrFileRequired))
			return
		}
		defer f.Close()

		resume, err := model.NewResumeFile(fh.Filename, fh.Header.Get("Content-Type"), f)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to read uploaded resume")
			response.Detail(c, http.StatusBadRequest, response.GetMessage(response.ErrFileRequired))
			return
		}
		in.Resume = resume
	}

	ack, err := h.apps.Submit(c.Request.Context(), &in)
	if err != nil {
		var fieldErrs service.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			response.Detail(c, http.StatusBadRequest, fieldErrs.Error())
		case errors.Is(err, service.ErrFileRequired):
			response.Detail(c, http.StatusBadRequest, response.GetMessage(response.ErrFileRequired))
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Detail(c, http.StatusBadRequest, response.GetMessage(response.ErrUnsupportedFile))
		case errors.Is(err, service.ErrFileTooLarge):
			response.Detail(c, http.StatusRequestEntityTooLarge, response.GetMessage(response.ErrFileTooLarge))
		case errors.Is(err, service.ErrEmailRegistered):
			response.Detail(c, http.StatusBadRequest, response.GetMessage(response.ErrEmailRegistered))
		default:
			h.log.Error().Err(err).Str("email", in.Email).Msg("Application submission failed")
			response.Detail(c, http.StatusInternalServerError, detailInternalServerFail)
		}
		return
	}

	c.JSON(http.StatusOK, ack)
}

// ListApplications godoc
// GET /api/v1/staff/applications?page=&per_page=
// Returns stored applications newest first.
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	var q model.ListApplicationsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	apps, total, err := h.apps.List(c.Request.Context(), q.Page, q.PerPage)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list applications")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	page, perPage := q.Page, q.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}
	response.SuccessWithPagination(c, http.StatusOK, apps, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}
