package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type completionService interface {
	SubjectStatus(ctx context.Context, semester int, subjectID string) (*models.SubjectStatus, error)
	SemesterStats(ctx context.Context, semester int) (*models.SemesterStats, error)
	SemesterProgress(ctx context.Context, semester int) (*models.SemesterProgress, error)
}

// CompletionHandler serves semester completion views.
type CompletionHandler struct {
	service completionService
}

// NewCompletionHandler constructs a CompletionHandler.
func NewCompletionHandler(svc completionService) *CompletionHandler {
	return &CompletionHandler{service: svc}
}

// Stats godoc
// @Summary Completion totals for a semester
// @Tags Completion
// @Produce json
// @Security BearerAuth
// @Param semester path int true "Semester"
// @Success 200 {object} response.Envelope
// @Router /semesters/{semester}/stats [get]
func (h *CompletionHandler) Stats(c *gin.Context) {
	semester, ok := intParam(c, "semester")
	if !ok {
		return
	}
	stats, err := h.service.SemesterStats(c.Request.Context(), semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Progress godoc
// @Summary Per-subject completion for a semester
// @Tags Completion
// @Produce json
// @Security BearerAuth
// @Param semester path int true "Semester"
// @Success 200 {object} response.Envelope
// @Router /semesters/{semester}/progress [get]
func (h *CompletionHandler) Progress(c *gin.Context) {
	semester, ok := intParam(c, "semester")
	if !ok {
		return
	}
	progress, err := h.service.SemesterProgress(c.Request.Context(), semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// SubjectStatus godoc
// @Summary Completion state of one subject
// @Tags Completion
// @Produce json
// @Security BearerAuth
// @Param semester path int true "Semester"
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /semesters/{semester}/subjects/{subjectId}/status [get]
func (h *CompletionHandler) SubjectStatus(c *gin.Context) {
	semester, ok := intParam(c, "semester")
	if !ok {
		return
	}
	status, err := h.service.SubjectStatus(c.Request.Context(), semester, c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
