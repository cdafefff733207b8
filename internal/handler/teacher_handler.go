package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type teacherService interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error)
	Get(ctx context.Context, id string) (*models.Teacher, error)
	Create(ctx context.Context, req models.TeacherRequest) (*models.Teacher, error)
	Update(ctx context.Context, id string, req models.TeacherRequest) (*models.Teacher, error)
	Delete(ctx context.Context, id string) error
	AddSubject(ctx context.Context, id string, req models.TeacherSubjectRequest) (*models.Teacher, error)
	RemoveSubject(ctx context.Context, id, subjectID string) (*models.Teacher, error)
	ReplaceSubjects(ctx context.Context, id string, req models.TeacherSubjectsRequest) (*models.Teacher, error)
	UpdateAvailability(ctx context.Context, id string, req models.AvailabilityRequest) (*models.Teacher, error)
	Workload(ctx context.Context, id string) (*models.TeacherWorkload, error)
}

// TeacherHandler manages teacher endpoints.
type TeacherHandler struct {
	service teacherService
}

// NewTeacherHandler constructs a new handler.
func NewTeacherHandler(svc teacherService) *TeacherHandler {
	return &TeacherHandler{service: svc}
}

// List godoc
// @Summary List teachers
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name"
// @Param subjectId query string false "Only teachers qualified for this subject"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	filter := models.TeacherFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		SubjectID: strings.TrimSpace(c.Query("subjectId")),
	}
	teachers, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil, map[string]interface{}{"count": len(teachers)})
}

// Get godoc
// @Summary Get teacher
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Create godoc
// @Summary Create teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.TeacherRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Router /teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var req models.TeacherRequest
	if !bindJSON(c, &req, "invalid teacher payload") {
		return
	}
	teacher, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// Update godoc
// @Summary Update teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Param payload body models.TeacherRequest true "Teacher payload"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	var req models.TeacherRequest
	if !bindJSON(c, &req, "invalid teacher payload") {
		return
	}
	teacher, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Delete godoc
// @Summary Delete teacher
// @Description Sessions keep their slot with the teacher cleared.
// @Tags Teachers
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 204
// @Router /teachers/{id} [delete]
func (h *TeacherHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddSubject godoc
// @Summary Qualify a teacher for a subject
// @Tags Teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Param payload body models.TeacherSubjectRequest true "Subject"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/subjects [post]
func (h *TeacherHandler) AddSubject(c *gin.Context) {
	var req models.TeacherSubjectRequest
	if !bindJSON(c, &req, "invalid subject payload") {
		return
	}
	teacher, err := h.service.AddSubject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// ReplaceSubjects godoc
// @Summary Replace a teacher's qualified subjects
// @Tags Teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Param payload body models.TeacherSubjectsRequest true "Subjects"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/subjects [put]
func (h *TeacherHandler) ReplaceSubjects(c *gin.Context) {
	var req models.TeacherSubjectsRequest
	if !bindJSON(c, &req, "invalid subjects payload") {
		return
	}
	teacher, err := h.service.ReplaceSubjects(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// RemoveSubject godoc
// @Summary Remove a qualified subject
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/subjects/{subjectId} [delete]
func (h *TeacherHandler) RemoveSubject(c *gin.Context) {
	teacher, err := h.service.RemoveSubject(c.Request.Context(), c.Param("id"), c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// UpdateAvailability godoc
// @Summary Replace a teacher's availability mask
// @Tags Teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Param payload body models.AvailabilityRequest true "Mask keyed WEEKDAY_SLOT"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/availability [put]
func (h *TeacherHandler) UpdateAvailability(c *gin.Context) {
	var req models.AvailabilityRequest
	if !bindJSON(c, &req, "invalid availability payload") {
		return
	}
	teacher, err := h.service.UpdateAvailability(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Workload godoc
// @Summary Weekly hours against placed sessions
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/workload [get]
func (h *TeacherHandler) Workload(c *gin.Context) {
	workload, err := h.service.Workload(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workload, nil)
}
