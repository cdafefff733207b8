package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type availabilityChecker interface {
	Check(ctx context.Context, req models.CheckAvailabilityRequest) (*models.AvailabilityResult, error)
}

type plannerService interface {
	AssignSubject(ctx context.Context, req models.AssignSubjectRequest) (*models.AssignmentResult, error)
	AssignDay(ctx context.Context, req models.AssignDayRequest) (*models.Session, error)
	UnassignSession(ctx context.Context, id string) error
	UnassignSubjectFromSlot(ctx context.Context, semester int, slot, subjectID string) (*models.UnassignResult, error)
}

type sessionQuery interface {
	Sessions(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
}

type conflictScanner interface {
	ScanConflicts(ctx context.Context) (*models.ConflictReport, error)
}

// AssignmentHandler exposes session placement, removal and conflict scans.
type AssignmentHandler struct {
	availability availabilityChecker
	planner      plannerService
	sessions     sessionQuery
	conflicts    conflictScanner
}

// NewAssignmentHandler constructs an AssignmentHandler.
func NewAssignmentHandler(availability availabilityChecker, planner plannerService, sessions sessionQuery, conflicts conflictScanner) *AssignmentHandler {
	return &AssignmentHandler{availability: availability, planner: planner, sessions: sessions, conflicts: conflicts}
}

// Check godoc
// @Summary Check whether a placement is free
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CheckAvailabilityRequest true "Placement"
// @Success 200 {object} response.Envelope
// @Router /assignments/check [post]
func (h *AssignmentHandler) Check(c *gin.Context) {
	var req models.CheckAvailabilityRequest
	if !bindJSON(c, &req, "invalid availability query") {
		return
	}
	result, err := h.availability.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Assign godoc
// @Summary Place a subject on its first credits weekdays
// @Description Weekdays that conflict are reported in failures; the others are kept.
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.AssignSubjectRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req models.AssignSubjectRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	result, err := h.planner.AssignSubject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if len(result.Created) > 0 {
		status = http.StatusCreated
	}
	response.JSON(c, status, result, nil)
}

// Unassign godoc
// @Summary Remove every session of a subject at a semester slot
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param semester query int true "Semester"
// @Param slot query string true "Slot"
// @Param subjectId query string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /assignments [delete]
func (h *AssignmentHandler) Unassign(c *gin.Context) {
	semester, ok := optionalIntQuery(c, "semester")
	if !ok {
		return
	}
	if semester == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester is required"))
		return
	}
	result, err := h.planner.UnassignSubjectFromSlot(c.Request.Context(), *semester, strings.TrimSpace(c.Query("slot")), strings.TrimSpace(c.Query("subjectId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CreateSession godoc
// @Summary Place a single session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.AssignDayRequest true "Session"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions [post]
func (h *AssignmentHandler) CreateSession(c *gin.Context) {
	var req models.AssignDayRequest
	if !bindJSON(c, &req, "invalid session payload") {
		return
	}
	session, err := h.planner.AssignDay(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// ListSessions godoc
// @Summary List sessions by equality filter
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param semester query int false "Semester"
// @Param weekday query string false "Weekday"
// @Param slot query string false "Slot"
// @Param subjectId query string false "Subject ID"
// @Param teacherId query string false "Teacher ID"
// @Param room query string false "Room"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *AssignmentHandler) ListSessions(c *gin.Context) {
	semester, ok := optionalIntQuery(c, "semester")
	if !ok {
		return
	}
	filter := models.SessionFilter{
		Semester:  semester,
		Weekday:   models.Weekday(strings.TrimSpace(c.Query("weekday"))),
		Slot:      strings.TrimSpace(c.Query("slot")),
		SubjectID: strings.TrimSpace(c.Query("subjectId")),
		TeacherID: strings.TrimSpace(c.Query("teacherId")),
		Room:      strings.TrimSpace(c.Query("room")),
	}
	sessions, err := h.sessions.Sessions(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil, map[string]interface{}{"count": len(sessions)})
}

// DeleteSession godoc
// @Summary Remove one session
// @Tags Sessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *AssignmentHandler) DeleteSession(c *gin.Context) {
	if err := h.planner.UnassignSession(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Conflicts godoc
// @Summary Scan every session for double-booked rooms and teachers
// @Tags Conflicts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /conflicts [get]
func (h *AssignmentHandler) Conflicts(c *gin.Context) {
	report, err := h.conflicts.ScanConflicts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
