package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
	"github.com/noah-isme/timetable-api/pkg/signer"
)

type timetableService interface {
	Catalog() models.Catalog
	SemesterTimetable(ctx context.Context, semester int) (*models.Timetable, error)
	TeacherTimetable(ctx context.Context, teacher models.Teacher) (*models.Timetable, error)
	RoomTimetable(ctx context.Context, room string) (*models.Timetable, error)
	FreeRooms(ctx context.Context, semester int, slot string, weekdays []models.Weekday) (*models.FreeRooms, error)
}

type teacherGetter interface {
	Get(ctx context.Context, id string) (*models.Teacher, error)
}

type exportService interface {
	ExportSemester(ctx context.Context, semester int, format models.ExportFormat) (*models.ExportFile, error)
	TeacherCalendar(ctx context.Context, teacherID string) (*models.ExportFile, error)
}

type feedSigner interface {
	Sign(subject string) (string, time.Time, error)
	Verify(token, subject string) error
}

// TimetableHandler serves grid views, room availability and exports.
type TimetableHandler struct {
	timetables timetableService
	teachers   teacherGetter
	exports    exportService
	feeds      feedSigner
	feedPath   string
}

// NewTimetableHandler constructs a TimetableHandler.
func NewTimetableHandler(timetables timetableService, teachers teacherGetter, exports exportService) *TimetableHandler {
	return &TimetableHandler{timetables: timetables, teachers: teachers, exports: exports}
}

// WithFeeds enables signed calendar subscription links. feedPath is the public
// route prefix the links point at, for example /api/v1/feeds/teachers.
func (h *TimetableHandler) WithFeeds(feeds feedSigner, feedPath string) *TimetableHandler {
	h.feeds = feeds
	h.feedPath = strings.TrimRight(feedPath, "/")
	return h
}

// Catalog godoc
// @Summary Weekday, slot and room catalogs
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /catalog [get]
func (h *TimetableHandler) Catalog(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.timetables.Catalog(), nil)
}

// Semester godoc
// @Summary Weekly grid of one semester
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Param semester path int true "Semester"
// @Success 200 {object} response.Envelope
// @Router /semesters/{semester}/timetable [get]
func (h *TimetableHandler) Semester(c *gin.Context) {
	semester, ok := intParam(c, "semester")
	if !ok {
		return
	}
	grid, err := h.timetables.SemesterTimetable(c.Request.Context(), semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Teacher godoc
// @Summary Weekly grid of one teacher across semesters
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/timetable [get]
func (h *TimetableHandler) Teacher(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	grid, err := h.timetables.TeacherTimetable(c.Request.Context(), *teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Room godoc
// @Summary Weekly grid of one room across semesters
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Param room path string true "Room label"
// @Success 200 {object} response.Envelope
// @Router /rooms/{room}/timetable [get]
func (h *TimetableHandler) Room(c *gin.Context) {
	grid, err := h.timetables.RoomTimetable(c.Request.Context(), c.Param("room"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// FreeRooms godoc
// @Summary Rooms free at a slot on every requested weekday
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Param semester path int true "Semester"
// @Param slot query string true "Slot"
// @Param weekdays query string false "Comma separated weekdays, default all"
// @Success 200 {object} response.Envelope
// @Router /semesters/{semester}/rooms/available [get]
func (h *TimetableHandler) FreeRooms(c *gin.Context) {
	semester, ok := intParam(c, "semester")
	if !ok {
		return
	}
	days, ok := weekdaysQuery(c, "weekdays")
	if !ok {
		return
	}
	rooms, err := h.timetables.FreeRooms(c.Request.Context(), semester, strings.TrimSpace(c.Query("slot")), days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// Export godoc
// @Summary Download a semester grid
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param semester path int true "Semester"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} binary
// @Router /semesters/{semester}/timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	semester, ok := intParam(c, "semester")
	if !ok {
		return
	}
	raw := c.DefaultQuery("format", string(models.ExportCSV))
	format, ok := service.ParseExportFormat(raw)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv, pdf or xlsx"))
		return
	}
	file, err := h.exports.ExportSemester(c.Request.Context(), semester, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Calendar godoc
// @Summary Download a teacher's recurring sessions as iCalendar
// @Tags Timetable
// @Produce text/calendar
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 200 {file} binary
// @Router /teachers/{id}/calendar.ics [get]
func (h *TimetableHandler) Calendar(c *gin.Context) {
	file, err := h.exports.TeacherCalendar(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// CalendarLink godoc
// @Summary Signed subscription link for a teacher's calendar
// @Description Calendar clients fetch the link without a bearer token until it expires.
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/calendar/link [get]
func (h *TimetableHandler) CalendarLink(c *gin.Context) {
	if h.feeds == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "calendar feeds are disabled"))
		return
	}
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	token, expiresAt, err := h.feeds.Sign(teacher.ID)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to sign calendar link"))
		return
	}
	link := h.feedPath + "/" + url.PathEscape(teacher.ID) + "/calendar.ics?token=" + url.QueryEscape(token)
	response.JSON(c, http.StatusOK, gin.H{"url": link, "expires_at": expiresAt}, nil)
}

// CalendarFeed godoc
// @Summary Public iCalendar feed behind a signed token
// @Tags Timetable
// @Produce text/calendar
// @Param id path string true "Teacher ID"
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /feeds/teachers/{id}/calendar.ics [get]
func (h *TimetableHandler) CalendarFeed(c *gin.Context) {
	if h.feeds == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "calendar feeds are disabled"))
		return
	}
	id := c.Param("id")
	if err := h.feeds.Verify(c.Query("token"), id); err != nil {
		message := "invalid calendar link"
		if errors.Is(err, signer.ErrExpiredToken) {
			message = "calendar link expired"
		}
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, message))
		return
	}
	h.Calendar(c)
}
