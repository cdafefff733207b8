package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type sessionFinder interface {
	Find(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
}

// AvailabilityService reports whether a placement collides with stored sessions.
type AvailabilityService struct {
	sessions  sessionFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(sessions sessionFinder, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{sessions: sessions, validator: validate, logger: logger}
}

// Check validates a request payload and runs CheckAvailability.
func (s *AvailabilityService) Check(ctx context.Context, req models.CheckAvailabilityRequest) (*models.AvailabilityResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid availability query")
	}
	day, ok := models.ParseWeekday(req.Weekday)
	if !ok {
		return nil, validationError(nil, "weekday must be one of MON, TUE, WED, THU, FRI")
	}
	if !models.IsValidSlot(req.Slot) {
		return nil, validationError(nil, "slot is not in the catalog")
	}
	return s.CheckAvailability(ctx, req.Semester, day, req.Slot, req.TeacherID, req.Room)
}

// CheckAvailability reports whether a session may be placed at (semester, weekday, slot).
// The room is checked within the semester, the teacher across every semester.
// Blank or absent teacher and room always yield free.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, semester int, weekday models.Weekday, slot string, teacherID, room *string) (*models.AvailabilityResult, error) {
	if label := normalizedRoom(room); label != "" {
		taken, err := s.sessions.Find(ctx, models.SessionFilter{
			Semester: &semester,
			Weekday:  weekday,
			Slot:     slot,
			Room:     label,
		})
		if err != nil {
			return nil, appErrors.Store(err, "failed to check room availability")
		}
		if len(taken) > 0 {
			blocking := taken[0]
			return &models.AvailabilityResult{
				Reason:    models.ReasonRoomOccupied,
				Dimension: models.DimensionRoom,
				Blocking:  &blocking,
			}, nil
		}
	}

	if id := trimmed(teacherID); id != "" {
		busy, err := s.sessions.Find(ctx, models.SessionFilter{
			Weekday:   weekday,
			Slot:      slot,
			TeacherID: id,
		})
		if err != nil {
			return nil, appErrors.Store(err, "failed to check teacher availability")
		}
		if len(busy) > 0 {
			blocking := busy[0]
			return &models.AvailabilityResult{
				Reason:    models.ReasonTeacherOccupied,
				Dimension: models.DimensionTeacher,
				Blocking:  &blocking,
			}, nil
		}
	}

	return &models.AvailabilityResult{Free: true}, nil
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func normalizedRoom(v *string) string {
	return strings.ToUpper(trimmed(v))
}
