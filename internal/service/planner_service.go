package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/lock"
)

type sessionStore interface {
	Find(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// placementObserver receives planner outcomes, typically for metrics.
type placementObserver interface {
	ObserveSessionsCreated(n int)
	ObservePlacementRejected(code string)
}

type noopObserver struct{}

func (noopObserver) ObserveSessionsCreated(int)        {}
func (noopObserver) ObservePlacementRejected(string)   {}
func (noopObserver) ObserveConflictsDetected(int, int) {}

// PlannerService places and removes sessions. Every validate-then-create runs
// under the (weekday, slot) lock.
type PlannerService struct {
	sessions     sessionStore
	subjects     subjectReader
	teachers     teacherReader
	availability *AvailabilityService
	locker       lock.Locker
	lockPrefix   string
	observer     placementObserver
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewPlannerService instantiates PlannerService.
func NewPlannerService(
	sessions sessionStore,
	subjects subjectReader,
	teachers teacherReader,
	availability *AvailabilityService,
	locker lock.Locker,
	lockPrefix string,
	validate *validator.Validate,
	logger *zap.Logger,
) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if availability == nil {
		availability = NewAvailabilityService(sessions, validate, logger)
	}
	if locker == nil {
		locker = lock.NewMemoryLocker(0)
	}
	return &PlannerService{
		sessions:     sessions,
		subjects:     subjects,
		teachers:     teachers,
		availability: availability,
		locker:       locker,
		lockPrefix:   lockPrefix,
		observer:     noopObserver{},
		validator:    validate,
		logger:       logger,
	}
}

// WithObserver attaches an outcome observer.
func (s *PlannerService) WithObserver(observer placementObserver) *PlannerService {
	if observer != nil {
		s.observer = observer
	}
	return s
}

// placement is a validated request shared by AssignSubject and AssignDay.
type placement struct {
	semester  int
	slot      string
	subject   *models.Subject
	teacherID *string
	room      *string
}

// AssignSubject places the subject on the first credits weekdays at one slot.
// Per-weekday conflicts, duplicates and store failures are counted and the loop
// continues; weekdays already placed are kept.
func (s *PlannerService) AssignSubject(ctx context.Context, req models.AssignSubjectRequest) (*models.AssignmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}
	p, err := s.prepare(ctx, req.Semester, req.Slot, req.SubjectID, req.TeacherID, req.Room)
	if err != nil {
		return nil, err
	}

	days := models.FirstWeekdays(p.subject.Credits)
	result := &models.AssignmentResult{
		Created:   []models.Weekday{},
		Sessions:  []models.Session{},
		Requested: len(days),
	}

	for _, day := range days {
		session, err := s.place(ctx, p, day)
		if err != nil {
			appErr := appErrors.FromError(err)
			result.Errors++
			result.Failures = append(result.Failures, models.PlacementFailure{Weekday: day, Code: appErr.Code, Reason: appErr.Message})
			s.observer.ObservePlacementRejected(appErr.Code)
			s.logger.Warn("session placement skipped",
				zap.String("subject_id", p.subject.ID),
				zap.Int("semester", p.semester),
				zap.String("weekday", string(day)),
				zap.String("slot", p.slot),
				zap.String("code", appErr.Code),
				zap.Error(err),
			)
			continue
		}
		result.Created = append(result.Created, day)
		result.Sessions = append(result.Sessions, *session)
	}

	if n := len(result.Created); n > 0 {
		s.observer.ObserveSessionsCreated(n)
	}
	result.Success = result.Errors == 0
	result.Message = fmt.Sprintf("%d of %d days assigned", len(result.Created), result.Requested)
	return result, nil
}

// AssignDay places a single session. Conflicts and duplicates are returned as errors.
func (s *PlannerService) AssignDay(ctx context.Context, req models.AssignDayRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid session payload")
	}
	day, ok := models.ParseWeekday(req.Weekday)
	if !ok {
		return nil, validationError(nil, "weekday must be one of MON, TUE, WED, THU, FRI")
	}
	p, err := s.prepare(ctx, req.Semester, req.Slot, req.SubjectID, req.TeacherID, req.Room)
	if err != nil {
		return nil, err
	}

	session, err := s.place(ctx, p, day)
	if err != nil {
		s.observer.ObservePlacementRejected(appErrors.FromError(err).Code)
		return nil, err
	}
	s.observer.ObserveSessionsCreated(1)
	return session, nil
}

// UnassignSession deletes exactly one session.
func (s *PlannerService) UnassignSession(ctx context.Context, id string) error {
	if _, err := s.sessions.FindByID(ctx, id); err != nil {
		return lookupError(err, "session")
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Store(err, "failed to delete session")
	}
	return nil
}

// UnassignSubjectFromSlot deletes every session sharing (semester, slot, subject).
// Individual delete failures are counted, not fatal.
func (s *PlannerService) UnassignSubjectFromSlot(ctx context.Context, semester int, slot, subjectID string) (*models.UnassignResult, error) {
	if !models.ValidSemester(semester) {
		return nil, validationError(nil, "semester must be between 1 and 9")
	}
	if slot == "" || subjectID == "" {
		return nil, validationError(nil, "slot and subject are required")
	}

	group, err := s.sessions.Find(ctx, models.SessionFilter{Semester: &semester, Slot: slot, SubjectID: subjectID})
	if err != nil {
		return nil, appErrors.Store(err, "failed to load sessions")
	}

	result := &models.UnassignResult{}
	for _, session := range group {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			result.Errors++
			s.logger.Error("session delete failed", zap.String("session_id", session.ID), zap.Error(err))
			continue
		}
		result.Deleted++
	}
	result.Success = result.Errors == 0
	result.Message = fmt.Sprintf("%d of %d sessions removed", result.Deleted, len(group))
	return result, nil
}

// prepare runs the fatal checks: subject lookup, catalog membership, teacher qualification.
func (s *PlannerService) prepare(ctx context.Context, semester int, slot, subjectID string, teacherID, room *string) (*placement, error) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		return nil, lookupError(err, "subject")
	}
	if !models.ValidSemester(semester) {
		return nil, validationError(nil, "semester must be between 1 and 9")
	}
	if !models.IsValidSlot(slot) {
		return nil, validationError(nil, "slot is not in the catalog")
	}

	p := &placement{semester: semester, slot: slot, subject: subject}

	if raw := trimmed(room); raw != "" {
		label, ok := models.NormalizeRoom(raw)
		if !ok {
			return nil, validationError(nil, fmt.Sprintf("room %s is not in the catalog", label))
		}
		p.room = &label
	}

	if id := trimmed(teacherID); id != "" {
		teacher, err := s.teachers.FindByID(ctx, id)
		if err != nil {
			return nil, lookupError(err, "teacher")
		}
		if !teacher.Qualifies(subject.ID) {
			return nil, validationError(nil, fmt.Sprintf("teacher %s is not qualified for subject %s", teacher.Name, subject.Name))
		}
		p.teacherID = &id
	}

	return p, nil
}

// place holds the (weekday, slot) lock across availability, duplicate guard and create.
func (s *PlannerService) place(ctx context.Context, p *placement, day models.Weekday) (*models.Session, error) {
	release, err := s.locker.Acquire(ctx, lock.Key(s.lockPrefix, string(day), p.slot))
	if err != nil {
		return nil, appErrors.Store(err, "slot is busy, try again")
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error("slot lock release failed", zap.String("weekday", string(day)), zap.String("slot", p.slot), zap.Error(err))
		}
	}()

	if p.teacherID != nil || p.room != nil {
		availability, err := s.availability.CheckAvailability(ctx, p.semester, day, p.slot, p.teacherID, p.room)
		if err != nil {
			return nil, err
		}
		if !availability.Free {
			return nil, appErrors.Clone(appErrors.ErrConflict, availability.Reason)
		}
	}

	existing, err := s.sessions.Find(ctx, models.SessionFilter{
		Semester:  &p.semester,
		Weekday:   day,
		Slot:      p.slot,
		SubjectID: p.subject.ID,
	})
	if err != nil {
		return nil, appErrors.Store(err, "failed to check duplicate assignment")
	}
	if len(existing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrDuplicateAssignment, "subject already assigned in this slot")
	}

	session := &models.Session{
		Semester:  p.semester,
		Weekday:   day,
		Slot:      p.slot,
		SubjectID: p.subject.ID,
		TeacherID: p.teacherID,
		Room:      p.room,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Store(err, "failed to create session")
	}
	return session, nil
}
