package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	UpdateSubjects(ctx context.Context, id string, subjectIDs []string) error
	UpdateAvailability(ctx context.Context, id string, mask types.JSONText) error
	DeleteCascade(ctx context.Context, id string) (models.TeacherDeletion, error)
}

type teacherSessionFinder interface {
	Find(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
}

// TeacherService contains business logic for teacher management.
type TeacherService struct {
	repo      teacherRepository
	subjects  subjectReader
	sessions  teacherSessionFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, subjects subjectReader, sessions teacherSessionFinder, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, subjects: subjects, sessions: sessions, validator: validate, logger: logger}
}

// List returns teachers matching filters.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	teachers, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list teachers")
	}
	return teachers, nil
}

// Get fetches teacher by ID.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher")
	}
	return teacher, nil
}

// Create validates and persists a new teacher.
func (s *TeacherService) Create(ctx context.Context, req models.TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	subjectIDs, err := s.checkSubjects(ctx, req.QualifiedSubjectIDs)
	if err != nil {
		return nil, err
	}
	teacher := &models.Teacher{
		Name:                strings.TrimSpace(req.Name),
		WeeklyHours:         req.WeeklyHours,
		QualifiedSubjectIDs: subjectIDs,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Store(err, "failed to create teacher")
	}
	return teacher, nil
}

// Update modifies teacher data and replaces the allow-list.
func (s *TeacherService) Update(ctx context.Context, id string, req models.TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher")
	}
	subjectIDs, err := s.checkSubjects(ctx, req.QualifiedSubjectIDs)
	if err != nil {
		return nil, err
	}
	teacher.Name = strings.TrimSpace(req.Name)
	teacher.WeeklyHours = req.WeeklyHours
	teacher.QualifiedSubjectIDs = subjectIDs
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Store(err, "failed to update teacher")
	}
	return teacher, nil
}

// Delete removes a teacher and unbinds it from sessions and user accounts.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "teacher")
	}
	result, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Store(err, "failed to delete teacher")
	}
	s.logger.Info("teacher deleted",
		zap.String("teacher_id", id),
		zap.Int64("sessions_cleared", result.SessionsCleared),
		zap.Int64("users_unlinked", result.UsersUnlinked),
	)
	return nil
}

// AddSubject appends a subject to the allow-list.
func (s *TeacherService) AddSubject(ctx context.Context, id string, req models.TeacherSubjectRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject assignment")
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		return nil, lookupError(err, "subject")
	}
	if teacher.Qualifies(req.SubjectID) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject is already assigned to this teacher")
	}
	ids := append(append([]string{}, teacher.QualifiedSubjectIDs...), req.SubjectID)
	return s.saveSubjects(ctx, teacher, ids)
}

// RemoveSubject drops a subject from the allow-list.
func (s *TeacherService) RemoveSubject(ctx context.Context, id, subjectID string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher")
	}
	if !teacher.Qualifies(subjectID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject is not assigned to this teacher")
	}
	ids := make([]string, 0, len(teacher.QualifiedSubjectIDs))
	for _, existing := range teacher.QualifiedSubjectIDs {
		if existing != subjectID {
			ids = append(ids, existing)
		}
	}
	return s.saveSubjects(ctx, teacher, ids)
}

// ReplaceSubjects overwrites the allow-list.
func (s *TeacherService) ReplaceSubjects(ctx context.Context, id string, req models.TeacherSubjectsRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject list")
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher")
	}
	ids, err := s.checkSubjects(ctx, req.SubjectIDs)
	if err != nil {
		return nil, err
	}
	return s.saveSubjects(ctx, teacher, ids)
}

// UpdateAvailability replaces the advisory availability mask. Keys are
// WEEKDAY_slot over the eight teaching slots.
func (s *TeacherService) UpdateAvailability(ctx context.Context, id string, req models.AvailabilityRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid availability payload")
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher")
	}

	mask := make(map[string]bool, len(req.Mask))
	for key, open := range req.Mask {
		day, slot, ok := parseAvailabilityKey(key)
		if !ok {
			return nil, validationError(nil, fmt.Sprintf("invalid availability key %q", key))
		}
		mask[models.AvailabilityKey(day, slot)] = open
	}
	encoded, err := json.Marshal(mask)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode availability")
	}
	if err := s.repo.UpdateAvailability(ctx, id, types.JSONText(encoded)); err != nil {
		return nil, appErrors.Store(err, "failed to update availability")
	}
	teacher.Availability = types.JSONText(encoded)
	return teacher, nil
}

// Workload compares sessions taught, across semesters, with contracted weekly hours.
func (s *TeacherService) Workload(ctx context.Context, id string) (*models.TeacherWorkload, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher")
	}
	sessions, err := s.sessions.Find(ctx, models.SessionFilter{TeacherID: id})
	if err != nil {
		return nil, appErrors.Store(err, "failed to load teacher sessions")
	}
	return computeWorkload(*teacher, len(sessions)), nil
}

func computeWorkload(teacher models.Teacher, occupied int) *models.TeacherWorkload {
	free := teacher.WeeklyHours - occupied
	if free < 0 {
		free = 0
	}
	return &models.TeacherWorkload{
		TeacherID:     teacher.ID,
		TeacherName:   teacher.Name,
		WeeklyHours:   teacher.WeeklyHours,
		OccupiedHours: occupied,
		FreeHours:     free,
		Occupancy:     percentOneDecimal(occupied, teacher.WeeklyHours),
	}
}

func (s *TeacherService) saveSubjects(ctx context.Context, teacher *models.Teacher, ids []string) (*models.Teacher, error) {
	if err := s.repo.UpdateSubjects(ctx, teacher.ID, ids); err != nil {
		return nil, appErrors.Store(err, "failed to update teacher subjects")
	}
	teacher.QualifiedSubjectIDs = ids
	return teacher, nil
}

// checkSubjects de-duplicates ids and verifies that each subject exists.
func (s *TeacherService) checkSubjects(ctx context.Context, ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		if _, err := s.subjects.FindByID(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, validationError(nil, fmt.Sprintf("subject %s does not exist", id))
			}
			return nil, appErrors.Store(err, "failed to load subject")
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func parseAvailabilityKey(key string) (models.Weekday, string, bool) {
	raw, slot, found := strings.Cut(key, "_")
	if !found {
		return "", "", false
	}
	day, ok := models.ParseWeekday(raw)
	if !ok || !models.IsTeachingSlot(slot) {
		return "", "", false
	}
	return day, slot, true
}
