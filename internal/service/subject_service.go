package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	DeleteCascade(ctx context.Context, id string) (models.SubjectDeletion, error)
}

type subjectTeacherLister interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error)
}

// SubjectService manages the subject catalog.
type SubjectService struct {
	repo      subjectRepository
	teachers  subjectTeacherLister
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(repo subjectRepository, teachers subjectTeacherLister, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, teachers: teachers, validator: validate, logger: logger}
}

// List returns subjects using the provided filters.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	if filter.Semester != nil && !models.ValidSemester(*filter.Semester) {
		return nil, validationError(nil, "semester must be between 1 and 9")
	}
	subjects, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list subjects")
	}
	return subjects, nil
}

// Get returns a subject by id.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "subject")
	}
	return subject, nil
}

// Create validates and persists a new subject.
func (s *SubjectService) Create(ctx context.Context, req models.SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	subject := &models.Subject{
		Name:     strings.TrimSpace(req.Name),
		Credits:  req.Credits,
		Semester: req.Semester,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Store(err, "failed to create subject")
	}
	return subject, nil
}

// Update edits a subject. Existing sessions are left as they are.
func (s *SubjectService) Update(ctx context.Context, id string, req models.SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "subject")
	}
	subject.Name = strings.TrimSpace(req.Name)
	subject.Credits = req.Credits
	subject.Semester = req.Semester
	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, appErrors.Store(err, "failed to update subject")
	}
	return subject, nil
}

// Delete removes a subject together with its sessions and allow-list entries.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, "subject")
	}

	result, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Store(err, "failed to delete subject")
	}

	s.logger.Info("subject deleted",
		zap.String("subject_id", id),
		zap.Int64("sessions_removed", result.SessionsRemoved),
		zap.Int64("teachers_updated", result.TeachersUpdated),
	)
	return nil
}

// QualifiedTeachers lists teachers whose allow-list contains the subject.
func (s *SubjectService) QualifiedTeachers(ctx context.Context, subjectID string) ([]models.Teacher, error) {
	if _, err := s.repo.FindByID(ctx, subjectID); err != nil {
		return nil, lookupError(err, "subject")
	}
	teachers, err := s.teachers.List(ctx, models.TeacherFilter{SubjectID: subjectID})
	if err != nil {
		return nil, appErrors.Store(err, "failed to list qualified teachers")
	}
	return teachers, nil
}
