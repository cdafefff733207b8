package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type userLister interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
}

// OverviewService aggregates department-wide statistics for directors.
type OverviewService struct {
	subjects subjectCatalogReader
	teachers teacherLister
	sessions sessionLister
	users    userLister
	logger   *zap.Logger
}

// NewOverviewService constructs an OverviewService.
func NewOverviewService(subjects subjectCatalogReader, teachers teacherLister, sessions sessionLister, users userLister, logger *zap.Logger) *OverviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverviewService{subjects: subjects, teachers: teachers, sessions: sessions, users: users, logger: logger}
}

// Overview reads the whole store and summarises it.
func (s *OverviewService) Overview(ctx context.Context) (*models.Overview, error) {
	subjects, err := s.subjects.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load subjects")
	}
	teachers, err := s.teachers.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load teachers")
	}
	sessions, err := s.sessions.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load sessions")
	}
	users, err := s.users.List(ctx, models.UserFilter{})
	if err != nil {
		return nil, appErrors.Store(err, "failed to load users")
	}
	overview := ComputeOverview(subjects, teachers, sessions, users)
	return &overview, nil
}

// ComputeOverview summarises a snapshot. Assigned hours count every session.
func ComputeOverview(subjects []models.Subject, teachers []models.Teacher, sessions []models.Session, users []models.User) models.Overview {
	perSemester := make(map[int]int, models.MaxSemester)
	for sem := models.MinSemester; sem <= models.MaxSemester; sem++ {
		perSemester[sem] = 0
	}
	for _, subject := range subjects {
		perSemester[subject.Semester]++
	}

	available := 0
	for _, t := range teachers {
		available += t.WeeklyHours
	}
	assigned := len(sessions)
	free := available - assigned
	if free < 0 {
		free = 0
	}

	perRole := make(map[models.UserRole]int, len(models.Roles))
	for _, role := range models.Roles {
		perRole[role] = 0
	}
	for _, u := range users {
		perRole[u.Role]++
	}

	return models.Overview{
		TotalSubjects:       len(subjects),
		TotalTeachers:       len(teachers),
		AssignedHours:       assigned,
		AvailableHours:      available,
		FreeHours:           free,
		OccupancyPercent:    percentOneDecimal(assigned, available),
		SubjectsPerSemester: perSemester,
		TotalUsers:          len(users),
		UsersPerRole:        perRole,
	}
}
