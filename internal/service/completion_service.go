package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type subjectQuery interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
}

// CompletionService derives subject and semester completion from the store on every call.
type CompletionService struct {
	subjects subjectQuery
	sessions sessionFinder
	logger   *zap.Logger
}

// NewCompletionService instantiates CompletionService.
func NewCompletionService(subjects subjectQuery, sessions sessionFinder, logger *zap.Logger) *CompletionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionService{subjects: subjects, sessions: sessions, logger: logger}
}

// SubjectStatus classifies one subject in one semester.
func (s *CompletionService) SubjectStatus(ctx context.Context, semester int, subjectID string) (*models.SubjectStatus, error) {
	if !models.ValidSemester(semester) {
		return nil, validationError(nil, "semester must be between 1 and 9")
	}
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		return nil, lookupError(err, "subject")
	}
	sessions, err := s.sessions.Find(ctx, models.SessionFilter{Semester: &semester, SubjectID: subjectID})
	if err != nil {
		return nil, appErrors.Store(err, "failed to load sessions")
	}
	status := subjectStatus(semester, *subject, len(sessions))
	return &status, nil
}

// SemesterStats aggregates completion over the subjects offered in a semester.
func (s *CompletionService) SemesterStats(ctx context.Context, semester int) (*models.SemesterStats, error) {
	progress, err := s.SemesterProgress(ctx, semester)
	if err != nil {
		return nil, err
	}
	return &progress.Stats, nil
}

// SemesterProgress lists per-subject completion with the aggregate.
func (s *CompletionService) SemesterProgress(ctx context.Context, semester int) (*models.SemesterProgress, error) {
	if !models.ValidSemester(semester) {
		return nil, validationError(nil, "semester must be between 1 and 9")
	}
	subjects, err := s.subjects.List(ctx, models.SubjectFilter{Semester: &semester})
	if err != nil {
		return nil, appErrors.Store(err, "failed to load subjects")
	}
	sessions, err := s.sessions.Find(ctx, models.SessionFilter{Semester: &semester})
	if err != nil {
		return nil, appErrors.Store(err, "failed to load sessions")
	}
	progress := ComputeSemesterProgress(semester, subjects, sessions)
	return &progress, nil
}

// ComputeSemesterProgress is the pure completion calculation over a snapshot.
// Subjects whose semester differs from the argument are ignored, as are
// sessions of other semesters.
func ComputeSemesterProgress(semester int, subjects []models.Subject, sessions []models.Session) models.SemesterProgress {
	counts := make(map[string]int)
	for _, session := range sessions {
		if session.Semester == semester {
			counts[session.SubjectID]++
		}
	}

	progress := models.SemesterProgress{
		Stats:    models.SemesterStats{Semester: semester},
		Subjects: []models.SubjectStatus{},
	}
	for _, subject := range subjects {
		if subject.Semester != semester {
			continue
		}
		status := subjectStatus(semester, subject, counts[subject.ID])
		progress.Subjects = append(progress.Subjects, status)
		progress.Stats.Total++
		switch status.State {
		case models.StateComplete:
			progress.Stats.Complete++
		case models.StatePartial:
			progress.Stats.Partial++
		default:
			progress.Stats.Unassigned++
		}
	}
	progress.Stats.PercentComplete = percent(progress.Stats.Complete, progress.Stats.Total)
	return progress
}

func subjectStatus(semester int, subject models.Subject, assigned int) models.SubjectStatus {
	return models.SubjectStatus{
		SubjectID:   subject.ID,
		SubjectName: subject.Name,
		Semester:    semester,
		Credits:     subject.Credits,
		Assigned:    assigned,
		State:       models.ClassifyCompletion(assigned, subject.Credits),
	}
}

// percent rounds half away from zero; 0 when total is 0.
func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// percentOneDecimal returns part/total*100 rounded to one decimal; 0 when total is 0.
func percentOneDecimal(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
