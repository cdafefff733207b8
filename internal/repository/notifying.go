package repository

import (
	"context"

	"github.com/noah-isme/timetable-api/internal/models"
)

// ChangeHook runs after a successful write that can change a rendered timetable.
type ChangeHook func(ctx context.Context)

// Hooks fans one change out to several listeners.
func Hooks(hooks ...ChangeHook) ChangeHook {
	return func(ctx context.Context) {
		for _, h := range hooks {
			if h != nil {
				h(ctx)
			}
		}
	}
}

func (h ChangeHook) fire(ctx context.Context) {
	if h != nil {
		h(ctx)
	}
}

// NotifyingSessionRepository calls the hook after every session write.
type NotifyingSessionRepository struct {
	*SessionRepository
	onChange ChangeHook
}

// NewNotifyingSessionRepository wraps repo.
func NewNotifyingSessionRepository(repo *SessionRepository, onChange ChangeHook) *NotifyingSessionRepository {
	return &NotifyingSessionRepository{SessionRepository: repo, onChange: onChange}
}

// Create inserts the session and notifies on success.
func (r *NotifyingSessionRepository) Create(ctx context.Context, session *models.Session) error {
	if err := r.SessionRepository.Create(ctx, session); err != nil {
		return err
	}
	r.onChange.fire(ctx)
	return nil
}

// Update saves the session and notifies on success.
func (r *NotifyingSessionRepository) Update(ctx context.Context, session *models.Session) error {
	if err := r.SessionRepository.Update(ctx, session); err != nil {
		return err
	}
	r.onChange.fire(ctx)
	return nil
}

// Delete removes the session and notifies on success.
func (r *NotifyingSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.SessionRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.onChange.fire(ctx)
	return nil
}

// NotifyingSubjectRepository calls the hook after subject writes. Subject
// names appear in grids.
type NotifyingSubjectRepository struct {
	*SubjectRepository
	onChange ChangeHook
}

// NewNotifyingSubjectRepository wraps repo.
func NewNotifyingSubjectRepository(repo *SubjectRepository, onChange ChangeHook) *NotifyingSubjectRepository {
	return &NotifyingSubjectRepository{SubjectRepository: repo, onChange: onChange}
}

// Update saves the subject and notifies on success.
func (r *NotifyingSubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	if err := r.SubjectRepository.Update(ctx, subject); err != nil {
		return err
	}
	r.onChange.fire(ctx)
	return nil
}

// DeleteCascade deletes the subject and notifies once the transaction commits.
func (r *NotifyingSubjectRepository) DeleteCascade(ctx context.Context, id string) (models.SubjectDeletion, error) {
	result, err := r.SubjectRepository.DeleteCascade(ctx, id)
	if err != nil {
		return result, err
	}
	r.onChange.fire(ctx)
	return result, nil
}

// NotifyingTeacherRepository calls the hook after teacher writes that show in grids.
type NotifyingTeacherRepository struct {
	*TeacherRepository
	onChange ChangeHook
}

// NewNotifyingTeacherRepository wraps repo.
func NewNotifyingTeacherRepository(repo *TeacherRepository, onChange ChangeHook) *NotifyingTeacherRepository {
	return &NotifyingTeacherRepository{TeacherRepository: repo, onChange: onChange}
}

// Update saves the teacher and notifies on success.
func (r *NotifyingTeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	if err := r.TeacherRepository.Update(ctx, teacher); err != nil {
		return err
	}
	r.onChange.fire(ctx)
	return nil
}

// DeleteCascade deletes the teacher and notifies once the transaction commits.
func (r *NotifyingTeacherRepository) DeleteCascade(ctx context.Context, id string) (models.TeacherDeletion, error) {
	result, err := r.TeacherRepository.DeleteCascade(ctx, id)
	if err != nil {
		return result, err
	}
	r.onChange.fire(ctx)
	return result, nil
}
