package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

const sessionColumns = "id, semestre, dia, hora, materia_id, docente_id, aula, created_at"

// SessionRepository provides persistence for weekly class sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Find returns sessions matching every set field of the filter.
func (r *SessionRepository) Find(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	base := "FROM sessions WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Semester != nil {
		conditions = append(conditions, fmt.Sprintf("semestre = $%d", len(args)+1))
		args = append(args, *filter.Semester)
	}
	if filter.Weekday != "" {
		conditions = append(conditions, fmt.Sprintf("dia = $%d", len(args)+1))
		args = append(args, string(filter.Weekday))
	}
	if filter.Slot != "" {
		conditions = append(conditions, fmt.Sprintf("hora = $%d", len(args)+1))
		args = append(args, filter.Slot)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("materia_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("docente_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Room != "" {
		conditions = append(conditions, fmt.Sprintf("aula = $%d", len(args)+1))
		args = append(args, filter.Room)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY semestre ASC, created_at ASC, id ASC", sessionColumns, base)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("find sessions: %w", err)
	}
	return sessions, nil
}

// ListAll returns every stored session.
func (r *SessionRepository) ListAll(ctx context.Context) ([]models.Session, error) {
	return r.Find(ctx, models.SessionFilter{})
}

// FindByID loads a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE id = $1", sessionColumns)
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// Create stores a new session record.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO sessions (id, semestre, dia, hora, materia_id, docente_id, aula, created_at) VALUES (:id, :semestre, :dia, :hora, :materia_id, :docente_id, :aula, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Update modifies a session record.
func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	const query = `UPDATE sessions SET semestre = :semestre, dia = :dia, hora = :hora, materia_id = :materia_id, docente_id = :docente_id, aula = :aula WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return expectAffected(res, "update session")
}

// Delete removes a session by id.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return expectAffected(res, "delete session")
}
