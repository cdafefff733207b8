package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-api/internal/models"
)

const teacherColumns = "id, nombre, horas_semanales, materias, horario_disponible, created_at, updated_at"

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers matching filters ordered by name.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	base := "FROM teachers WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(nombre) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(materias)", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY nombre ASC, id ASC", teacherColumns, base)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// ListAll returns every teacher.
func (r *TeacherRepository) ListAll(ctx context.Context) ([]models.Teacher, error) {
	return r.List(ctx, models.TeacherFilter{})
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Create inserts a new teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now
	if teacher.QualifiedSubjectIDs == nil {
		teacher.QualifiedSubjectIDs = pq.StringArray{}
	}
	if len(teacher.Availability) == 0 {
		teacher.Availability = types.JSONText(`{}`)
	}

	const query = `INSERT INTO teachers (id, nombre, horas_semanales, materias, horario_disponible, created_at, updated_at)
		VALUES (:id, :nombre, :horas_semanales, :materias, :horario_disponible, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update modifies name, weekly hours and allow-list.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	if teacher.QualifiedSubjectIDs == nil {
		teacher.QualifiedSubjectIDs = pq.StringArray{}
	}
	const query = `UPDATE teachers SET nombre = :nombre, horas_semanales = :horas_semanales, materias = :materias, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, teacher)
	if err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return expectAffected(res, "update teacher")
}

// UpdateSubjects replaces the allow-list.
func (r *TeacherRepository) UpdateSubjects(ctx context.Context, id string, subjectIDs []string) error {
	if subjectIDs == nil {
		subjectIDs = []string{}
	}
	const query = `UPDATE teachers SET materias = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, pq.StringArray(subjectIDs), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update teacher subjects: %w", err)
	}
	return expectAffected(res, "update teacher subjects")
}

// UpdateAvailability replaces the availability mask.
func (r *TeacherRepository) UpdateAvailability(ctx context.Context, id string, mask types.JSONText) error {
	const query = `UPDATE teachers SET horario_disponible = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, mask, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update teacher availability: %w", err)
	}
	return expectAffected(res, "update teacher availability")
}
