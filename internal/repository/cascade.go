package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// DeleteCascade removes a subject, its sessions and its allow-list entries in
// one transaction. A missing subject rolls everything back with sql.ErrNoRows.
func (r *SubjectRepository) DeleteCascade(ctx context.Context, id string) (result models.SubjectDeletion, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin delete subject: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if result.SessionsRemoved, err = deleteSessionsBySubject(ctx, tx, id); err != nil {
		return result, err
	}
	if result.TeachersUpdated, err = removeSubjectFromTeachers(ctx, tx, id); err != nil {
		return result, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return result, fmt.Errorf("delete subject: %w", err)
	}
	if err = expectAffected(res, "delete subject"); err != nil {
		return result, err
	}
	if err = tx.Commit(); err != nil {
		return result, fmt.Errorf("commit delete subject: %w", err)
	}
	return result, nil
}

// DeleteCascade removes a teacher after unbinding its sessions and user
// accounts, all in one transaction.
func (r *TeacherRepository) DeleteCascade(ctx context.Context, id string) (result models.TeacherDeletion, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin delete teacher: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if result.SessionsCleared, err = clearSessionTeacher(ctx, tx, id); err != nil {
		return result, err
	}
	if result.UsersUnlinked, err = unlinkTeacherUsers(ctx, tx, id); err != nil {
		return result, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return result, fmt.Errorf("delete teacher: %w", err)
	}
	if err = expectAffected(res, "delete teacher"); err != nil {
		return result, err
	}
	if err = tx.Commit(); err != nil {
		return result, fmt.Errorf("commit delete teacher: %w", err)
	}
	return result, nil
}

func deleteSessionsBySubject(ctx context.Context, exec sqlx.ExecerContext, subjectID string) (int64, error) {
	return execCount(ctx, exec, "delete sessions by subject", `DELETE FROM sessions WHERE materia_id = $1`, subjectID)
}

func removeSubjectFromTeachers(ctx context.Context, exec sqlx.ExecerContext, subjectID string) (int64, error) {
	const query = `UPDATE teachers SET materias = array_remove(materias, $1), updated_at = $2 WHERE $1 = ANY(materias)`
	return execCount(ctx, exec, "remove subject from teachers", query, subjectID, time.Now().UTC())
}

func clearSessionTeacher(ctx context.Context, exec sqlx.ExecerContext, teacherID string) (int64, error) {
	return execCount(ctx, exec, "clear session teacher", `UPDATE sessions SET docente_id = NULL WHERE docente_id = $1`, teacherID)
}

func unlinkTeacherUsers(ctx context.Context, exec sqlx.ExecerContext, teacherID string) (int64, error) {
	const query = `UPDATE users SET docente_id = NULL, updated_at = $2 WHERE docente_id = $1`
	return execCount(ctx, exec, "unlink teacher from users", query, teacherID, time.Now().UTC())
}

// execCount runs a statement and returns the rows it touched.
func execCount(ctx context.Context, exec sqlx.ExecerContext, op, query string, args ...interface{}) (int64, error) {
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return n, nil
}
