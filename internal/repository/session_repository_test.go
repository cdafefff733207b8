package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

var sessionRowColumns = []string{"id", "semestre", "dia", "hora", "materia_id", "docente_id", "aula", "created_at"}

func TestSessionRepositoryFindBuildsEqualityFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	rows := sqlmock.NewRows(sessionRowColumns).
		AddRow("s1", 3, "MON", "7:00-8:00", "m1", "d1", "A-101", time.Now()).
		AddRow("s2", 3, "MON", "7:00-8:00", "m2", nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, semestre, dia, hora, materia_id, docente_id, aula, created_at FROM sessions WHERE 1=1 AND semestre = $1 AND dia = $2 AND hora = $3 ORDER BY semestre ASC, created_at ASC, id ASC")).
		WithArgs(3, "MON", "7:00-8:00").
		WillReturnRows(rows)

	sessions, err := repo.Find(context.Background(), models.SessionFilter{Semester: models.IntPtr(3), Weekday: models.Monday, Slot: "7:00-8:00"})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, models.Monday, sessions[0].Weekday)
	assert.Equal(t, "d1", sessions[0].TeacherValue())
	assert.Equal(t, "A-101", sessions[0].RoomValue())
	assert.Nil(t, sessions[1].TeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryFindByTeacherAndRoom(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE 1=1 AND materia_id = $1 AND docente_id = $2 AND aula = $3")).
		WithArgs("m1", "d1", "A-101").
		WillReturnRows(sqlmock.NewRows(sessionRowColumns))

	sessions, err := repo.Find(context.Background(), models.SessionFilter{SubjectID: "m1", TeacherID: "d1", Room: "A-101"})
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(sqlmock.AnyArg(), 2, "TUE", "9:00-10:00", "m1", "d1", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.Session{Semester: 2, Weekday: models.Tuesday, Slot: "9:00-10:00", SubjectID: "m1", TeacherID: models.StringPtr("d1")}
	require.NoError(t, repo.Create(context.Background(), session))
	assert.NotEmpty(t, session.ID)
	assert.False(t, session.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
