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

func TestSubjectRepositoryListBySemester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "credits", "semester", "created_at", "updated_at"}).
		AddRow("m1", "Algebra", 3, 1, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, credits, semester, created_at, updated_at FROM subjects WHERE 1=1 AND semester = $1 ORDER BY semester ASC, name ASC, id ASC")).
		WithArgs(1).
		WillReturnRows(rows)

	subjects, err := repo.List(context.Background(), models.SubjectFilter{Semester: models.IntPtr(1)})
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, 3, subjects[0].Credits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE id = $1")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreateUpdateDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO subjects").
		WithArgs(sqlmock.AnyArg(), "Algebra", 3, 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	subject := &models.Subject{Name: "Algebra", Credits: 3, Semester: 1}
	require.NoError(t, repo.Create(ctx, subject))
	assert.NotEmpty(t, subject.ID)

	mock.ExpectExec("UPDATE subjects SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	subject.Credits = 4
	require.NoError(t, repo.Update(ctx, subject))
	assert.NoError(t, mock.ExpectationsWereMet())
}
