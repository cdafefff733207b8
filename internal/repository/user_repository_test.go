package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestUserRepositoryFindByUsername(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "usuario", "password_hash", "rol", "docente_id", "activo", "created_at", "updated_at"}).
		AddRow("u1", "ana", "hash", "TEACHER", "d1", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE usuario = $1")).
		WithArgs("ana").
		WillReturnRows(rows)

	user, err := repo.FindByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, user.Role)
	require.NotNil(t, user.TeacherID)
	assert.Equal(t, "d1", *user.TeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListByRole(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	role := models.RoleDirector
	active := true
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE 1=1 AND rol = $1 AND activo = $2 ORDER BY usuario ASC")).
		WithArgs("DIRECTOR", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "usuario", "password_hash", "rol", "docente_id", "activo", "created_at", "updated_at"}))

	users, err := repo.List(context.Background(), models.UserFilter{Role: &role, Active: &active})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryWriteMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_users_docente_id_unique"})
	err := repo.Create(ctx, &models.User{Username: "grace", Role: models.RoleTeacher, TeacherID: models.StringPtr("d1")})
	assert.ErrorIs(t, err, models.ErrDuplicate)

	mock.ExpectExec("UPDATE users SET").
		WillReturnError(&pq.Error{Code: "23503"})
	err = repo.Update(ctx, &models.User{ID: "u1", Username: "grace", Role: models.RoleTeacher})
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
