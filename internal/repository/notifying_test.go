package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyingSessionRepositoryFiresOnWrite(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	fired := 0
	repo := NewNotifyingSessionRepository(NewSessionRepository(db), func(context.Context) { fired++ })

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "s1"))
	assert.Equal(t, 1, fired)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE id = $1")).
		WithArgs("s2").
		WillReturnError(errors.New("db down"))
	require.Error(t, repo.Delete(context.Background(), "s2"))
	assert.Equal(t, 1, fired)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyingTeacherRepositoryFiresOnCommittedDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	fired := 0
	repo := NewNotifyingTeacherRepository(NewTeacherRepository(db), func(context.Context) { fired++ })

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET docente_id = NULL WHERE docente_id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET docente_id = NULL")).
		WithArgs("t1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teachers WHERE id = $1")).
		WithArgs("t1").
		WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	_, err := repo.DeleteCascade(context.Background(), "t1")
	require.Error(t, err)
	assert.Zero(t, fired, "rolled back delete must not notify")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET docente_id = NULL WHERE docente_id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET docente_id = NULL")).
		WithArgs("t1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teachers WHERE id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.DeleteCascade(context.Background(), "t1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.SessionsCleared)
	assert.Equal(t, 1, fired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHooksFanOut(t *testing.T) {
	var calls []string
	hook := Hooks(
		func(context.Context) { calls = append(calls, "cache") },
		nil,
		func(context.Context) { calls = append(calls, "monitor") },
	)

	hook(context.Background())

	assert.Equal(t, []string{"cache", "monitor"}, calls)
}
