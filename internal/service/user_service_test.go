package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func newUserFixture() (*UserService, *fakeUserRepo) {
	users := newFakeUserRepo(models.User{ID: "u1", Username: "ada", Role: models.RoleTeacher, TeacherID: models.StringPtr("t1"), Active: true})
	teachers := newFakeTeacherRepo(
		models.Teacher{ID: "t1", Name: "Ada"},
		models.Teacher{ID: "t2", Name: "Grace"},
	)
	return NewUserService(users, teachers, nil, nil), users
}

func TestUserServiceCreate(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	user, err := svc.Create(ctx, models.CreateUserRequest{Username: "grace", Password: "secret1", Role: "docente", TeacherID: models.StringPtr("t2")})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, user.Role)
	assert.True(t, user.Active)
	require.NotNil(t, user.TeacherID)
	assert.Equal(t, "t2", *user.TeacherID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))

	director, err := svc.Create(ctx, models.CreateUserRequest{Username: "boss", Password: "secret1", Role: "subdirector", Active: new(bool)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleDirector, director.Role)
	assert.False(t, director.Active)
}

func TestUserServiceCreateRejections(t *testing.T) {
	tests := []struct {
		name string
		req  models.CreateUserRequest
		code string
	}{
		{"unknown role", models.CreateUserRequest{Username: "neo", Password: "secret1", Role: "ADMIN"}, appErrors.ErrValidation.Code},
		{"username taken", models.CreateUserRequest{Username: "ada", Password: "secret1", Role: "DIRECTOR"}, appErrors.ErrConflict.Code},
		{"link on non-teacher", models.CreateUserRequest{Username: "neo", Password: "secret1", Role: "DEPARTMENT_HEAD", TeacherID: models.StringPtr("t2")}, appErrors.ErrValidation.Code},
		{"teacher already linked", models.CreateUserRequest{Username: "neo", Password: "secret1", Role: "TEACHER", TeacherID: models.StringPtr("t1")}, appErrors.ErrConflict.Code},
		{"unknown teacher", models.CreateUserRequest{Username: "neo", Password: "secret1", Role: "TEACHER", TeacherID: models.StringPtr("t9")}, appErrors.ErrValidation.Code},
		{"short password", models.CreateUserRequest{Username: "neo", Password: "123", Role: "TEACHER"}, appErrors.ErrValidation.Code},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newUserFixture()
			_, err := svc.Create(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestUserServiceUpdate(t *testing.T) {
	svc, users := newUserFixture()
	ctx := context.Background()

	same, err := svc.Update(ctx, "u1", models.UpdateUserRequest{TeacherID: models.StringPtr("t1"), Username: models.StringPtr("ada")})
	require.NoError(t, err)
	assert.Equal(t, "t1", *same.TeacherID)

	head := "DEPARTMENT_HEAD"
	promoted, err := svc.Update(ctx, "u1", models.UpdateUserRequest{Role: &head})
	require.NoError(t, err)
	assert.Equal(t, models.RoleDepartmentHead, promoted.Role)
	assert.Nil(t, promoted.TeacherID)

	inactive := false
	stored, err := svc.Update(ctx, "u1", models.UpdateUserRequest{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, stored.Active)

	persisted, err := users.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, persisted.Active)

	_, err = svc.Update(ctx, "missing", models.UpdateUserRequest{})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestUserServiceDelete(t *testing.T) {
	svc, _ := newUserFixture()
	require.NoError(t, svc.Delete(context.Background(), "u1"))
	err := svc.Delete(context.Background(), "u1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestUserServiceDuplicateWriteIsConflict(t *testing.T) {
	svc, users := newUserFixture()
	ctx := context.Background()
	users.writeErr = fmt.Errorf("create user: %w", models.ErrDuplicate)

	_, err := svc.Create(ctx, models.CreateUserRequest{Username: "grace", Password: "secret1", Role: "TEACHER", TeacherID: models.StringPtr("t2")})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))

	_, err = svc.Update(ctx, "u1", models.UpdateUserRequest{TeacherID: models.StringPtr("t2")})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))

	users.writeErr = errStoreDown
	_, err = svc.Update(ctx, "u1", models.UpdateUserRequest{TeacherID: models.StringPtr("t2")})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStore.Code))
}
