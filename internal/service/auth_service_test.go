package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	users := newFakeUserRepo(
		models.User{ID: "u1", Username: "ada", PasswordHash: string(hash), Role: models.RoleTeacher, TeacherID: models.StringPtr("t1"), Active: true},
		models.User{ID: "u2", Username: "old", PasswordHash: string(hash), Role: models.RoleDirector, Active: false},
	)
	svc := NewAuthService(users, nil, nil, AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "timetable-api"})
	return svc, users
}

func TestAuthServiceLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "ada", Password: "password123", Role: "docente"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "/teacher", resp.HomePath)
	assert.Equal(t, models.RoleTeacher, resp.User.Role)
	assert.Contains(t, resp.User.Capabilities, models.CapabilityEditAvailability)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "t1", claims.TeacherID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.Equal(t, "timetable-api", claims.Issuer)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	tests := []struct {
		name string
		req  models.LoginRequest
		code string
	}{
		{"unknown user", models.LoginRequest{Username: "nobody", Password: "password123", Role: "TEACHER"}, appErrors.ErrInvalidCredentials.Code},
		{"wrong password", models.LoginRequest{Username: "ada", Password: "nope", Role: "TEACHER"}, appErrors.ErrInvalidCredentials.Code},
		{"wrong role", models.LoginRequest{Username: "ada", Password: "password123", Role: "DIRECTOR"}, appErrors.ErrInvalidCredentials.Code},
		{"unknown role", models.LoginRequest{Username: "ada", Password: "password123", Role: "root"}, appErrors.ErrValidation.Code},
		{"inactive", models.LoginRequest{Username: "old", Password: "password123", Role: "DIRECTOR"}, appErrors.ErrInactiveAccount.Code},
		{"missing fields", models.LoginRequest{Username: "ada"}, appErrors.ErrValidation.Code},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newAuthFixture(t)
			_, err := svc.Login(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestAuthServiceLoginStoreError(t *testing.T) {
	svc, users := newAuthFixture(t)
	users.findErr = errStoreDown

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ada", Password: "password123", Role: "TEACHER"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStore.Code))
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, _ := newAuthFixture(t)
	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "ada", Password: "password123", Role: "TEACHER"})
	require.NoError(t, err)

	other := NewAuthService(nil, nil, nil, AuthConfig{AccessTokenSecret: "different", AccessTokenExpiry: time.Hour})
	_, err = other.ValidateToken(resp.AccessToken)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))

	_, err = svc.ValidateToken("not-a-token")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc, _ := newAuthFixture(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "ada", Password: "password123", Role: "TEACHER"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))
}
