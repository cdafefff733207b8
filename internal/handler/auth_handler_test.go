package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type authServiceMock struct {
	req  models.LoginRequest
	resp *models.LoginResponse
	err  error
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.req = req
	return m.resp, m.err
}

func TestAuthHandlerLogin(t *testing.T) {
	svc := &authServiceMock{resp: &models.LoginResponse{AccessToken: "tok", HomePath: "/planner"}}
	h := NewAuthHandler(svc)
	c, w := newTestContext(http.MethodPost, "/auth/login", `{"username":"ada","password":"pw","role":"JEFE"}`)

	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "JEFE", svc.req.Role)
	var res models.LoginResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &res))
	assert.Equal(t, "tok", res.AccessToken)
}

func TestAuthHandlerLoginErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"bad credentials", appErrors.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"inactive", appErrors.ErrInactiveAccount, http.StatusForbidden, "ACCOUNT_INACTIVE"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(&authServiceMock{err: tc.err})
			c, w := newTestContext(http.MethodPost, "/auth/login", `{"username":"ada","password":"pw","role":"DIRECTOR"}`)

			h.Login(c)

			require.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decode(t, w).Error.Code)
		})
	}
}

func TestAuthHandlerMe(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{})
	c, w := newTestContext(http.MethodGet, "/auth/me", "")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u3", Username: "grace", Role: models.RoleTeacher, TeacherID: "t7"})

	h.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"teacher_id":"t7"`)
	assert.Contains(t, w.Body.String(), `"home_path":"`+models.RoleTeacher.HomePath()+`"`)
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	NewAuthHandler(&authServiceMock{}).Me(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type overviewMock struct {
	overview *models.Overview
	err      error
}

func (m *overviewMock) Overview(ctx context.Context) (*models.Overview, error) {
	return m.overview, m.err
}

func TestOverviewHandler(t *testing.T) {
	h := NewOverviewHandler(&overviewMock{overview: &models.Overview{TotalSubjects: 12, TotalTeachers: 4}})
	c, w := newTestContext(http.MethodGet, "/overview", "")

	h.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_subjects":12`)
}

func TestOverviewHandlerStoreFailure(t *testing.T) {
	h := NewOverviewHandler(&overviewMock{err: appErrors.Store(errors.New("db down"), "failed to load subjects")})
	c, w := newTestContext(http.MethodGet, "/overview", "")

	h.Get(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "STORE_ERROR", decode(t, w).Error.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}
