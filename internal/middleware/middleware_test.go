package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return s.claims, nil
}

func newRouter(claims *models.JWTClaims, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(stubValidator{claims: claims})}, guards...)
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.PUT("/teachers/:id/availability", handlers...)
	return r
}

func do(r http.Handler, auth string) int {
	req := httptest.NewRequest(http.MethodPut, "/teachers/t1/availability", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestJWT(t *testing.T) {
	r := newRouter(&models.JWTClaims{UserID: "u1", Role: models.RoleDirector})

	assert.Equal(t, http.StatusUnauthorized, do(r, ""))
	assert.Equal(t, http.StatusUnauthorized, do(r, "Token good"))
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer bad"))
	assert.Equal(t, http.StatusOK, do(r, "Bearer good"))
}

func TestRBACRolesAndSelf(t *testing.T) {
	guard := RequireRolesOrSelf(models.RoleDepartmentHead)

	tests := []struct {
		name   string
		claims *models.JWTClaims
		want   int
	}{
		{"department head", &models.JWTClaims{Role: models.RoleDepartmentHead}, http.StatusOK},
		{"own teacher record", &models.JWTClaims{Role: models.RoleTeacher, TeacherID: "t1"}, http.StatusOK},
		{"other teacher record", &models.JWTClaims{Role: models.RoleTeacher, TeacherID: "t2"}, http.StatusForbidden},
		{"unlinked teacher", &models.JWTClaims{Role: models.RoleTeacher}, http.StatusForbidden},
		{"director", &models.JWTClaims{Role: models.RoleDirector}, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, do(newRouter(tc.claims, guard), "Bearer good"))
		})
	}
}

type recordedRequest struct {
	method, path string
	status       int
}

type requestRecorder struct {
	mu   sync.Mutex
	seen []recordedRequest
}

func (r *requestRecorder) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, recordedRequest{method, path, status})
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := &requestRecorder{}
	r := gin.New()
	r.Use(Metrics(rec))
	r.GET("/rooms/:room/timetable", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/rooms/A-101/timetable", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, []recordedRequest{
		{http.MethodGet, "/rooms/:room/timetable", http.StatusTeapot},
		{http.MethodGet, "unmatched", http.StatusNotFound},
	}, rec.seen)
}
