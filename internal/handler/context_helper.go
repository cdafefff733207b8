package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// bindJSON decodes the body or renders a validation error and reports false.
func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

// intParam parses a path parameter or renders a validation error and reports false.
func intParam(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, name+" must be an integer"))
		return 0, false
	}
	return value, true
}

// optionalIntQuery returns nil when the query parameter is absent.
func optionalIntQuery(c *gin.Context, name string) (*int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, name+" must be an integer"))
		return nil, false
	}
	return &value, true
}

// weekdaysQuery parses a comma separated weekday list.
func weekdaysQuery(c *gin.Context, name string) ([]models.Weekday, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	parts := strings.Split(raw, ",")
	days := make([]models.Weekday, 0, len(parts))
	for _, part := range parts {
		day, ok := models.ParseWeekday(part)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid weekday "+strings.TrimSpace(part)))
			return nil, false
		}
		days = append(days, day)
	}
	return days, true
}
