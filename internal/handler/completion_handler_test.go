package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type completionMock struct {
	semester  int
	subjectID string
	statusErr error
}

func (m *completionMock) SubjectStatus(ctx context.Context, semester int, subjectID string) (*models.SubjectStatus, error) {
	m.semester, m.subjectID = semester, subjectID
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return &models.SubjectStatus{}, nil
}

func (m *completionMock) SemesterStats(ctx context.Context, semester int) (*models.SemesterStats, error) {
	m.semester = semester
	return &models.SemesterStats{Semester: semester, Total: 4, Complete: 1, Partial: 1, Unassigned: 2, PercentComplete: 25}, nil
}

func (m *completionMock) SemesterProgress(ctx context.Context, semester int) (*models.SemesterProgress, error) {
	m.semester = semester
	return &models.SemesterProgress{}, nil
}

func TestCompletionHandlerStats(t *testing.T) {
	svc := &completionMock{}
	h := NewCompletionHandler(svc)
	c, w := newTestContext(http.MethodGet, "/semesters/4/stats", "", gin.Param{Key: "semester", Value: "4"})

	h.Stats(c)

	require.Equal(t, http.StatusOK, w.Code)
	var stats models.SemesterStats
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &stats))
	assert.Equal(t, 4, svc.semester)
	assert.Equal(t, 25, stats.PercentComplete)
}

func TestCompletionHandlerProgressBadSemester(t *testing.T) {
	svc := &completionMock{}
	h := NewCompletionHandler(svc)
	c, w := newTestContext(http.MethodGet, "/semesters/abc/progress", "", gin.Param{Key: "semester", Value: "abc"})

	h.Progress(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.semester)
}

func TestCompletionHandlerSubjectStatusNotFound(t *testing.T) {
	svc := &completionMock{statusErr: appErrors.Clone(appErrors.ErrNotFound, "subject not found")}
	h := NewCompletionHandler(svc)
	c, w := newTestContext(http.MethodGet, "/semesters/4/subjects/nope/status", "",
		gin.Param{Key: "semester", Value: "4"}, gin.Param{Key: "subjectId", Value: "nope"})

	h.SubjectStatus(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "nope", svc.subjectID)
}
