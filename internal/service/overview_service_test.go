package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestOverview(t *testing.T) {
	subjects := newFakeSubjectRepo(
		models.Subject{ID: "a", Semester: 1},
		models.Subject{ID: "b", Semester: 1},
		models.Subject{ID: "c", Semester: 9},
	)
	teachers := newFakeTeacherRepo(
		models.Teacher{ID: "t1", WeeklyHours: 4},
		models.Teacher{ID: "t2", WeeklyHours: 2},
	)
	sessions := newFakeSessionRepo(
		seedSession("", 1, models.Monday, firstSlot, "a", "t1", ""),
		seedSession("", 1, models.Tuesday, firstSlot, "a", "t1", ""),
	)
	users := newFakeUserRepo(
		models.User{ID: "u1", Username: "boss", Role: models.RoleDirector},
		models.User{ID: "u2", Username: "ada", Role: models.RoleTeacher},
	)

	overview, err := NewOverviewService(subjects, teachers, sessions, users, nil).Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, overview.TotalSubjects)
	assert.Equal(t, 2, overview.TotalTeachers)
	assert.Equal(t, 2, overview.AssignedHours)
	assert.Equal(t, 6, overview.AvailableHours)
	assert.Equal(t, 4, overview.FreeHours)
	assert.Equal(t, 33.3, overview.OccupancyPercent)
	assert.Len(t, overview.SubjectsPerSemester, 9)
	assert.Equal(t, 2, overview.SubjectsPerSemester[1])
	assert.Equal(t, 0, overview.SubjectsPerSemester[5])
	assert.Equal(t, 2, overview.TotalUsers)
	assert.Equal(t, 0, overview.UsersPerRole[models.RoleDepartmentHead])
	assert.Equal(t, 1, overview.UsersPerRole[models.RoleTeacher])
}

func TestComputeOverviewEmpty(t *testing.T) {
	overview := ComputeOverview(nil, nil, nil, nil)
	assert.Zero(t, overview.OccupancyPercent)
	assert.Zero(t, overview.FreeHours)
}
