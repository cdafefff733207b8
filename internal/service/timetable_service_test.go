package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func newTimetableFixture() *TimetableService {
	sessions := newFakeSessionRepo(
		seedSession("s1", 2, models.Monday, firstSlot, "algebra", "t1", "A-101"),
		seedSession("s2", 2, models.Tuesday, firstSlot, "algebra", "t1", "A-101"),
		seedSession("s3", 5, models.Monday, "8:00-9:00", "physics", "t1", "A-101"),
		seedSession("s4", 5, models.Friday, "16:00-17:00", "physics", "", "A-101"),
		seedSession("s5", 2, models.Monday, firstSlot, "ethics", "", "B-201"),
	)
	subjects := newFakeSubjectRepo(
		models.Subject{ID: "algebra", Name: "Algebra", Credits: 3, Semester: 2},
		models.Subject{ID: "physics", Name: "Physics", Credits: 2, Semester: 5},
		models.Subject{ID: "ethics", Name: "Ethics", Credits: 1, Semester: 2},
	)
	teachers := newFakeTeacherRepo(models.Teacher{ID: "t1", Name: "Ada"})
	return NewTimetableService(sessions, subjects, teachers, nil)
}

func TestSemesterTimetable(t *testing.T) {
	svc := newTimetableFixture()

	grid, err := svc.SemesterTimetable(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.TimetableSemester, grid.Kind)
	require.Len(t, grid.Rows, len(models.TeachingSlots))

	monday := grid.Rows[0].Days[models.Monday]
	require.Len(t, monday, 2)
	assert.Equal(t, "Algebra", monday[0].SubjectName)
	assert.Equal(t, "Ada", monday[0].TeacherName)
	assert.Equal(t, "Ethics", monday[1].SubjectName)
	assert.Empty(t, grid.Rows[1].Days[models.Monday])

	_, err = svc.SemesterTimetable(context.Background(), 0)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestTeacherTimetableSpansSemesters(t *testing.T) {
	svc := newTimetableFixture()

	grid, err := svc.TeacherTimetable(context.Background(), models.Teacher{ID: "t1", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", grid.Title)
	assert.Len(t, grid.Rows[0].Days[models.Monday], 1)
	assert.Len(t, grid.Rows[1].Days[models.Monday], 1)
	assert.Equal(t, 5, grid.Rows[1].Days[models.Monday][0].Semester)
}

func TestRoomTimetableUsesExtendedSlots(t *testing.T) {
	svc := newTimetableFixture()

	grid, err := svc.RoomTimetable(context.Background(), "a-101")
	require.NoError(t, err)
	assert.Equal(t, "A-101", grid.Key)
	require.Len(t, grid.Rows, len(models.ExtendedSlots))
	assert.Len(t, grid.Rows[9].Days[models.Friday], 1)

	_, err = svc.RoomTimetable(context.Background(), "Z-1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestFreeRooms(t *testing.T) {
	svc := newTimetableFixture()

	free, err := svc.FreeRooms(context.Background(), 2, firstSlot, nil)
	require.NoError(t, err)
	assert.Len(t, free.Weekdays, 5)
	assert.Len(t, free.Rooms, len(models.Rooms)-2)
	assert.NotContains(t, free.Rooms, "A-101")
	assert.NotContains(t, free.Rooms, "B-201")

	free, err = svc.FreeRooms(context.Background(), 2, firstSlot, []models.Weekday{models.Wednesday})
	require.NoError(t, err)
	assert.Len(t, free.Rooms, len(models.Rooms))

	_, err = svc.FreeRooms(context.Background(), 2, "1:00-2:00", nil)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestSessionsNormalisesFilter(t *testing.T) {
	svc := newTimetableFixture()

	found, err := svc.Sessions(context.Background(), models.SessionFilter{Weekday: "lunes", Room: "b-201"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "s5", found[0].ID)

	_, err = svc.Sessions(context.Background(), models.SessionFilter{Weekday: "SUNDAY"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}
