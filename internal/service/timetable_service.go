package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type subjectCatalogReader interface {
	ListAll(ctx context.Context) ([]models.Subject, error)
}

// TimetableService renders weekday by slot grids from stored sessions.
type TimetableService struct {
	sessions sessionFinder
	subjects subjectCatalogReader
	teachers teacherLister
	cache    *GridCache
	logger   *zap.Logger
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(sessions sessionFinder, subjects subjectCatalogReader, teachers teacherLister, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{sessions: sessions, subjects: subjects, teachers: teachers, logger: logger}
}

// WithCache serves grids through a read-through cache.
func (s *TimetableService) WithCache(cache *GridCache) *TimetableService {
	s.cache = cache
	return s
}

// Catalog returns the static weekday, slot and room catalogs.
func (s *TimetableService) Catalog() models.Catalog {
	return models.DefaultCatalog()
}

// Sessions lists sessions by equality filter.
func (s *TimetableService) Sessions(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	if filter.Semester != nil && !models.ValidSemester(*filter.Semester) {
		return nil, validationError(nil, "semester must be between 1 and 9")
	}
	if filter.Weekday != "" {
		day, ok := models.ParseWeekday(string(filter.Weekday))
		if !ok {
			return nil, validationError(nil, "invalid weekday")
		}
		filter.Weekday = day
	}
	if filter.Room != "" {
		filter.Room, _ = models.NormalizeRoom(filter.Room)
	}
	sessions, err := s.sessions.Find(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list sessions")
	}
	return sessions, nil
}

// SemesterTimetable builds the eight-slot grid of one semester.
func (s *TimetableService) SemesterTimetable(ctx context.Context, semester int) (*models.Timetable, error) {
	if !models.ValidSemester(semester) {
		return nil, validationError(nil, "semester must be between 1 and 9")
	}
	return cached(ctx, s.cache, fmt.Sprintf("semester:%d", semester), func() (*models.Timetable, error) {
		sessions, err := s.sessions.Find(ctx, models.SessionFilter{Semester: models.IntPtr(semester)})
		if err != nil {
			return nil, appErrors.Store(err, "failed to load sessions")
		}
		return s.build(ctx, models.TimetableSemester, fmt.Sprint(semester), fmt.Sprintf("Semester %d", semester), models.TeachingSlots, sessions)
	})
}

// TeacherTimetable builds the eight-slot grid of one teacher across semesters.
func (s *TimetableService) TeacherTimetable(ctx context.Context, teacher models.Teacher) (*models.Timetable, error) {
	return cached(ctx, s.cache, "teacher:"+teacher.ID, func() (*models.Timetable, error) {
		sessions, err := s.sessions.Find(ctx, models.SessionFilter{TeacherID: teacher.ID})
		if err != nil {
			return nil, appErrors.Store(err, "failed to load sessions")
		}
		return s.build(ctx, models.TimetableTeacher, teacher.ID, teacher.Name, models.TeachingSlots, sessions)
	})
}

// RoomTimetable builds the ten-slot grid of one room across semesters.
func (s *TimetableService) RoomTimetable(ctx context.Context, room string) (*models.Timetable, error) {
	label, ok := models.NormalizeRoom(room)
	if !ok {
		return nil, validationError(nil, fmt.Sprintf("room %s is not in the catalog", label))
	}
	return cached(ctx, s.cache, "room:"+label, func() (*models.Timetable, error) {
		sessions, err := s.sessions.Find(ctx, models.SessionFilter{Room: label})
		if err != nil {
			return nil, appErrors.Store(err, "failed to load sessions")
		}
		return s.build(ctx, models.TimetableRoom, label, "Room "+label, models.ExtendedSlots, sessions)
	})
}

// FreeRooms lists catalog rooms that no session of the semester uses at slot
// on any of the weekdays. An empty weekday list means the whole week.
func (s *TimetableService) FreeRooms(ctx context.Context, semester int, slot string, weekdays []models.Weekday) (*models.FreeRooms, error) {
	if !models.ValidSemester(semester) {
		return nil, validationError(nil, "semester must be between 1 and 9")
	}
	if !models.IsValidSlot(slot) {
		return nil, validationError(nil, fmt.Sprintf("slot %s is not in the catalog", slot))
	}
	if len(weekdays) == 0 {
		weekdays = append([]models.Weekday{}, models.Weekdays...)
	}

	sessions, err := s.sessions.Find(ctx, models.SessionFilter{Semester: models.IntPtr(semester), Slot: slot})
	if err != nil {
		return nil, appErrors.Store(err, "failed to load sessions")
	}
	wanted := make(map[models.Weekday]bool, len(weekdays))
	for _, d := range weekdays {
		wanted[d] = true
	}
	used := map[string]bool{}
	for _, sess := range sessions {
		if wanted[sess.Weekday] && sess.Room != nil {
			used[sess.RoomValue()] = true
		}
	}
	free := make([]string, 0, len(models.Rooms))
	for _, room := range models.Rooms {
		if !used[room] {
			free = append(free, room)
		}
	}
	return &models.FreeRooms{Semester: semester, Slot: slot, Weekdays: weekdays, Rooms: free}, nil
}

func (s *TimetableService) build(ctx context.Context, kind models.TimetableKind, key, title string, slots []string, sessions []models.Session) (*models.Timetable, error) {
	subjects, err := s.subjects.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load subjects")
	}
	teachers, err := s.teachers.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load teachers")
	}
	return BuildTimetable(kind, key, title, slots, sessions, subjectNames(subjects), teacherNames(teachers)), nil
}

// BuildTimetable lays sessions on a weekday by slot grid. Sessions whose slot
// is outside slots are left out. Cells are ordered by semester then subject name.
func BuildTimetable(kind models.TimetableKind, key, title string, slots []string, sessions []models.Session, subjects, teachers map[string]string) *models.Timetable {
	rows := make([]models.TimetableRow, len(slots))
	index := make(map[string]int, len(slots))
	for i, slot := range slots {
		rows[i] = models.TimetableRow{Slot: slot, Days: make(map[models.Weekday][]models.GridEntry, len(models.Weekdays))}
		for _, d := range models.Weekdays {
			rows[i].Days[d] = []models.GridEntry{}
		}
		index[slot] = i
	}

	for _, sess := range sessions {
		i, ok := index[sess.Slot]
		if !ok || !sess.Weekday.Valid() {
			continue
		}
		entry := models.GridEntry{
			SessionID:   sess.ID,
			Semester:    sess.Semester,
			SubjectID:   sess.SubjectID,
			SubjectName: subjects[sess.SubjectID],
			TeacherID:   sess.TeacherValue(),
			TeacherName: teachers[sess.TeacherValue()],
			Room:        sess.RoomValue(),
		}
		rows[i].Days[sess.Weekday] = append(rows[i].Days[sess.Weekday], entry)
	}
	for _, row := range rows {
		for _, cell := range row.Days {
			sort.SliceStable(cell, func(a, b int) bool {
				if cell[a].Semester != cell[b].Semester {
					return cell[a].Semester < cell[b].Semester
				}
				return cell[a].SubjectName < cell[b].SubjectName
			})
		}
	}

	return &models.Timetable{
		Kind:     kind,
		Key:      key,
		Title:    title,
		Weekdays: append([]models.Weekday{}, models.Weekdays...),
		Rows:     rows,
	}
}

func subjectNames(subjects []models.Subject) map[string]string {
	names := make(map[string]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}
	return names
}

func teacherNames(teachers []models.Teacher) map[string]string {
	names := make(map[string]string, len(teachers))
	for _, t := range teachers {
		names[t.ID] = t.Name
	}
	return names
}
