package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type sessionLister interface {
	ListAll(ctx context.Context) ([]models.Session, error)
}

type teacherLister interface {
	ListAll(ctx context.Context) ([]models.Teacher, error)
}

type conflictObserver interface {
	ObserveConflictsDetected(rooms, teachers int)
}

// ConflictService scans every stored session for double-booked rooms and teachers.
type ConflictService struct {
	sessions sessionLister
	teachers teacherLister
	observer conflictObserver
	logger   *zap.Logger
	now      func() time.Time
}

// NewConflictService instantiates ConflictService.
func NewConflictService(sessions sessionLister, teachers teacherLister, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{sessions: sessions, teachers: teachers, observer: noopObserver{}, logger: logger, now: time.Now}
}

// WithObserver attaches a scan outcome observer.
func (s *ConflictService) WithObserver(observer conflictObserver) *ConflictService {
	if observer != nil {
		s.observer = observer
	}
	return s
}

// ScanConflicts reads the whole store, across semesters, and reports conflicts.
func (s *ConflictService) ScanConflicts(ctx context.Context) (*models.ConflictReport, error) {
	sessions, err := s.sessions.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load sessions")
	}
	teachers, err := s.teachers.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load teachers")
	}
	names := make(map[string]string, len(teachers))
	for _, t := range teachers {
		names[t.ID] = t.Name
	}

	conflicts := DetectConflicts(sessions, names)

	var rooms, teacherCount int
	for _, c := range conflicts {
		if c.Kind == models.ConflictKindRoom {
			rooms++
		} else {
			teacherCount++
		}
	}
	s.observer.ObserveConflictsDetected(rooms, teacherCount)
	if len(conflicts) > 0 {
		s.logger.Warn("schedule conflicts detected", zap.Int("room", rooms), zap.Int("teacher", teacherCount))
	}

	return &models.ConflictReport{
		Conflicts:       conflicts,
		Total:           len(conflicts),
		ScannedSessions: len(sessions),
		ScannedAt:       s.now().UTC(),
	}, nil
}

type slotKey struct {
	weekday models.Weekday
	slot    string
}

// DetectConflicts groups sessions by (weekday, slot) and reports every room and
// every teacher used more than once in a group. Output order is deterministic:
// weekday order, then slot catalog order with unknown slots last; room conflicts
// before teacher conflicts; sessions by (semester, id).
func DetectConflicts(sessions []models.Session, teacherNames map[string]string) []models.Conflict {
	groups := make(map[slotKey][]models.Session)
	for _, session := range sessions {
		key := slotKey{weekday: session.Weekday, slot: session.Slot}
		groups[key] = append(groups[key], session)
	}

	keys := make([]slotKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return slotKeyLess(keys[i], keys[j]) })

	conflicts := []models.Conflict{}
	for _, key := range keys {
		group := groups[key]

		byRoom := make(map[string][]models.Session)
		byTeacher := make(map[string][]models.Session)
		for _, session := range group {
			if room := session.RoomValue(); room != "" {
				byRoom[room] = append(byRoom[room], session)
			}
			if teacher := session.TeacherValue(); teacher != "" {
				byTeacher[teacher] = append(byTeacher[teacher], session)
			}
		}

		for _, room := range sortedKeys(byRoom) {
			members := byRoom[room]
			if len(members) < 2 {
				continue
			}
			sortSessions(members)
			conflicts = append(conflicts, models.Conflict{
				Kind:     models.ConflictKindRoom,
				Weekday:  key.weekday,
				Slot:     key.slot,
				Room:     room,
				Sessions: members,
				Message:  fmt.Sprintf("room %s is booked %d times on %s at %s", room, len(members), key.weekday, key.slot),
			})
		}

		for _, teacherID := range sortedKeys(byTeacher) {
			members := byTeacher[teacherID]
			if len(members) < 2 {
				continue
			}
			sortSessions(members)
			name := teacherNames[teacherID]
			label := name
			if label == "" {
				label = teacherID
			}
			conflicts = append(conflicts, models.Conflict{
				Kind:        models.ConflictKindTeacher,
				Weekday:     key.weekday,
				Slot:        key.slot,
				TeacherID:   teacherID,
				TeacherName: name,
				Sessions:    members,
				Message:     fmt.Sprintf("teacher %s is booked %d times on %s at %s", label, len(members), key.weekday, key.slot),
			})
		}
	}
	return conflicts
}

func slotKeyLess(a, b slotKey) bool {
	if ai, bi := weekdayRank(a.weekday), weekdayRank(b.weekday); ai != bi {
		return ai < bi
	}
	if a.weekday != b.weekday {
		return a.weekday < b.weekday
	}
	if ai, bi := slotRank(a.slot), slotRank(b.slot); ai != bi {
		return ai < bi
	}
	return a.slot < b.slot
}

// weekdayRank and slotRank put unknown values after every catalog value.
func weekdayRank(w models.Weekday) int {
	if i := w.Index(); i >= 0 {
		return i
	}
	return len(models.Weekdays)
}

func slotRank(slot string) int {
	if i := models.SlotIndex(slot); i >= 0 {
		return i
	}
	return len(models.ExtendedSlots)
}

func sortedKeys(m map[string][]models.Session) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortSessions(sessions []models.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Semester != sessions[j].Semester {
			return sessions[i].Semester < sessions[j].Semester
		}
		return sessions[i].ID < sessions[j].ID
	})
}
