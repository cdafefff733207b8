package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/timetable-api/internal/models"
)

var errStoreDown = fmt.Errorf("store unavailable")

type fakeSessionRepo struct {
	mu          sync.Mutex
	items       map[string]models.Session
	seq         int
	findErr     error
	listErr     error
	createErr   func(models.Session) error
	deleteErr   map[string]error
	createDelay time.Duration
}

func newFakeSessionRepo(sessions ...models.Session) *fakeSessionRepo {
	repo := &fakeSessionRepo{items: map[string]models.Session{}, deleteErr: map[string]error{}}
	for _, s := range sessions {
		repo.seed(s)
	}
	return repo
}

func (f *fakeSessionRepo) seed(s models.Session) models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == "" {
		f.seq++
		s.ID = fmt.Sprintf("seed-%03d", f.seq)
	}
	f.items[s.ID] = s
	return s
}

func matchSession(filter models.SessionFilter, s models.Session) bool {
	switch {
	case filter.Semester != nil && s.Semester != *filter.Semester:
		return false
	case filter.Weekday != "" && s.Weekday != filter.Weekday:
		return false
	case filter.Slot != "" && s.Slot != filter.Slot:
		return false
	case filter.SubjectID != "" && s.SubjectID != filter.SubjectID:
		return false
	case filter.TeacherID != "" && s.TeacherValue() != filter.TeacherID:
		return false
	case filter.Room != "" && s.RoomValue() != filter.Room:
		return false
	}
	return true
}

func (f *fakeSessionRepo) sorted(filter models.SessionFilter) []models.Session {
	out := make([]models.Session, 0)
	for _, s := range f.items {
		if matchSession(filter, s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeSessionRepo) Find(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.sorted(filter), nil
}

func (f *fakeSessionRepo) ListAll(ctx context.Context) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sorted(models.SessionFilter{}), nil
}

func (f *fakeSessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *models.Session) error {
	if f.createDelay > 0 {
		time.Sleep(f.createDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		if err := f.createErr(*session); err != nil {
			return err
		}
	}
	f.seq++
	session.ID = fmt.Sprintf("sess-%03d", f.seq)
	session.CreatedAt = time.Now().UTC()
	f.items[session.ID] = *session
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

func (f *fakeSessionRepo) deleteBySubject(subjectID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.items {
		if s.SubjectID == subjectID {
			delete(f.items, id)
			n++
		}
	}
	return n
}

func (f *fakeSessionRepo) clearTeacher(teacherID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.items {
		if s.TeacherValue() == teacherID {
			s.TeacherID = nil
			f.items[id] = s
			n++
		}
	}
	return n
}

func (f *fakeSessionRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeSubjectRepo struct {
	mu        sync.Mutex
	items     map[string]models.Subject
	findErr   error
	deleteErr error
	seq       int
	sessions  *fakeSessionRepo
	teachers  *fakeTeacherRepo
}

func newFakeSubjectRepo(subjects ...models.Subject) *fakeSubjectRepo {
	repo := &fakeSubjectRepo{items: map[string]models.Subject{}}
	for _, s := range subjects {
		repo.items[s.ID] = s
	}
	return repo
}

func (f *fakeSubjectRepo) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Subject, 0)
	for _, s := range f.items {
		if filter.Semester != nil && s.Semester != *filter.Semester {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSubjectRepo) ListAll(ctx context.Context) ([]models.Subject, error) {
	return f.List(ctx, models.SubjectFilter{})
}

func (f *fakeSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	s, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	subject.ID = fmt.Sprintf("subj-%03d", f.seq)
	f.items[subject.ID] = *subject
	return nil
}

func (f *fakeSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[subject.ID]; !ok {
		return sql.ErrNoRows
	}
	f.items[subject.ID] = *subject
	return nil
}

// cascadeTo links the stores a subject delete also touches.
func (f *fakeSubjectRepo) cascadeTo(sessions *fakeSessionRepo, teachers *fakeTeacherRepo) *fakeSubjectRepo {
	f.sessions = sessions
	f.teachers = teachers
	return f
}

// DeleteCascade applies all three changes or none of them.
func (f *fakeSubjectRepo) DeleteCascade(ctx context.Context, id string) (models.SubjectDeletion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return models.SubjectDeletion{}, f.deleteErr
	}
	if _, ok := f.items[id]; !ok {
		return models.SubjectDeletion{}, sql.ErrNoRows
	}
	var result models.SubjectDeletion
	if f.sessions != nil {
		result.SessionsRemoved = f.sessions.deleteBySubject(id)
	}
	if f.teachers != nil {
		result.TeachersUpdated = f.teachers.removeSubject(id)
	}
	delete(f.items, id)
	return result, nil
}

type fakeTeacherRepo struct {
	mu        sync.Mutex
	items     map[string]models.Teacher
	seq       int
	deleteErr error
	sessions  *fakeSessionRepo
	users     *fakeUserRepo
}

func newFakeTeacherRepo(teachers ...models.Teacher) *fakeTeacherRepo {
	repo := &fakeTeacherRepo{items: map[string]models.Teacher{}}
	for _, t := range teachers {
		repo.items[t.ID] = t
	}
	return repo
}

func (f *fakeTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Teacher, 0)
	for _, t := range f.items {
		if filter.SubjectID != "" && !t.Qualifies(filter.SubjectID) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTeacherRepo) ListAll(ctx context.Context) ([]models.Teacher, error) {
	return f.List(ctx, models.TeacherFilter{})
}

func (f *fakeTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	t.QualifiedSubjectIDs = append([]string{}, t.QualifiedSubjectIDs...)
	return &t, nil
}

func (f *fakeTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	teacher.ID = fmt.Sprintf("teacher-%03d", f.seq)
	f.items[teacher.ID] = *teacher
	return nil
}

func (f *fakeTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[teacher.ID]; !ok {
		return sql.ErrNoRows
	}
	f.items[teacher.ID] = *teacher
	return nil
}

func (f *fakeTeacherRepo) UpdateSubjects(ctx context.Context, id string, subjectIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	t.QualifiedSubjectIDs = append([]string{}, subjectIDs...)
	f.items[id] = t
	return nil
}

func (f *fakeTeacherRepo) UpdateAvailability(ctx context.Context, id string, mask types.JSONText) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	t.Availability = mask
	f.items[id] = t
	return nil
}

func (f *fakeTeacherRepo) removeSubject(subjectID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, t := range f.items {
		if !t.Qualifies(subjectID) {
			continue
		}
		kept := make([]string, 0, len(t.QualifiedSubjectIDs))
		for _, s := range t.QualifiedSubjectIDs {
			if s != subjectID {
				kept = append(kept, s)
			}
		}
		t.QualifiedSubjectIDs = kept
		f.items[id] = t
		n++
	}
	return n
}

func (f *fakeTeacherRepo) cascadeTo(sessions *fakeSessionRepo, users *fakeUserRepo) *fakeTeacherRepo {
	f.sessions = sessions
	f.users = users
	return f
}

func (f *fakeTeacherRepo) DeleteCascade(ctx context.Context, id string) (models.TeacherDeletion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return models.TeacherDeletion{}, f.deleteErr
	}
	if _, ok := f.items[id]; !ok {
		return models.TeacherDeletion{}, sql.ErrNoRows
	}
	var result models.TeacherDeletion
	if f.sessions != nil {
		result.SessionsCleared = f.sessions.clearTeacher(id)
	}
	if f.users != nil {
		result.UsersUnlinked = f.users.unlinkTeacher(id)
	}
	delete(f.items, id)
	return result, nil
}

type fakeUserRepo struct {
	mu       sync.Mutex
	items    map[string]models.User
	seq      int
	findErr  error
	writeErr error
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	repo := &fakeUserRepo{items: map[string]models.User{}}
	for _, u := range users {
		repo.items[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0)
	for _, u := range f.items {
		switch {
		case filter.Role != nil && u.Role != *filter.Role:
			continue
		case filter.Active != nil && u.Active != *filter.Active:
			continue
		case filter.TeacherID != "" && (u.TeacherID == nil || *u.TeacherID != filter.TeacherID):
			continue
		case filter.Username != "" && u.Username != filter.Username:
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.items {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.seq++
	user.ID = fmt.Sprintf("user-%03d", f.seq)
	f.items[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.items[user.ID]; !ok {
		return sql.ErrNoRows
	}
	f.items[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

func (f *fakeUserRepo) unlinkTeacher(teacherID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, u := range f.items {
		if u.TeacherID != nil && *u.TeacherID == teacherID {
			u.TeacherID = nil
			f.items[id] = u
			n++
		}
	}
	return n
}

type recordingObserver struct {
	mu       sync.Mutex
	created  int
	rejected map[string]int
	rooms    int
	teachers int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{rejected: map[string]int{}}
}

func (o *recordingObserver) ObserveSessionsCreated(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created += n
}

func (o *recordingObserver) ObservePlacementRejected(code string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected[code]++
}

func (o *recordingObserver) ObserveConflictsDetected(rooms, teachers int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rooms, o.teachers = rooms, teachers
}

func seedSession(id string, semester int, day models.Weekday, slot, subjectID, teacherID, room string) models.Session {
	return models.Session{
		ID:        id,
		Semester:  semester,
		Weekday:   day,
		Slot:      slot,
		SubjectID: subjectID,
		TeacherID: models.StringPtr(teacherID),
		Room:      models.StringPtr(room),
	}
}
