package models

import "time"

// Session is one weekly class meeting: subject, optional teacher and room, at a weekday and slot.
type Session struct {
	ID        string    `db:"id" json:"id"`
	Semester  int       `db:"semestre" json:"semester"`
	Weekday   Weekday   `db:"dia" json:"weekday"`
	Slot      string    `db:"hora" json:"slot"`
	SubjectID string    `db:"materia_id" json:"subject_id"`
	TeacherID *string   `db:"docente_id" json:"teacher_id,omitempty"`
	Room      *string   `db:"aula" json:"room,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TeacherValue returns the teacher id or "".
func (s Session) TeacherValue() string {
	if s.TeacherID == nil {
		return ""
	}
	return *s.TeacherID
}

// RoomValue returns the room label or "".
func (s Session) RoomValue() string {
	if s.Room == nil {
		return ""
	}
	return *s.Room
}

// SessionFilter selects sessions by equality on any subset of fields.
type SessionFilter struct {
	Semester  *int
	Weekday   Weekday
	Slot      string
	SubjectID string
	TeacherID string
	Room      string
}

// StringPtr returns nil for blank values.
func StringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
