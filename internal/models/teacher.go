package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Teacher represents an instructor with a weekly load and a subject allow-list.
type Teacher struct {
	ID                  string         `db:"id" json:"id"`
	Name                string         `db:"nombre" json:"name"`
	WeeklyHours         int            `db:"horas_semanales" json:"weekly_hours"`
	QualifiedSubjectIDs pq.StringArray `db:"materias" json:"qualified_subject_ids"`
	Availability        types.JSONText `db:"horario_disponible" json:"availability"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// Qualifies reports whether subjectID is on the allow-list.
func (t Teacher) Qualifies(subjectID string) bool {
	for _, id := range t.QualifiedSubjectIDs {
		if id == subjectID {
			return true
		}
	}
	return false
}

// AvailabilityMask decodes the stored mask. It is advisory only.
func (t Teacher) AvailabilityMask() (map[string]bool, error) {
	mask := map[string]bool{}
	if len(t.Availability) == 0 {
		return mask, nil
	}
	if err := json.Unmarshal(t.Availability, &mask); err != nil {
		return nil, fmt.Errorf("decode availability: %w", err)
	}
	return mask, nil
}

// AvailabilityKey builds the mask key for a weekday and slot, e.g. MON_7:00-8:00.
func AvailabilityKey(day Weekday, slot string) string {
	return string(day) + "_" + slot
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	SubjectID string
}

// TeacherRequest is the create/update payload for teachers.
type TeacherRequest struct {
	Name                string   `json:"name" validate:"required,max=120"`
	WeeklyHours         int      `json:"weekly_hours" validate:"min=0,max=60"`
	QualifiedSubjectIDs []string `json:"qualified_subject_ids" validate:"omitempty,dive,required"`
}

// TeacherSubjectRequest adds one subject to an allow-list.
type TeacherSubjectRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
}

// TeacherSubjectsRequest replaces an allow-list.
type TeacherSubjectsRequest struct {
	SubjectIDs []string `json:"subject_ids" validate:"dive,required"`
}

// AvailabilityRequest replaces a teacher's availability mask.
type AvailabilityRequest struct {
	Mask map[string]bool `json:"mask" validate:"required"`
}

// TeacherWorkload summarises assigned versus contracted hours.
type TeacherWorkload struct {
	TeacherID     string  `json:"teacher_id"`
	TeacherName   string  `json:"teacher_name"`
	WeeklyHours   int     `json:"weekly_hours"`
	OccupiedHours int     `json:"occupied_hours"`
	FreeHours     int     `json:"free_hours"`
	Occupancy     float64 `json:"occupancy_percent"`
}

// TeacherDeletion reports what a teacher delete unbound.
type TeacherDeletion struct {
	SessionsCleared int64
	UsersUnlinked   int64
}
