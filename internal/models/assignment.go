package models

// ConflictDimension names what blocks a placement.
type ConflictDimension string

const (
	DimensionRoom    ConflictDimension = "ROOM"
	DimensionTeacher ConflictDimension = "TEACHER"
)

// Availability rejection reasons.
const (
	ReasonRoomOccupied    = "room occupied"
	ReasonTeacherOccupied = "teacher occupied"
)

// CheckAvailabilityRequest asks whether a placement would collide.
type CheckAvailabilityRequest struct {
	Semester  int     `json:"semester" validate:"required,min=1,max=9"`
	Weekday   string  `json:"weekday" validate:"required"`
	Slot      string  `json:"slot" validate:"required"`
	TeacherID *string `json:"teacher_id"`
	Room      *string `json:"room"`
}

// AvailabilityResult reports whether a placement is free and, if not, why.
type AvailabilityResult struct {
	Free      bool              `json:"free"`
	Reason    string            `json:"reason,omitempty"`
	Dimension ConflictDimension `json:"dimension,omitempty"`
	Blocking  *Session          `json:"blocking,omitempty"`
}

// AssignSubjectRequest places a subject on its first credits weekdays at one slot.
type AssignSubjectRequest struct {
	Semester  int     `json:"semester" validate:"required,min=1,max=9"`
	SubjectID string  `json:"subject_id" validate:"required"`
	TeacherID *string `json:"teacher_id"`
	Room      *string `json:"room"`
	Slot      string  `json:"slot" validate:"required"`
}

// AssignDayRequest places a single session.
type AssignDayRequest struct {
	Semester  int     `json:"semester" validate:"required,min=1,max=9"`
	Weekday   string  `json:"weekday" validate:"required"`
	Slot      string  `json:"slot" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	TeacherID *string `json:"teacher_id"`
	Room      *string `json:"room"`
}

// PlacementFailure records why one weekday was not placed.
type PlacementFailure struct {
	Weekday Weekday `json:"weekday"`
	Code    string  `json:"code"`
	Reason  string  `json:"reason"`
}

// AssignmentResult summarises a multi-day placement. Weekdays placed before a
// failure are kept.
type AssignmentResult struct {
	Created   []Weekday          `json:"created"`
	Sessions  []Session          `json:"sessions"`
	Errors    int                `json:"errors"`
	Failures  []PlacementFailure `json:"failures,omitempty"`
	Requested int                `json:"requested"`
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
}

// UnassignResult summarises a grouped removal.
type UnassignResult struct {
	Deleted int    `json:"deleted"`
	Errors  int    `json:"errors"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}
