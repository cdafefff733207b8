package models

import "time"

// ConflictKind distinguishes double-booked rooms from double-booked teachers.
type ConflictKind string

const (
	ConflictKindRoom    ConflictKind = "room"
	ConflictKindTeacher ConflictKind = "teacher"
)

// Conflict groups sessions that share a room or teacher at one weekday and slot.
type Conflict struct {
	Kind        ConflictKind `json:"kind"`
	Weekday     Weekday      `json:"weekday"`
	Slot        string       `json:"slot"`
	Room        string       `json:"room,omitempty"`
	TeacherID   string       `json:"teacher_id,omitempty"`
	TeacherName string       `json:"teacher_name,omitempty"`
	Sessions    []Session    `json:"sessions"`
	Message     string       `json:"message"`
}

// ConflictReport is the output of a full schedule scan.
type ConflictReport struct {
	Conflicts       []Conflict `json:"conflicts"`
	Total           int        `json:"total"`
	ScannedSessions int        `json:"scanned_sessions"`
	ScannedAt       time.Time  `json:"scanned_at"`
}
