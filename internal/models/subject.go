package models

import "time"

// Subject is a course offered in one semester with a weekly credit count.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Credits   int       `db:"credits" json:"credits"`
	Semester  int       `db:"semester" json:"semester"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	Semester *int
	Search   string
}

// SubjectRequest is the create/update payload for subjects.
type SubjectRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Credits  int    `json:"credits" validate:"required,min=1,max=5"`
	Semester int    `json:"semester" validate:"required,min=1,max=9"`
}

// SubjectDeletion reports what a subject delete removed alongside it.
type SubjectDeletion struct {
	SessionsRemoved int64
	TeachersUpdated int64
}
