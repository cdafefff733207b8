package models

// CompletionState classifies a subject's placement progress in a semester.
type CompletionState string

const (
	StateComplete   CompletionState = "complete"
	StatePartial    CompletionState = "partial"
	StateUnassigned CompletionState = "unassigned"
)

// ClassifyCompletion maps a session count against credits. Counts above credits
// are partial.
func ClassifyCompletion(assigned, credits int) CompletionState {
	switch {
	case assigned == 0:
		return StateUnassigned
	case assigned == credits:
		return StateComplete
	default:
		return StatePartial
	}
}

// SubjectStatus is the completion of one subject.
type SubjectStatus struct {
	SubjectID   string          `json:"subject_id"`
	SubjectName string          `json:"subject_name"`
	Semester    int             `json:"semester"`
	Credits     int             `json:"credits"`
	Assigned    int             `json:"assigned"`
	State       CompletionState `json:"state"`
}

// SemesterStats aggregates completion over a semester's subjects.
type SemesterStats struct {
	Semester        int `json:"semester"`
	Total           int `json:"total"`
	Complete        int `json:"complete"`
	Partial         int `json:"partial"`
	Unassigned      int `json:"unassigned"`
	PercentComplete int `json:"percent_complete"`
}

// SemesterProgress lists per-subject completion with its aggregate.
type SemesterProgress struct {
	Stats    SemesterStats   `json:"stats"`
	Subjects []SubjectStatus `json:"subjects"`
}
