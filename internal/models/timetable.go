package models

// TimetableKind names the axis a grid is built around.
type TimetableKind string

const (
	TimetableSemester TimetableKind = "semester"
	TimetableTeacher  TimetableKind = "teacher"
	TimetableRoom     TimetableKind = "room"
)

// GridEntry is a session rendered with display names.
type GridEntry struct {
	SessionID   string `json:"session_id"`
	Semester    int    `json:"semester"`
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	TeacherID   string `json:"teacher_id,omitempty"`
	TeacherName string `json:"teacher_name,omitempty"`
	Room        string `json:"room,omitempty"`
}

// TimetableRow holds one slot across the weekdays.
type TimetableRow struct {
	Slot string                  `json:"slot"`
	Days map[Weekday][]GridEntry `json:"days"`
}

// Timetable is a weekday by slot grid.
type Timetable struct {
	Kind     TimetableKind  `json:"kind"`
	Key      string         `json:"key"`
	Title    string         `json:"title"`
	Weekdays []Weekday      `json:"weekdays"`
	Rows     []TimetableRow `json:"rows"`
}

// FreeRooms lists catalog rooms unused at a semester slot.
type FreeRooms struct {
	Semester int       `json:"semester"`
	Slot     string    `json:"slot"`
	Weekdays []Weekday `json:"weekdays"`
	Rooms    []string  `json:"rooms"`
}

// ExportFormat is a downloadable timetable encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportPDF  ExportFormat = "pdf"
	ExportXLSX ExportFormat = "xlsx"
	ExportICS  ExportFormat = "ics"
)

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
