package models

// Overview is the director's department summary.
type Overview struct {
	TotalSubjects       int              `json:"total_subjects"`
	TotalTeachers       int              `json:"total_teachers"`
	AssignedHours       int              `json:"assigned_hours"`
	AvailableHours      int              `json:"available_hours"`
	FreeHours           int              `json:"free_hours"`
	OccupancyPercent    float64          `json:"occupancy_percent"`
	SubjectsPerSemester map[int]int      `json:"subjects_per_semester"`
	TotalUsers          int              `json:"total_users"`
	UsersPerRole        map[UserRole]int `json:"users_per_role"`
}
