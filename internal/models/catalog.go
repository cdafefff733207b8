package models

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a teaching day, Monday through Friday.
type Weekday string

const (
	Monday    Weekday = "MON"
	Tuesday   Weekday = "TUE"
	Wednesday Weekday = "WED"
	Thursday  Weekday = "THU"
	Friday    Weekday = "FRI"
)

// Weekdays lists teaching days in assignment order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayAliases = map[string]Weekday{
	"MON": Monday, "MONDAY": Monday, "LUNES": Monday,
	"TUE": Tuesday, "TUESDAY": Tuesday, "MARTES": Tuesday,
	"WED": Wednesday, "WEDNESDAY": Wednesday, "MIERCOLES": Wednesday, "MIÉRCOLES": Wednesday,
	"THU": Thursday, "THURSDAY": Thursday, "JUEVES": Thursday,
	"FRI": Friday, "FRIDAY": Friday, "VIERNES": Friday,
}

// ParseWeekday accepts the canonical code, the English name or the Spanish name.
func ParseWeekday(raw string) (Weekday, bool) {
	w, ok := weekdayAliases[strings.ToUpper(strings.TrimSpace(raw))]
	return w, ok
}

// Index returns the position in Weekdays or -1.
func (w Weekday) Index() int {
	for i, d := range Weekdays {
		if d == w {
			return i
		}
	}
	return -1
}

// Valid reports whether w is a teaching day.
func (w Weekday) Valid() bool { return w.Index() >= 0 }

// TimeWeekday maps to the standard library weekday.
func (w Weekday) TimeWeekday() time.Weekday {
	if i := w.Index(); i >= 0 {
		return time.Monday + time.Weekday(i)
	}
	return time.Sunday
}

// FirstWeekdays returns the first n teaching days, capped at five.
func FirstWeekdays(n int) []Weekday {
	if n <= 0 {
		return nil
	}
	if n > len(Weekdays) {
		n = len(Weekdays)
	}
	out := make([]Weekday, n)
	copy(out, Weekdays[:n])
	return out
}

// TeachingSlots is the daily grid used by availability masks and semester grids.
var TeachingSlots = []string{
	"7:00-8:00",
	"8:00-9:00",
	"9:00-10:00",
	"10:00-11:00",
	"11:00-12:00",
	"12:00-13:00",
	"13:00-14:00",
	"14:00-15:00",
}

// ExtendedSlots adds the afternoon hours used by room grids.
var ExtendedSlots = append(append([]string{}, TeachingSlots...), "15:00-16:00", "16:00-17:00")

// SlotIndex returns the position in ExtendedSlots or -1.
func SlotIndex(slot string) int {
	for i, s := range ExtendedSlots {
		if s == slot {
			return i
		}
	}
	return -1
}

// IsValidSlot reports whether slot is in the extended catalog.
func IsValidSlot(slot string) bool { return SlotIndex(slot) >= 0 }

// IsTeachingSlot reports whether slot is one of the eight teaching slots.
func IsTeachingSlot(slot string) bool {
	i := SlotIndex(slot)
	return i >= 0 && i < len(TeachingSlots)
}

// SlotBounds returns the start and end offsets from midnight.
func SlotBounds(slot string) (time.Duration, time.Duration, error) {
	parts := strings.Split(slot, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed slot %q", slot)
	}
	start, err := clockOffset(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := clockOffset(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func clockOffset(raw string) (time.Duration, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("malformed clock %q: %w", raw, err)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// Rooms is the room catalog: A-101..A-110, B-201..B-205, C-301..C-305.
var Rooms = buildRooms()

func buildRooms() []string {
	rooms := make([]string, 0, 20)
	for i := 1; i <= 10; i++ {
		rooms = append(rooms, fmt.Sprintf("A-1%02d", i))
	}
	for i := 1; i <= 5; i++ {
		rooms = append(rooms, fmt.Sprintf("B-2%02d", i))
	}
	for i := 1; i <= 5; i++ {
		rooms = append(rooms, fmt.Sprintf("C-3%02d", i))
	}
	return rooms
}

// NormalizeRoom upper-cases a room label and checks it against the catalog.
func NormalizeRoom(raw string) (string, bool) {
	room := strings.ToUpper(strings.TrimSpace(raw))
	for _, r := range Rooms {
		if r == room {
			return room, true
		}
	}
	return room, false
}

// MinSemester and MaxSemester bound the semester numbers of the program.
const (
	MinSemester = 1
	MaxSemester = 9
)

// ValidSemester reports whether n is a program semester.
func ValidSemester(n int) bool { return n >= MinSemester && n <= MaxSemester }

// Catalog is the static reference data served to clients.
type Catalog struct {
	Weekdays      []Weekday `json:"weekdays"`
	TeachingSlots []string  `json:"teaching_slots"`
	ExtendedSlots []string  `json:"extended_slots"`
	Rooms         []string  `json:"rooms"`
	Semesters     []int     `json:"semesters"`
}

// DefaultCatalog returns copies of the static catalogs.
func DefaultCatalog() Catalog {
	semesters := make([]int, 0, MaxSemester)
	for s := MinSemester; s <= MaxSemester; s++ {
		semesters = append(semesters, s)
	}
	return Catalog{
		Weekdays:      append([]Weekday{}, Weekdays...),
		TeachingSlots: append([]string{}, TeachingSlots...),
		ExtendedSlots: append([]string{}, ExtendedSlots...),
		Rooms:         append([]string{}, Rooms...),
		Semesters:     semesters,
	}
}
