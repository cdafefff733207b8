package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstWeekdays(t *testing.T) {
	assert.Nil(t, FirstWeekdays(0))
	assert.Equal(t, []Weekday{Monday, Tuesday, Wednesday}, FirstWeekdays(3))
	assert.Equal(t, Weekdays, FirstWeekdays(7))

	days := FirstWeekdays(2)
	days[0] = Friday
	assert.Equal(t, Monday, Weekdays[0])
}

func TestParseWeekday(t *testing.T) {
	cases := map[string]Weekday{
		"mon":       Monday,
		"Tuesday":   Tuesday,
		"miércoles": Wednesday,
		"JUEVES":    Thursday,
		" fri ":     Friday,
	}
	for in, want := range cases {
		got, ok := ParseWeekday(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseWeekday("SAT")
	assert.False(t, ok)
}

func TestSlotCatalog(t *testing.T) {
	assert.Len(t, TeachingSlots, 8)
	assert.Len(t, ExtendedSlots, 10)
	assert.True(t, IsValidSlot("16:00-17:00"))
	assert.False(t, IsTeachingSlot("16:00-17:00"))
	assert.True(t, IsTeachingSlot("7:00-8:00"))
	assert.False(t, IsValidSlot("17:00-18:00"))
	assert.Equal(t, 9, SlotIndex("16:00-17:00"))

	start, end, err := SlotBounds("13:00-14:00")
	require.NoError(t, err)
	assert.Equal(t, 13*time.Hour, start)
	assert.Equal(t, 14*time.Hour, end)

	_, _, err = SlotBounds("noon")
	assert.Error(t, err)
}

func TestRoomCatalog(t *testing.T) {
	require.Len(t, Rooms, 20)
	assert.Equal(t, "A-101", Rooms[0])
	assert.Equal(t, "A-110", Rooms[9])
	assert.Equal(t, "B-201", Rooms[10])
	assert.Equal(t, "C-305", Rooms[19])

	room, ok := NormalizeRoom(" b-203 ")
	assert.True(t, ok)
	assert.Equal(t, "B-203", room)

	_, ok = NormalizeRoom("D-401")
	assert.False(t, ok)
}

func TestWeekdayTimeMapping(t *testing.T) {
	assert.Equal(t, time.Monday, Monday.TimeWeekday())
	assert.Equal(t, time.Friday, Friday.TimeWeekday())
	assert.Equal(t, -1, Weekday("SUN").Index())
}

func TestClassifyCompletion(t *testing.T) {
	assert.Equal(t, StateUnassigned, ClassifyCompletion(0, 3))
	assert.Equal(t, StatePartial, ClassifyCompletion(2, 3))
	assert.Equal(t, StateComplete, ClassifyCompletion(3, 3))
	assert.Equal(t, StatePartial, ClassifyCompletion(4, 3))
}
