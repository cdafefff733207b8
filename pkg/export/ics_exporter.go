package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// CalendarEvent is one weekly recurring occurrence.
type CalendarEvent struct {
	UID         string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	Weeks       int
}

// ICSExporter renders weekly recurring events as an iCalendar feed.
type ICSExporter struct {
	productID string
}

// NewICSExporter constructs an iCalendar exporter.
func NewICSExporter(productID string) *ICSExporter {
	if productID == "" {
		productID = "-//timetable-api//EN"
	}
	return &ICSExporter{productID: productID}
}

// Render builds a VCALENDAR with one VEVENT per entry.
func (e *ICSExporter) Render(name string, events []CalendarEvent, stamp time.Time) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(e.productID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, ev := range events {
		if ev.UID == "" {
			return nil, fmt.Errorf("calendar event requires a uid")
		}
		if !ev.End.After(ev.Start) {
			return nil, fmt.Errorf("calendar event %s ends before it starts", ev.UID)
		}
		vevent := cal.AddEvent(ev.UID)
		vevent.SetDtStampTime(stamp)
		vevent.SetStartAt(ev.Start)
		vevent.SetEndAt(ev.End)
		vevent.SetSummary(ev.Summary)
		if ev.Location != "" {
			vevent.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
		if ev.Weeks > 1 {
			vevent.AddRrule(fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", ev.Weeks))
		}
	}

	return []byte(cal.Serialize()), nil
}
