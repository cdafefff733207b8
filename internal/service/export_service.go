package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/export"
)

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type calendarRenderer interface {
	Render(name string, events []export.CalendarEvent, stamp time.Time) ([]byte, error)
}

type timetableSource interface {
	SemesterTimetable(ctx context.Context, semester int) (*models.Timetable, error)
	TeacherTimetable(ctx context.Context, teacher models.Teacher) (*models.Timetable, error)
}

// ExportConfig anchors calendar feeds on real dates.
type ExportConfig struct {
	TermStart time.Time
	TermWeeks int
	Location  *time.Location
}

// ExportService renders timetables as downloadable files.
type ExportService struct {
	timetables timetableSource
	teachers   teacherReader
	csv        datasetRenderer
	pdf        datasetRenderer
	xlsx       datasetRenderer
	ics        calendarRenderer
	cfg        ExportConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService wires the export renderers.
func NewExportService(timetables timetableSource, teachers teacherReader, csv, pdf, xlsx datasetRenderer, ics calendarRenderer, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.TermWeeks <= 0 {
		cfg.TermWeeks = 16
	}
	return &ExportService{
		timetables: timetables,
		teachers:   teachers,
		csv:        csv,
		pdf:        pdf,
		xlsx:       xlsx,
		ics:        ics,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// ParseExportFormat validates a grid export format.
func ParseExportFormat(raw string) (models.ExportFormat, bool) {
	switch models.ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case models.ExportCSV:
		return models.ExportCSV, true
	case models.ExportPDF:
		return models.ExportPDF, true
	case models.ExportXLSX:
		return models.ExportXLSX, true
	default:
		return "", false
	}
}

// ExportSemester renders the semester grid as csv, pdf or xlsx.
func (s *ExportService) ExportSemester(ctx context.Context, semester int, format models.ExportFormat) (*models.ExportFile, error) {
	var (
		renderer    datasetRenderer
		contentType string
	)
	switch format {
	case models.ExportCSV:
		renderer, contentType = s.csv, "text/csv"
	case models.ExportPDF:
		renderer, contentType = s.pdf, "application/pdf"
	case models.ExportXLSX:
		renderer, contentType = s.xlsx, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return nil, validationError(nil, fmt.Sprintf("unsupported export format %q", format))
	}

	grid, err := s.timetables.SemesterTimetable(ctx, semester)
	if err != nil {
		return nil, err
	}
	body, err := renderer.Render(TimetableDataset(grid))
	if err != nil {
		s.logger.Error("render timetable export", zap.Int("semester", semester), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &models.ExportFile{
		Filename:    fmt.Sprintf("semester-%d-timetable.%s", semester, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

// TeacherCalendar renders a teacher's weekly sessions as a recurring iCalendar feed.
func (s *ExportService) TeacherCalendar(ctx context.Context, teacherID string) (*models.ExportFile, error) {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		return nil, lookupError(err, "teacher")
	}
	grid, err := s.timetables.TeacherTimetable(ctx, *teacher)
	if err != nil {
		return nil, err
	}

	start := s.termStart()
	events := make([]export.CalendarEvent, 0)
	for _, row := range grid.Rows {
		from, to, err := models.SlotBounds(row.Slot)
		if err != nil {
			continue
		}
		for _, day := range grid.Weekdays {
			date := firstOnOrAfter(start, day)
			for _, entry := range row.Days[day] {
				events = append(events, export.CalendarEvent{
					UID:         entry.SessionID + "@timetable-api",
					Summary:     entry.SubjectName,
					Location:    entry.Room,
					Description: fmt.Sprintf("Semester %d", entry.Semester),
					Start:       date.Add(from),
					End:         date.Add(to),
					Weeks:       s.cfg.TermWeeks,
				})
			}
		}
	}

	body, err := s.ics.Render(teacher.Name, events, s.now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render calendar")
	}
	return &models.ExportFile{
		Filename:    fmt.Sprintf("teacher-%s.ics", teacher.ID),
		ContentType: "text/calendar",
		Body:        body,
	}, nil
}

// termStart is the configured term start, or the Monday of the current week.
func (s *ExportService) termStart() time.Time {
	if !s.cfg.TermStart.IsZero() {
		t := s.cfg.TermStart
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.cfg.Location)
	}
	now := s.now().In(s.cfg.Location)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.cfg.Location)
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}

func firstOnOrAfter(start time.Time, day models.Weekday) time.Time {
	diff := (int(day.TimeWeekday()) - int(start.Weekday()) + 7) % 7
	return start.AddDate(0, 0, diff)
}

var weekdayLabels = map[models.Weekday]string{
	models.Monday:    "Monday",
	models.Tuesday:   "Tuesday",
	models.Wednesday: "Wednesday",
	models.Thursday:  "Thursday",
	models.Friday:    "Friday",
}

// TimetableDataset flattens a grid into one row per slot.
func TimetableDataset(grid *models.Timetable) export.Dataset {
	headers := []string{"Slot"}
	for _, d := range grid.Weekdays {
		headers = append(headers, weekdayLabels[d])
	}
	rows := make([]map[string]string, 0, len(grid.Rows))
	for _, row := range grid.Rows {
		record := map[string]string{"Slot": row.Slot}
		for _, d := range grid.Weekdays {
			record[weekdayLabels[d]] = cellText(row.Days[d])
		}
		rows = append(rows, record)
	}
	return export.Dataset{Title: grid.Title + " timetable", Headers: headers, Rows: rows}
}

func cellText(entries []models.GridEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		fields := []string{e.SubjectName}
		if e.TeacherName != "" {
			fields = append(fields, e.TeacherName)
		}
		if e.Room != "" {
			fields = append(fields, e.Room)
		}
		parts = append(parts, strings.Join(fields, " / "))
	}
	return strings.Join(parts, "; ")
}
