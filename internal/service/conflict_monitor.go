package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/jobs"
)

const conflictScanJob = "conflict-scan"

type conflictReporter interface {
	ScanConflicts(ctx context.Context) (*models.ConflictReport, error)
}

type jobQueue interface {
	Enqueue(kind string) (bool, error)
}

// ConflictMonitor re-runs the conflict scan in the background after store
// writes so the conflicts gauge stays current. Bursts of writes collapse
// into one pending scan.
type ConflictMonitor struct {
	scanner conflictReporter
	queue   jobQueue
	logger  *zap.Logger
}

// NewConflictMonitor constructs a ConflictMonitor. Attach a queue with WithQueue
// before calling Schedule.
func NewConflictMonitor(scanner conflictReporter, logger *zap.Logger) *ConflictMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictMonitor{scanner: scanner, logger: logger}
}

// WithQueue sets the queue Schedule pushes scan jobs onto.
func (m *ConflictMonitor) WithQueue(queue jobQueue) *ConflictMonitor {
	m.queue = queue
	return m
}

// Schedule requests a background scan. It never blocks the caller.
func (m *ConflictMonitor) Schedule(context.Context) {
	if m == nil || m.queue == nil {
		return
	}
	if _, err := m.queue.Enqueue(conflictScanJob); err != nil {
		m.logger.Warn("conflict scan not scheduled", zap.Error(err))
	}
}

// Handle runs one queued scan.
func (m *ConflictMonitor) Handle(ctx context.Context, job jobs.Job) error {
	report, err := m.scanner.ScanConflicts(ctx)
	if err != nil {
		return err
	}
	m.logger.Debug("background conflict scan finished",
		zap.String("job_id", job.ID),
		zap.Int("conflicts", report.Total),
		zap.Int("sessions", report.ScannedSessions),
	)
	return nil
}
