package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/noah-isme/timetable-api/internal/models"
)

const pgUniqueViolation = "23505"

// writeError wraps a failed write, mapping unique violations to models.ErrDuplicate.
func writeError(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: %w (%s)", op, models.ErrDuplicate, pqErr.Constraint)
	}
	return fmt.Errorf("%s: %w", op, err)
}
