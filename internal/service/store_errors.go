package service

import (
	"database/sql"
	"errors"

	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// lookupError maps a repository lookup failure to NotFound or StoreError.
func lookupError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Store(err, "failed to load "+entity)
}

func validationError(err error, message string) error {
	if err == nil {
		return appErrors.Clone(appErrors.ErrValidation, message)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
