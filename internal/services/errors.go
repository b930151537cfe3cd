package services

import (
	"errors"

	"gorm.io/gorm"
)

// Common service errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyTemplate    = errors.New("template must not be empty")
	ErrDispatchDisabled = errors.New("notification dispatch is not configured")
	ErrWorkerStopped    = errors.New("background worker is shutting down")
)

func translateRepoError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
