package service

import (
	"alcyxob/fitness-coach/internal/repository"
	"errors"
	"fmt"
)

// Error kinds every operation reports. Handlers map them to status codes;
// details are wrapped with %w so errors.Is keeps working.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("not authorized")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// mapRepoErr turns repository.ErrNotFound into the service kind and leaves
// anything else untouched.
func mapRepoErr(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(what)
	}
	return err
}
