package models

import (
	"errors"
	"fmt"
)

// Error classes matched by the HTTP layer with errors.Is. Model functions
// wrap these with %w so the handlers can map them to status codes without
// string matching.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
