package common

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrValidation     = errors.New("validation failed")
	ErrInternalServer = errors.New("internal server error")

	// Pipeline step failures. Each step wraps one of these so the terminal
	// result string carries a recognizable category.
	ErrConfiguration  = errors.New("configuration error")
	ErrWorkspace      = errors.New("workspace error")
	ErrVersionControl = errors.New("version control error")
	ErrHostAPI        = errors.New("repository host API error")
	ErrStore          = errors.New("job store error")

	// ErrGateFailed is returned bare: its text is the exact diagnostic
	// recorded on the job when the gate command exits non-zero.
	ErrGateFailed = errors.New("Tests failed. Aborting push.")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
