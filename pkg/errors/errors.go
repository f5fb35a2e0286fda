// Package errors defines the sentinel errors of the search service and the
// mapping from errors to HTTP status codes. The search pipeline itself has
// no fatal error surface, since missing matches degrade to empty results, so
// these sentinels cover the service edges: input decoding, snapshot
// persistence, and unavailable optional dependencies.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrSnapshotCorrupt  = errors.New("snapshot corrupt or unreadable")
	ErrSnapshotWrite    = errors.New("snapshot write failed")
	ErrCacheUnavailable = errors.New("cache unavailable")
	ErrTimeout          = errors.New("operation timed out")
	ErrInternal         = errors.New("internal error")
)

// AppError pairs a sentinel with a human-readable message and an HTTP
// status for the transport layer.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps a sentinel into an AppError.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Newf is New with printf-style message formatting.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the HTTP status the handler should emit.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrSnapshotCorrupt):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrCacheUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
