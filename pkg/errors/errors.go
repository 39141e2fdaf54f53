// Package errors defines the error taxonomy shared by the indexing pipeline
// and the search service, plus the HTTP status mapping used at the serving
// boundary.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrDocumentUnreadable marks a corpus document that could not be read
	// or parsed. The reader skips the document and continues.
	ErrDocumentUnreadable = errors.New("document unreadable")

	// ErrSegmentCorrupt marks a partial segment that failed to parse during
	// merge. This is fatal for the indexing run.
	ErrSegmentCorrupt = errors.New("segment corrupt")

	// ErrIndexNotFound means the final index or one of its side artifacts
	// is missing from the data directory.
	ErrIndexNotFound = errors.New("index not found")

	ErrInvalidQuery = errors.New("invalid query")
	ErrInternal     = errors.New("internal error")
	ErrTimeout      = errors.New("operation timed out")
)

// AppError carries a sentinel error, a human-readable message, and the HTTP
// status to report at the serving boundary.
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

// New wraps a sentinel error with a status code and message.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Newf is New with Sprintf-style message formatting.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// CorruptSegment builds the fatal merge error identifying the offending
// segment file and record.
func CorruptSegment(path string, record int, cause error) error {
	return fmt.Errorf("%w: %s record %d: %v", ErrSegmentCorrupt, path, record, cause)
}

// HTTPStatusCode maps an error to the HTTP status the serving layer should
// return.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, ErrIndexNotFound):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
