package backend

import (
	"errors"
	"fmt"
)

// Error taxonomy for stage failures. All errors are terminal per attempt:
// nothing in the client retries automatically.
//
// Check with errors.As / errors.Is:
//
//	var backendErr *backend.Error
//	if errors.As(err, &backendErr) { ... }
//	if errors.Is(err, backend.ErrUnavailable) { ... }

// ErrUnavailable indicates the request never reached the backend (no base
// URL configured, connection refused, DNS failure). Transport errors of
// this kind wrap ErrUnavailable so callers can distinguish "backend down"
// from "backend said no" - the markdown download fallback depends on it.
var ErrUnavailable = errors.New("backend unavailable")

// genericNotice is shown when an error carries no usable message.
const genericNotice = "Something went wrong. Please try again."

// ValidationError indicates a local precondition failed; no network call
// was attempted.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validationf creates a ValidationError with a formatted message.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// TransportError indicates the HTTP exchange itself failed: either a
// non-2xx status, or no response at all (Status == 0, wrapping
// ErrUnavailable).
type TransportError struct {
	Status int   // HTTP status code, 0 when no response was received
	Err    error // Underlying error, if any
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend unreachable: %v", e.Err)
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

func (e *TransportError) Unwrap() error {
	if e.Status == 0 {
		return ErrUnavailable
	}
	return e.Err
}

// Error is a backend-reported failure: the response carried an
// {"error": ...} field, regardless of HTTP status. A present error field
// overrides a 2xx status.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// DownloadError indicates an export or artifact-construction failure.
type DownloadError struct {
	Message string
	Err     error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Notice converts any stage error into a user-visible, human-readable
// message, falling back to a generic one when none is supplied. Errors
// never propagate past the stage boundary unformatted.
func Notice(err error) string {
	if err == nil {
		return ""
	}

	var (
		validationErr *ValidationError
		backendErr    *Error
		downloadErr   *DownloadError
		transportErr  *TransportError
	)
	switch {
	case errors.As(err, &validationErr):
		if validationErr.Message != "" {
			return validationErr.Message
		}
	case errors.As(err, &backendErr):
		if backendErr.Message != "" {
			return backendErr.Message
		}
	case errors.As(err, &downloadErr):
		if downloadErr.Message != "" {
			return downloadErr.Error()
		}
	case errors.As(err, &transportErr):
		return transportErr.Error()
	default:
		if msg := err.Error(); msg != "" {
			return msg
		}
	}
	return genericNotice
}
