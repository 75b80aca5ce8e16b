// Package apierr defines the error-kind taxonomy of spec.md §7: a closed set
// of named kinds, each with a fixed HTTP surface, independent of any one
// component's internal error values.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind names one of the error categories of spec.md §7.
type Kind string

const (
	ValidationError      Kind = "ValidationError"
	UnknownJob           Kind = "UnknownJob"
	UnknownFile          Kind = "UnknownFile"
	// UnknownResult is a completed job with no result for the requested
	// file/format (spec.md §6's GET /results/{job_id}/{format} 404 case),
	// distinct from UnknownFile's 400 on the upload/transcribe path.
	UnknownResult        Kind = "UnknownResult"
	EmptyRequest         Kind = "EmptyRequest"
	BackendDisabled      Kind = "BackendDisabled"
	BackendUnavailable   Kind = "BackendUnavailable"
	ModelLoadError       Kind = "ModelLoadError"
	ConfigInvalid        Kind = "ConfigInvalid"
	BackendTransient     Kind = "BackendTransient"
	BackendPermanent     Kind = "BackendPermanent"
	AudioUnreadable      Kind = "AudioUnreadable"
	DiarizationMismatch  Kind = "DiarizationMismatch"
	FormatWriteError     Kind = "FormatWriteError"
	StorageError         Kind = "StorageError"
	TimeoutExceeded      Kind = "TimeoutExceeded"
)

// HTTPStatus returns the status code the API layer should surface for k.
// Kinds that only ever occur inside background job processing (and never
// reach the HTTP boundary directly) still get a sensible status for
// completeness and for tests that exercise the mapping directly.
func (k Kind) HTTPStatus() int {
	switch k {
	case ValidationError, UnknownFile, EmptyRequest, BackendDisabled, ConfigInvalid:
		return http.StatusBadRequest
	case UnknownJob, UnknownResult:
		return http.StatusNotFound
	case BackendUnavailable:
		return http.StatusServiceUnavailable
	case ModelLoadError, DiarizationMismatch, StorageError:
		return http.StatusInternalServerError
	case BackendTransient, BackendPermanent, AudioUnreadable:
		return http.StatusInternalServerError
	case FormatWriteError:
		return http.StatusInternalServerError
	case TimeoutExceeded:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the pipeline should retry the operation that
// produced this kind (only BackendTransient, per spec.md §4.3/§7).
func (k Kind) Retryable() bool {
	return k == BackendTransient
}

// Error is a typed error carrying a Kind, a human message and an optional
// wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// HTTPStatus satisfies the same accessor on the wrapped Kind, so handlers
// can call err.HTTPStatus() directly on an *Error.
func (e *Error) HTTPStatus() int { return e.Kind.HTTPStatus() }

// New builds an *Error of kind k with message msg.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

// Wrap builds an *Error of kind k with message msg, wrapping cause.
func Wrap(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Message: msg, Cause: cause}
}

// Is reports whether err carries kind k, unwrapping through fmt.Errorf %w
// chains.
func Is(err error, k Kind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == k
	}
	return false
}

// KindOf extracts the Kind from err, defaulting to StorageError when err is
// not an *Error (an unexpected/unclassified failure is treated as internal).
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return StorageError
}
