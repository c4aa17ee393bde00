package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Request errors
	ErrorTypeValidation        ErrorType = "VALIDATION"
	ErrorTypeMissingCredential ErrorType = "MISSING_CREDENTIAL"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"

	// Data errors
	ErrorTypeNoData ErrorType = "NO_DATA"

	// Upstream errors
	ErrorTypeUpstreamAuth   ErrorType = "UPSTREAM_AUTH"
	ErrorTypeUpstreamFormat ErrorType = "UPSTREAM_FORMAT"
	ErrorTypeUpstream       ErrorType = "UPSTREAM"

	// Infrastructure errors
	ErrorTypeDatabase    ErrorType = "DATABASE"
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

// Constructor functions for common error types

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewMissingCredentialError reports an absent tenant id or API credential.
// These never reach the upstream API; the request is rejected immediately.
func NewMissingCredentialError(what string) *AppError {
	return &AppError{
		Type:       ErrorTypeMissingCredential,
		Message:    fmt.Sprintf("missing %s", what),
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// NewNoDataError reports a legitimately empty result set for a resource
// that is expected to have data. Rendered as a server-side failure so
// operators notice unsynced tenants; it is not a 404.
func NewNoDataError(resource, tenantID string) *AppError {
	return &AppError{
		Type:       ErrorTypeNoData,
		Message:    fmt.Sprintf("no %s found for tenant %s", resource, tenantID),
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewUpstreamAuthError reports a 401 from the upstream API that persisted
// through the retry budget.
func NewUpstreamAuthError(resource string, attempts int) *AppError {
	return &AppError{
		Type:       ErrorTypeUpstreamAuth,
		Message:    fmt.Sprintf("upstream rejected credentials for %s after %d attempts", resource, attempts),
		HTTPStatus: http.StatusBadGateway,
		StackTrace: captureStackTrace(),
	}
}

// NewUpstreamFormatError reports an upstream response whose shape or
// content type does not match the documented envelope.
func NewUpstreamFormatError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUpstreamFormat,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		StackTrace: captureStackTrace(),
	}
}

// NewUpstreamStatusError carries a non-2xx upstream status through to the
// caller. HTTPStatus is the upstream's own status code.
func NewUpstreamStatusError(status int, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUpstream,
		Message:    message,
		HTTPStatus: status,
		StackTrace: captureStackTrace(),
	}
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeDatabase,
		Message:    fmt.Sprintf("database operation '%s' failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewUnavailableError creates a service unavailable error
func NewUnavailableError(service string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Message:    fmt.Sprintf("service '%s' is unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
		StackTrace: captureStackTrace(),
	}
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsMissingCredential checks if an error is a missing credential error
func IsMissingCredential(err error) bool {
	return IsType(err, ErrorTypeMissingCredential)
}

// IsNoData checks if an error is an empty result set error
func IsNoData(err error) bool {
	return IsType(err, ErrorTypeNoData)
}

// IsUpstreamAuth checks if an error is a persistent upstream 401
func IsUpstreamAuth(err error) bool {
	return IsType(err, ErrorTypeUpstreamAuth)
}

// IsUpstreamFormat checks if an error is an upstream envelope mismatch
func IsUpstreamFormat(err error) bool {
	return IsType(err, ErrorTypeUpstreamFormat)
}

// StatusOf returns the HTTP status an error maps to, defaulting to 500
// for anything that is not an AppError.
func StatusOf(err error) int {
	if appErr := GetAppError(err); appErr != nil && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// TypeOf returns the error's type name, defaulting to INTERNAL for
// anything that is not an AppError.
func TypeOf(err error) string {
	if appErr := GetAppError(err); appErr != nil {
		return string(appErr.Type)
	}
	return string(ErrorTypeInternal)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, add context to message
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	// Otherwise create a new internal error
	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
