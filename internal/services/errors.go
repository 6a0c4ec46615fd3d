package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError carries an HTTP status alongside a client-safe message.
// Handlers map it straight onto the response envelope.
type ServiceError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// AsServiceError reports whether err is (or wraps) a ServiceError
func AsServiceError(err error, target **ServiceError) bool {
	return errors.As(err, target)
}

// Error codes
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeBadRequest    = "BAD_REQUEST"
	CodeInternal      = "INTERNAL_ERROR"
	CodeTooManyReqs   = "TOO_MANY_REQUESTS"
	CodeUnprocessable = "UNPROCESSABLE"
)

// NewValidationError creates a validation error (400)
func NewValidationError(message string, err error) *ServiceError {
	return &ServiceError{
		Code:       CodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// NewBadRequestError creates a bad request error (400)
func NewBadRequestError(message string) *ServiceError {
	return &ServiceError{
		Code:       CodeBadRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewUnauthorizedError creates an authentication error (401)
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Code:       CodeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewForbiddenError creates an authorization error (403)
func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{
		Code:       CodeForbidden,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewNotFoundError creates a not found error (404)
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Code:       CodeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewConflictError creates a conflict error (409)
func NewConflictError(message string) *ServiceError {
	return &ServiceError{
		Code:       CodeConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewInternalError creates an internal error (500). The wrapped error
// is logged server-side; the message shown to clients is generic.
func NewInternalError(message string, err error) *ServiceError {
	return &ServiceError{
		Code:       CodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsNotFound checks whether err is a not found service error
func IsNotFound(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Code == CodeNotFound
}

// IsForbidden checks whether err is a forbidden service error
func IsForbidden(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Code == CodeForbidden
}
