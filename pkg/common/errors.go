package common

import (
	"errors"
	"net/http"
)

// Common error types
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation error")
	ErrUnavailable    = errors.New("service unavailable")
)

// Machine-readable error codes carried in the response envelope
const (
	CodeValidation   = "VALIDATION_FAILED"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeUnavailable  = "UPSTREAM_UNAVAILABLE"
	CodeInternal     = "INTERNAL"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped error to errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, errorCode, message string, err error) *AppError {
	return &AppError{Code: code, ErrorCode: errorCode, Message: message, Err: err}
}

// AsAppError returns the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NewNotFoundError(message string, err error) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, err)
}

func NewUnauthorizedError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func NewBadRequestError(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, message, err)
}

func NewValidationError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, message, ErrValidation)
}

func NewInternalError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, message, err)
}

func NewServiceUnavailableError(message string, err error) *AppError {
	if err == nil {
		err = ErrUnavailable
	}
	return NewAppError(http.StatusServiceUnavailable, CodeUnavailable, message, err)
}
