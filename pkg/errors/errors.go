// Package errors defines the errors that cross layer boundaries. Store and
// transport adapters return *AppError; the node service returns
// *NodeValidationError and keeps the adapter error as its cause.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an AppError
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeDatabase     ErrorType = "DATABASE"
	ErrorTypeInternal     ErrorType = "INTERNAL"
)

// AppError is a classified failure raised below the service layer.
// Resource names the missing thing for not-found errors, Op the store
// operation for database errors.
type AppError struct {
	Type       ErrorType      `json:"type"`
	Message    string         `json:"message"`
	Resource   string         `json:"resource,omitempty"`
	Op         string         `json:"op,omitempty"`
	Code       string         `json:"code,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
	HTTPStatus int            `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode records a backend error code, e.g. a DynamoDB exception name
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetail adds one key to Details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	e.Details[key] = value
	return e
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFoundError reports that resource does not exist
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    resource + " not found",
		Resource:   resource,
		HTTPStatus: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewDatabaseError wraps a driver failure of the store operation op
func NewDatabaseError(op string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeDatabase,
		Message:    fmt.Sprintf("%s failed", op),
		Op:         op,
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// GetAppError returns the first *AppError in err's chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType reports whether err's chain holds an AppError of errType
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound is what repository callers check to tell absence from failure
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}
