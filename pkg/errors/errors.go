package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is an error that knows how it is answered over HTTP
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	PlainText  bool   `json:"-"`

	cause error
}

func (e *AppError) Error() string {
	if e.cause == nil {
		return "[" + e.Code + "] " + e.Message
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
}

func (e *AppError) Unwrap() error { return e.cause }

// WithDetails attaches a rendered details field
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// WithCause records the internal cause. It is logged, never rendered.
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// AsText answers with the bare message as text/plain
func (e *AppError) AsText() *AppError {
	e.PlainText = true
	return e
}

func newAppError(status int, code, message string) *AppError {
	return &AppError{StatusCode: status, Code: code, Message: message}
}

func NewBadRequestError(code, message string) *AppError {
	return newAppError(http.StatusBadRequest, code, message)
}

func NewNotFoundError(code, message string) *AppError {
	return newAppError(http.StatusNotFound, code, message)
}

func NewTooManyRequestsError(code, message string) *AppError {
	return newAppError(http.StatusTooManyRequests, code, message)
}

func NewInternalServerError(code, message string) *AppError {
	return newAppError(http.StatusInternalServerError, code, message)
}

// NewBadGatewayError reports a failing upstream
func NewBadGatewayError(code, message string) *AppError {
	return newAppError(http.StatusBadGateway, code, message)
}

// FromError returns the AppError in err's chain, or a generic 500 that
// keeps err as its unrendered cause
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewInternalServerError("INTERNAL_ERROR", "An unexpected error occurred").WithCause(err)
}
