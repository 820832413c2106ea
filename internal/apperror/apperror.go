package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AppError is an anticipated, client-attributable failure that is safe to
// describe in a response. Anything that does not carry the Operational flag
// is treated as a programming fault by the central error handler and never
// detailed to the client.
type AppError struct {
	StatusCode  int
	Message     string
	Operational bool
	Err         error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status returns the envelope status for the error's status code:
// "fail" for 4xx, "error" otherwise.
func (e *AppError) Status() string {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return "fail"
	}
	return "error"
}

// New creates an operational error with the given status code.
func New(statusCode int, message string) *AppError {
	return &AppError{
		StatusCode:  statusCode,
		Message:     message,
		Operational: true,
	}
}

// BadRequest creates a 400 error.
func BadRequest(message string) *AppError {
	return New(fiber.StatusBadRequest, message)
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return New(fiber.StatusUnauthorized, message)
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return New(fiber.StatusForbidden, message)
}

// NotFound creates a 404 error.
func NotFound(message string) *AppError {
	return New(fiber.StatusNotFound, message)
}

// Internal wraps an unexpected error. It is deliberately not operational:
// the client sees a generic message.
func Internal(err error) *AppError {
	return &AppError{
		StatusCode: fiber.StatusInternalServerError,
		Message:    "Something went wrong!",
		Err:        err,
	}
}

// As extracts an *AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
