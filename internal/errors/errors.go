// Package errors defines the coded errors that services return and the API
// renders. Every code maps to exactly one HTTP status.
//
// Services construct errors with the helpers below; callers match them with
// Is against the Err* sentinels, which compare by code only:
//
//	if errors.Is(err, errors.ErrNotFound) { ... }
package errors

import (
	"errors"
	"net/http"
)

// Is and As are re-exported so callers need a single errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Code is a machine-readable error code.
type Code string

// Error codes.
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeValidation         Code = "VALIDATION"
	CodeEmailTaken         Code = "EMAIL_TAKEN"
	CodeInvalidResetToken  Code = "INVALID_RESET_TOKEN"
	CodeInternal           Code = "INTERNAL"
)

// codeStatus is the HTTP status of each code. No code maps to 403:
// an entity owned by someone else is reported as CodeNotFound.
var codeStatus = map[Code]int{
	CodeNotFound:           http.StatusNotFound,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeValidation:         http.StatusUnprocessableEntity,
	CodeEmailTaken:         http.StatusBadRequest,
	CodeInvalidResetToken:  http.StatusBadRequest,
	CodeInternal:           http.StatusInternalServerError,
}

// HTTPStatus returns the status for c; unknown codes are 500.
func (c Code) HTTPStatus() int {
	if status, ok := codeStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a coded domain error. Details carries structured extras such as
// the per-field messages of a validation failure.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HTTPStatus returns the status for the error's code.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy of e wrapping err. The cause is for logs and
// errors.Is; it never reaches a response body.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// Sentinels for errors.Is.
var (
	ErrNotFound           = New(CodeNotFound, "not found")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrInvalidCredentials = New(CodeInvalidCredentials, "invalid credentials")
	ErrValidation         = New(CodeValidation, "validation error")
	ErrEmailTaken         = New(CodeEmailTaken, "email already registered")
	ErrInvalidResetToken  = New(CodeInvalidResetToken, "invalid or expired reset token")
	ErrInternal           = New(CodeInternal, "internal error")
)

// New creates an error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// NotFound creates a not found error, e.g. NotFound("Book not found").
func NotFound(msg string) *Error { return New(CodeNotFound, msg) }

// Unauthorized creates an authentication error.
func Unauthorized(msg string) *Error { return New(CodeUnauthorized, msg) }

// InvalidCredentials creates a failed-login error.
func InvalidCredentials(msg string) *Error { return New(CodeInvalidCredentials, msg) }

// Validation creates a validation error without field details.
func Validation(msg string) *Error { return New(CodeValidation, msg) }

// ValidationWithDetails creates a validation error whose details map fields to messages.
func ValidationWithDetails(msg string, details any) *Error {
	return New(CodeValidation, msg).WithDetails(details)
}

// EmailTaken creates a duplicate registration error.
func EmailTaken(msg string) *Error { return New(CodeEmailTaken, msg) }

// InvalidResetToken creates an unusable reset token error.
func InvalidResetToken(msg string) *Error { return New(CodeInvalidResetToken, msg) }

// Internal creates an internal error.
func Internal(msg string) *Error { return New(CodeInternal, msg) }

// Wrap wraps err with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return New(code, msg).WithCause(err)
}
