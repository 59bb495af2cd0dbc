package store

import "net/http"

// Error is a persistence failure the service layer is expected to translate.
// Status is the HTTP status it maps to if it reaches the API untranslated.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same status, so ErrNotFound.WithMessage(...)
// still satisfies errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Status == e.Status
}

// HTTPCode returns the HTTP status associated with this error.
func (e *Error) HTTPCode() int { return e.Status }

// WithMessage returns a copy of e with msg.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Status: e.Status, Message: msg, Err: e.Err}
}

// Sentinel errors.
var (
	// ErrNotFound is returned by lookups and owner walks for a missing row.
	ErrNotFound = &Error{Status: http.StatusNotFound, Message: "resource not found"}

	// ErrAlreadyExists is returned when a unique constraint rejects an insert.
	ErrAlreadyExists = &Error{Status: http.StatusConflict, Message: "resource already exists"}
)
