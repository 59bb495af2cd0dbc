// Package response writes JSON bodies and the shared error shape for handlers
// that sit outside the huma operation pipeline.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/notekeeper/notekeeper-server/internal/errors"
	"github.com/notekeeper/notekeeper-server/internal/store"
)

const msgInternal = "internal server error"

// ErrorBody is the JSON shape of every error response. Detail repeats
// Message for clients that read a FastAPI-style "detail" field.
type ErrorBody struct {
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Detail  string `json:"detail" doc:"Same as message"`
	Details any    `json:"details,omitempty" doc:"Per-field validation messages"`
}

// NewErrorBody builds an ErrorBody.
func NewErrorBody(code domainerrors.Code, message string, details any) ErrorBody {
	return ErrorBody{
		Code:    string(code),
		Message: message,
		Detail:  message,
		Details: details,
	}
}

// Classify maps err to a status code and body. It reports false when err
// is neither a domain error nor a classified store error; callers treat
// that as an internal error.
func Classify(err error) (int, ErrorBody, bool) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		if domainErr.Code == domainerrors.CodeInternal {
			return http.StatusInternalServerError, NewErrorBody(domainerrors.CodeInternal, msgInternal, nil), true
		}
		return domainErr.HTTPStatus(), NewErrorBody(domainErr.Code, domainErr.Message, domainErr.Details), true
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) && storeErr.HTTPCode() == http.StatusNotFound {
		return http.StatusNotFound, NewErrorBody(domainerrors.CodeNotFound, storeErr.Message, nil), true
	}

	return 0, ErrorBody{}, false
}

// Internal returns the body used for every unclassified failure.
func Internal() ErrorBody {
	return NewErrorBody(domainerrors.CodeInternal, msgInternal, nil)
}

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Success writes a 200 response.
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// NoContent writes a 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes err using the shared error shape. Unclassified errors and
// internal errors become a 500 whose cause is logged, never returned.
func Error(w http.ResponseWriter, err error, logger *slog.Logger) {
	status, body, ok := Classify(err)
	if !ok {
		status, body = http.StatusInternalServerError, Internal()
	}
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	JSON(w, status, body, logger)
}
