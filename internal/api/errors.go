package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/notekeeper/notekeeper-server/internal/errors"
	"github.com/notekeeper/notekeeper-server/internal/http/response"
)

// APIError is a custom error type that implements huma.StatusError.
// It renders domain errors, store errors and huma's own request errors
// with the same JSON shape.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status int
	response.ErrorBody
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
// Unclassified causes are logged and replaced with a generic 500.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if s, body, ok := response.Classify(err); ok {
				return &APIError{status: s, ErrorBody: body}
			}
		}

		if details := fieldDetails(errs); len(details) > 0 || status == http.StatusBadRequest {
			// Huma rejects malformed and schema-invalid bodies before a
			// handler runs; both surface as validation failures.
			var d any
			if len(details) > 0 {
				d = details
			}
			return &APIError{
				status:    http.StatusUnprocessableEntity,
				ErrorBody: response.NewErrorBody(domainerrors.CodeValidation, message, d),
			}
		}

		if status >= http.StatusInternalServerError {
			if logger != nil {
				logger.Error("Unhandled error", "status", status, "message", message, "error", errors.Join(errs...))
			}
			return &APIError{status: http.StatusInternalServerError, ErrorBody: response.Internal()}
		}

		return &APIError{
			status:    status,
			ErrorBody: response.NewErrorBody(statusToCode(status), message, nil),
		}
	}
}

// fieldDetails flattens huma's per-location errors into a field -> message map.
func fieldDetails(errs []error) map[string]string {
	details := make(map[string]string)
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if !errors.As(err, &detail) {
			continue
		}
		field := detail.Location
		for _, prefix := range []string{"body.", "query.", "path.", "header."} {
			field = strings.TrimPrefix(field, prefix)
		}
		if field == "" {
			field = "body"
		}
		if _, seen := details[field]; !seen {
			details[field] = detail.Message
		}
	}
	return details
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) domainerrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domainerrors.CodeValidation
	case http.StatusUnauthorized:
		return domainerrors.CodeUnauthorized
	case http.StatusNotFound:
		return domainerrors.CodeNotFound
	}
	if status < http.StatusInternalServerError {
		return domainerrors.CodeValidation
	}
	return domainerrors.CodeInternal
}
