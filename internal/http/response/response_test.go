package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/notekeeper/notekeeper-server/internal/errors"
	"github.com/notekeeper/notekeeper-server/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, []string{"a", "b"}, discardLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var got []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestError_Shapes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", domainerrors.NotFound("Book not found"), 404, "NOT_FOUND", "Book not found"},
		{"wrapped domain", errors.Join(errors.New("ctx"), domainerrors.EmailTaken("Email already registered")), 400, "EMAIL_TAKEN", "Email already registered"},
		{"credentials", domainerrors.InvalidCredentials("Incorrect email or password"), 401, "INVALID_CREDENTIALS", "Incorrect email or password"},
		{"store not found", store.ErrNotFound, 404, "NOT_FOUND", "resource not found"},
		{"store conflict", store.ErrAlreadyExists, 500, "INTERNAL", "internal server error"},
		{"plain error", errors.New("disk on fire"), 500, "INTERNAL", "internal server error"},
		{"internal domain", domainerrors.Internal("secret detail"), 500, "INTERNAL", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			Error(w, tt.err, discardLogger())

			assert.Equal(t, tt.wantStatus, w.Code)

			var body ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Equal(t, body.Message, body.Detail)
		})
	}
}

func TestError_ValidationDetails(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, domainerrors.ValidationWithDetails("validation failed", map[string]string{"email": "is required"}), discardLogger())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION", body["code"])
	assert.Equal(t, map[string]any{"email": "is required"}, body["details"])
}
