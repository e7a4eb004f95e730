package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, JSONError) {
	t.Helper()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(w, r, discardLogger(), err)
	})
	req := httptest.NewRequest("POST", "/api/shops/1/shelves", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body JSONError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

// =============================================================================
// Error Response Tests - Security Focus
// =============================================================================

func TestValidationErrorResponse_DoesNotExposeOperationName(t *testing.T) {
	ve := domain.NewValidationError("ShelfService.Create", "name", "Shelf name is required")

	rec, body := serveError(t, ve)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "ShelfService")
	assert.Equal(t, domain.EINVALID, body.Error.Code)
	assert.Equal(t, "Shelf name is required", body.Error.Fields["name"])
}

func TestErrorResponse_InternalErrorHidesDetails(t *testing.T) {
	dbErr := &mockDatabaseError{message: "connection to 192.168.1.100:5432 refused"}
	internalErr := domain.Internal(dbErr, "ShelfService.Create", "Failed to create shelf")

	rec, body := serveError(t, internalErr)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	for _, leak := range []string{"192.168", "5432", "ShelfService"} {
		assert.NotContains(t, rec.Body.String(), leak)
	}
	assert.Contains(t, body.Error.Message, "internal error")
}

func TestErrorResponse_UnwrappedErrorReturnsGeneric(t *testing.T) {
	rawErr := &mockDatabaseError{message: "FATAL: password authentication failed for user \"postgres\""}

	rec, body := serveError(t, rawErr)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "FATAL")
	assert.NotContains(t, rec.Body.String(), "postgres")
	assert.Equal(t, domain.EINTERNAL, body.Error.Code)
}

func TestErrorResponse_QuotaMessageIsVerbatim(t *testing.T) {
	err := domain.QuotaExceeded("ItemService.Create", domain.QuotaItems, 3, "Free")

	rec, body := serveError(t, err)

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, domain.EQUOTA, body.Error.Code)
	assert.Equal(t, err.Message, body.Error.Message)
	assert.True(t, strings.Contains(body.Error.Message, "3 items per shelf"))
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EQUOTA, http.StatusPaymentRequired},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"unknown", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCodeToHTTPStatus(tt.code))
		})
	}
}

// mockDatabaseError simulates a database error for testing
type mockDatabaseError struct {
	message string
}

func (e *mockDatabaseError) Error() string {
	return e.message
}
