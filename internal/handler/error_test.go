package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemhq/tandem/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestErrorResponseMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation",
			err:        domain.Invalid("test.op", "name is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "not found",
			err:        domain.NotFound("test.op", "employee", "abc"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "seat limit",
			err:        domain.SeatLimitExceeded("test.op", 10, 10),
			wantStatus: http.StatusPaymentRequired,
			wantCode:   "PAYMENT_REQUIRED",
		},
		{
			name:       "gone",
			err:        domain.Gone("test.op", "link expired"),
			wantStatus: http.StatusGone,
			wantCode:   "GONE",
		},
		{
			name:       "unknown error defaults to internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/test", nil)

			ErrorResponse(rec, req, testLogger(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			body := decodeErrorBody(t, rec)
			assert.Equal(t, tt.wantCode, body["errorCode"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestErrorResponseHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)

	wrapped := domain.Internal(errors.New("pq: connection refused"), "test.op", "something went wrong")
	ErrorResponse(rec, req, testLogger(), wrapped)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestValidationErrorResponseIncludesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/test", nil)

	ve := domain.NewValidationError("test.op", "email", "must be a valid email address")
	ValidationErrorResponse(rec, req, testLogger(), ve)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body["errorCode"])
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "must be a valid email address", fields["email"])
}

func TestValidationErrorResponseFallsBackForPlainErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/test", nil)

	ValidationErrorResponse(rec, req, testLogger(), domain.Conflict("test.op", "email already registered"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, "CONFLICT", body["errorCode"])
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/test", strings.NewReader(`{"nope":1}`))

	var dst struct {
		Name string `json:"name"`
	}
	err := decodeJSON(rec, req, &dst)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}
