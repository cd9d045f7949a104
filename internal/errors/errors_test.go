package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewAppValidationError("countries must not be empty"),
			want: "[VALIDATION] countries must not be empty",
		},
		{
			name: "with cause",
			err:  NewParsingError("failed to open dataset", os.ErrNotExist),
			want: "[PARSING] failed to open dataset: file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewParsingError("failed to open dataset", os.ErrNotExist)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	wrapped := fmt.Errorf("load: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeParsing, appErr.Type)
}

func TestIsType(t *testing.T) {
	parse := NewParsingError("bad date", nil)
	nested := NewStorageError("export failed", NewColumnNotFoundError("iso_code"))

	assert.True(t, IsType(parse, ErrTypeParsing))
	assert.True(t, IsType(fmt.Errorf("stage: %w", parse), ErrTypeParsing))
	assert.False(t, IsType(parse, ErrTypeNotFound))
	assert.True(t, IsType(nested, ErrTypeStorage))
	assert.True(t, IsType(nested, ErrTypeNotFound))
	assert.False(t, IsType(errors.New("plain"), ErrTypeParsing))
	assert.False(t, IsType(nil, ErrTypeParsing))
}

func TestNewColumnNotFoundError(t *testing.T) {
	err := NewColumnNotFoundError("total_deaths")

	assert.Equal(t, ErrTypeNotFound, err.Type)
	assert.Contains(t, err.Error(), `column "total_deaths" not found`)
	assert.Equal(t, "total_deaths", err.Context["column"])
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus())
}

func TestAppError_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, NewParsingError("x", nil).HTTPStatus())
	assert.Equal(t, http.StatusUnprocessableEntity, NewAppValidationError("x").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, NewRenderError("x", nil).HTTPStatus())
}

func TestErrorHandler_HandleError(t *testing.T) {
	h := NewErrorHandler(slog.Default(), false)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "api not found",
			err:        NotFoundError("chart"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "report not ready",
			err:        ErrReportNotReady,
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeReportNotReady,
		},
		{
			name:       "parsing app error",
			err:        NewParsingError("malformed date", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataParsing,
		},
		{
			name:       "context cancelled",
			err:        context.Canceled,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/summary", body["instance"])
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	h := NewErrorHandler(nil, false)
	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestErrorHandler_Middleware(t *testing.T) {
	h := NewErrorHandler(slog.Default(), true)
	panicky := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("renderer exploded")
	}))

	rec := httptest.NewRecorder()
	panicky.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/charts/x.png", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "renderer exploded", body["panic"])
	assert.NotEmpty(t, body["stack"])
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/x").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "abc", body["trace_id"])
	assert.Equal(t, float64(404), body["status"])
	_, hasDetail := body["detail"]
	assert.False(t, hasDetail)
}
