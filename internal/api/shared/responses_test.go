package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/scry-analytics/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRequest returns a GET request carrying a trace ID and a captured logger.
func newRequest(t *testing.T) (*http.Request, *logger.TestLogBuffer) {
	t.Helper()

	l, buf := logger.NewTestLogger(t)
	ctx := logger.WithTraceID(logger.WithLogger(context.Background(), l), "test-trace-id")
	return httptest.NewRequest(http.MethodGet, "/test", nil).WithContext(ctx), buf
}

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		status       int
		data         interface{}
		expectedBody string
	}{
		{
			name:         "object",
			status:       http.StatusOK,
			data:         map[string]interface{}{"message": "success", "data": 123},
			expectedBody: `{"data":123,"message":"success"}`,
		},
		{
			name:         "empty object",
			status:       http.StatusCreated,
			data:         map[string]interface{}{},
			expectedBody: `{}`,
		},
		{
			name:         "nil",
			status:       http.StatusOK,
			data:         nil,
			expectedBody: `null`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			RespondWithJSON(w, req, tc.status, tc.data)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedBody+"\n", w.Body.String())
		})
	}
}

func TestRespondWithJSONEncodingError(t *testing.T) {
	t.Parallel()

	req, logs := newRequest(t)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusOK, map[string]interface{}{"bad": make(chan int)})

	assert.Equal(t, http.StatusOK, w.Code)
	logger.AssertLogContains(t, logs, "failed to encode JSON response")
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	t.Run("with trace ID", func(t *testing.T) {
		req, _ := newRequest(t)
		w := httptest.NewRecorder()

		RespondWithError(w, req, http.StatusBadRequest, "Invalid request")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Invalid request", response.Error)
		assert.Equal(t, "test-trace-id", response.TraceID)
	})

	t.Run("without trace ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		RespondWithError(w, req, http.StatusUnauthorized, "Unauthorized")

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Unauthorized", response.Error)
		assert.Empty(t, response.TraceID)
	})
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		statusCode    int
		message       string
		err           error
		expectedLevel string
		elevate       bool
	}{
		{
			name:          "server error",
			statusCode:    http.StatusInternalServerError,
			message:       "Internal server error",
			err:           errors.New("database connection failed"),
			expectedLevel: "ERROR",
		},
		{
			name:          "client error",
			statusCode:    http.StatusBadRequest,
			message:       "Bad request",
			err:           errors.New("invalid input"),
			expectedLevel: "DEBUG",
		},
		{
			name:          "elevated client error",
			statusCode:    http.StatusUnauthorized,
			message:       "Invalid token",
			err:           errors.New("signature mismatch"),
			expectedLevel: "WARN",
			elevate:       true,
		},
		{
			name:          "rate limited",
			statusCode:    http.StatusTooManyRequests,
			message:       "Too many requests",
			err:           errors.New("rate limit exceeded"),
			expectedLevel: "WARN",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req, logs := newRequest(t)
			w := httptest.NewRecorder()

			var opts []ResponseOption
			if tc.elevate {
				opts = append(opts, WithElevatedLogLevel())
			}
			RespondWithErrorAndLog(w, req, tc.statusCode, tc.message, tc.err, opts...)

			assert.Equal(t, tc.statusCode, w.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tc.message, response.Error)
			assert.Equal(t, "test-trace-id", response.TraceID)
			assert.NotContains(t, w.Body.String(), tc.err.Error(), "raw errors never reach clients")

			entries, err := logs.Entries()
			require.NoError(t, err)
			require.NotEmpty(t, entries)
			last := entries[len(entries)-1]
			assert.Equal(t, tc.expectedLevel, last["level"])
			assert.Equal(t, "API error response", last["msg"])
			assert.Equal(t, "test-trace-id", last["trace_id"])
			assert.Equal(t, "*errors.errorString", last["error_type"])
		})
	}
}

func TestRespondWithErrorAndLog_RedactsError(t *testing.T) {
	t.Parallel()

	req, logs := newRequest(t)
	w := httptest.NewRecorder()

	err := errors.New("dial postgres://scry:hunter2@db:5432/scry failed")
	RespondWithErrorAndLog(w, req, http.StatusInternalServerError, "An unexpected error occurred", err)

	assert.NotContains(t, logs.String(), "hunter2")
	logger.AssertLogContains(t, logs, "[REDACTED_CREDENTIAL]")
}
