package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monicajeon28/cruiseguide-sub010/pkg/logger"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/types"
)

func newTestLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Options{ServiceName: "api-test", Output: buf})
}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	var logs bytes.Buffer
	logg := newTestLogger(&logs)
	handler := RequestID(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logg.Info(r.Context(), "inside")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Contains(t, logs.String(), generated)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestLoggingRecordsStatus(t *testing.T) {
	var logs bytes.Buffer
	handler := Logging(newTestLogger(&logs))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/sales/1/ledger/sync", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, logs.String(), "request.complete")
	assert.Contains(t, logs.String(), `"status":202`)
	assert.Contains(t, logs.String(), `"path":"/api/v1/admin/sales/1/ledger/sync"`)
}

func TestLoggingDefaultsToOK(t *testing.T) {
	var logs bytes.Buffer
	handler := Logging(newTestLogger(&logs))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Contains(t, logs.String(), `"status":200`)
}

func TestRecovererWritesInternalError(t *testing.T) {
	var logs bytes.Buffer
	handler := Recoverer(newTestLogger(&logs))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("calculator exploded")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "calculator")
	assert.Contains(t, logs.String(), "panic.recovered")
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	handler := CORS([]string{"https://admin.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
