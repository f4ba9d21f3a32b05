package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner/internal/common/sse"
)

type TestLogger struct {
	t *testing.T
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}

type fakeInvoker struct {
	payloads []string
	result   map[string]interface{}
}

func (f *fakeInvoker) InvokePayload(ctx context.Context, payload []byte) map[string]interface{} {
	f.payloads = append(f.payloads, string(payload))
	return f.result
}

func newTestServer(t *testing.T, invoker Invoker, ready ReadyFunc) http.Handler {
	return New(&Config{Address: ":0"}, invoker, ready, &TestLogger{t: t}).Handler()
}

// ===== Invocations =====

func TestInvocations_JSON(t *testing.T) {
	invoker := &fakeInvoker{result: map[string]interface{}{"best_trip_recommendation": "Go to Goa"}}
	handler := newTestServer(t, invoker, nil)

	req := httptest.NewRequest(http.MethodPost, "/invocations", strings.NewReader(`{"prompt":"Goa"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"best_trip_recommendation":"Go to Goa"}`, rec.Body.String())
	assert.Equal(t, []string{`{"prompt":"Goa"}`}, invoker.payloads)
}

func TestInvocations_EventStream(t *testing.T) {
	invoker := &fakeInvoker{result: map[string]interface{}{"destinations": []interface{}{"Pune"}}}
	handler := newTestServer(t, invoker, nil)

	req := httptest.NewRequest(http.MethodPost, "/invocations", strings.NewReader(`{"mode":"wiki"}`))
	req.Header.Set("Accept", "text/event-stream")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "data: "))
	assert.True(t, strings.HasSuffix(rec.Body.String(), "\n\n"))

	decoded := sse.DecodeString(rec.Body.String(), sse.NewDataBlob())
	assert.Equal(t, map[string]any{"destinations": []any{"Pune"}}, decoded)
}

func TestInvocations_ErrorIsStillOK(t *testing.T) {
	handler := newTestServer(t, &fakeInvoker{result: map[string]interface{}{"error": "Agent timeout: read"}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/invocations", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"error":"Agent timeout: read"}`, rec.Body.String())
}

func TestInvocations_WrongMethod(t *testing.T) {
	handler := newTestServer(t, &fakeInvoker{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/invocations", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ===== Probes =====

func TestPing(t *testing.T) {
	handler := newTestServer(t, &fakeInvoker{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Healthy", body["status"])
}

func TestReady(t *testing.T) {
	handler := newTestServer(t, &fakeInvoker{}, func(ctx context.Context) error { return errors.New("broker down") })

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "broker down")

	handler = newTestServer(t, &fakeInvoker{}, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	handler := newTestServer(t, &fakeInvoker{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestServer(t, &fakeInvoker{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/invocations", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
