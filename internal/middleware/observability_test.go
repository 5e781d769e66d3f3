package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wasim/internal/errors"
	"wasim/internal/metrics"
	"wasim/internal/service"
	"wasim/internal/tracing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferedLogger(level logrus.Level) (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(level)
	return logger, &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestObservabilityMiddleware(t *testing.T) {
	logger, buf := bufferedLogger(logrus.InfoLevel)

	var seen *tracing.RequestInfo
	var seenErrCtx map[string]interface{}
	router := mux.NewRouter()
	router.Use(ObservabilityMiddleware(logger))
	router.HandleFunc("/v1/tools/{name}", func(w http.ResponseWriter, r *http.Request) {
		seen = tracing.GetRequestInfo(r.Context())
		seenErrCtx = errors.FromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{}}`))
	}).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/get_chat", nil)
	req.Header.Set(RequestIDHeader, "req_fixed")
	req.RemoteAddr = "192.168.1.100:12345"
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req_fixed", rec.Header().Get(RequestIDHeader))
	require.NotNil(t, seen)
	assert.Equal(t, "req_fixed", seen.RequestID)
	assert.NotEmpty(t, seen.TraceID)
	assert.NotEmpty(t, seen.SpanID)
	assert.Equal(t, "req_fixed", seenErrCtx["request_id"])

	snap := metrics.GetAllMetrics()
	counter, ok := snap.Counters["http_requests_total_method:POST_route:/v1/tools/{name}_status:404"]
	require.True(t, ok, "route template label expected")
	assert.GreaterOrEqual(t, counter.Value, 1.0)
	_, ok = snap.Timers["http_request_duration_method:POST_route:/v1/tools/{name}"]
	assert.True(t, ok)

	lines := logLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "HTTP request completed", lines[0]["msg"])
	assert.Equal(t, "warning", lines[0]["level"])
	assert.Equal(t, float64(404), lines[0][service.LogFieldStatusCode])
	assert.Equal(t, "192.168.1.100", lines[0][service.LogFieldRemoteIP])
	assert.Equal(t, float64(len(`{"error":{}}`)), lines[0][service.LogFieldSize])
}

func TestObservabilityMiddleware_GeneratesRequestID(t *testing.T) {
	logger, _ := bufferedLogger(logrus.ErrorLevel)

	handler := ObservabilityMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Regexp(t, `^req_[0-9a-f]{16}$`, rec.Header().Get(RequestIDHeader))
	_, ok := metrics.GetAllMetrics().Counters["http_requests_total_method:GET_route:unmatched_status:200"]
	assert.True(t, ok)
}

func TestVerboseLoggingMiddleware(t *testing.T) {
	for _, verbose := range []bool{true, false} {
		var got bool
		handler := VerboseLoggingMiddleware(verbose)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = service.IsVerboseLogging(r.Context())
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, verbose, got)
	}
}

func TestResponseWrapper_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapper := &responseWrapper{ResponseWriter: rec, statusCode: http.StatusOK}

	_, _ = wrapper.Write([]byte("body"))
	wrapper.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusOK, wrapper.statusCode)
	assert.EqualValues(t, 4, wrapper.responseSize)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, remote: "10.0.0.1:80", want: "203.0.113.7"},
		{name: "garbage forwarded falls through", headers: map[string]string{"X-Forwarded-For": "nonsense", "X-Real-IP": "198.51.100.2"}, remote: "10.0.0.1:80", want: "198.51.100.2"},
		{name: "ipv6 remote", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "remote without port", remote: "10.0.0.9", want: "10.0.0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(req))
		})
	}
}

func TestDetailedLoggingMiddleware(t *testing.T) {
	logger, buf := bufferedLogger(logrus.DebugLevel)
	config := DefaultDetailedLoggingConfig()
	config.LogResponseBody = true

	var handlerBody string
	handler := DetailedLoggingMiddleware(logger, config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		handlerBody = string(b)
		_, _ = w.Write([]byte(`{"message_id":"abcdef0123456789"}`))
	}))

	body := `{"recipient":"14155552671@s.whatsapp.net","message":"hello there"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/tools/send_message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer secret")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, body, handlerBody, "handler must still see the full body")

	lines := logLines(t, buf)
	require.Len(t, lines, 2)

	reqBody := lines[0]["request_body"].(map[string]interface{})
	assert.Equal(t, "*******2671@s.whatsapp.net", reqBody["recipient"])
	assert.Equal(t, "[11 chars]", reqBody["message"])
	headers := lines[0]["request_headers"].(map[string]interface{})
	assert.Equal(t, "***MASKED***", headers["Authorization"])

	respBody := lines[1]["response_body"].(map[string]interface{})
	assert.Equal(t, "********23456789", respBody["message_id"])
}

func TestDetailedLoggingMiddleware_SkipsWhenNotDebug(t *testing.T) {
	logger, buf := bufferedLogger(logrus.InfoLevel)

	handler := DetailedLoggingMiddleware(logger, DefaultDetailedLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodPost, "/v1/tools/list_chats", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Empty(t, buf.String())
}

func TestDescribeBody(t *testing.T) {
	assert.Equal(t, "***TRUNCATED*** (size > 4 bytes)", describeBody([]byte(`{"a":1}`), 4, false))
	assert.Equal(t, "[3 chars]", describeBody([]byte("abc"), 10, false))
	assert.Equal(t, map[string]interface{}{"query": "pizza"}, describeBody([]byte(`{"query":"pizza"}`), 100, true))
}
