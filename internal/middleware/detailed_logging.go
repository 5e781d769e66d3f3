package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"wasim/internal/privacy"
	"wasim/internal/service"
	"wasim/internal/tracing"

	"github.com/sirupsen/logrus"
)

// DetailedLoggingConfig controls what gets logged
type DetailedLoggingConfig struct {
	LogRequestHeaders bool     `json:"log_request_headers"`
	LogRequestBody    bool     `json:"log_request_body"`
	LogResponseBody   bool     `json:"log_response_body"`
	MaxBodySize       int      `json:"max_body_size"`
	SensitiveHeaders  []string `json:"sensitive_headers"`
	SkipEndpoints     []string `json:"skip_endpoints"`
}

// DefaultDetailedLoggingConfig logs tool arguments but not results
func DefaultDetailedLoggingConfig() DetailedLoggingConfig {
	return DetailedLoggingConfig{
		LogRequestHeaders: true,
		LogRequestBody:    true,
		LogResponseBody:   false,
		MaxBodySize:       4096,
		SensitiveHeaders: []string{
			"authorization", "x-api-key", "cookie", "set-cookie",
		},
		SkipEndpoints: []string{"/metrics", "/health"},
	}
}

// DetailedLoggingMiddleware logs tool call arguments and results at debug level. JSON
// object bodies have their identifier and content fields masked unless the request is
// verbose.
func DetailedLoggingMiddleware(logger *logrus.Logger, config DetailedLoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !logger.IsLevelEnabled(logrus.DebugLevel) {
				next.ServeHTTP(w, r)
				return
			}
			for _, skip := range config.SkipEndpoints {
				if r.URL.Path == skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			requestID := tracing.GetRequestID(r.Context())
			verbose := service.IsVerboseLogging(r.Context())

			fields := logrus.Fields{
				service.LogFieldRequestID: requestID,
				service.LogFieldMethod:    r.Method,
				service.LogFieldURL:       r.URL.String(),
				"content_length":          r.ContentLength,
			}
			if config.LogRequestHeaders {
				fields["request_headers"] = maskHeaders(r.Header, config.SensitiveHeaders)
			}
			if config.LogRequestBody && isJSON(r.Header.Get("Content-Type")) && r.Body != nil {
				body, err := io.ReadAll(io.LimitReader(r.Body, int64(config.MaxBodySize)+1))
				rest := r.Body
				r.Body = struct {
					io.Reader
					io.Closer
				}{io.MultiReader(bytes.NewReader(body), rest), rest}
				if err == nil {
					fields["request_body"] = describeBody(body, config.MaxBodySize, verbose)
				}
			}
			logger.WithFields(fields).Debug("Detailed request logging")

			if !config.LogResponseBody {
				next.ServeHTTP(w, r)
				return
			}

			capture := &responseCaptureWrapper{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(capture, r)

			logger.WithFields(logrus.Fields{
				service.LogFieldRequestID:  requestID,
				service.LogFieldStatusCode: capture.statusCode,
				"response_body":            describeBody(capture.body.Bytes(), config.MaxBodySize, verbose),
			}).Debug("Detailed response logging")
		})
	}
}

// describeBody renders a body for the log. Oversized bodies are summarized by size.
func describeBody(body []byte, maxSize int, verbose bool) interface{} {
	if len(body) > maxSize {
		return fmt.Sprintf("***TRUNCATED*** (size > %d bytes)", maxSize)
	}
	var object map[string]interface{}
	if err := json.Unmarshal(body, &object); err != nil {
		return privacy.MaskText(string(body))
	}
	if verbose {
		return object
	}
	return privacy.MaskSensitiveFields(object)
}

func maskHeaders(header http.Header, sensitive []string) map[string]string {
	headers := make(map[string]string, len(header))
	for name, values := range header {
		if isSensitiveHeader(name, sensitive) {
			headers[name] = "***MASKED***"
		} else {
			headers[name] = strings.Join(values, ", ")
		}
	}
	return headers
}

type responseCaptureWrapper struct {
	http.ResponseWriter
	body       bytes.Buffer
	statusCode int
}

func (rc *responseCaptureWrapper) Write(data []byte) (int, error) {
	n, err := rc.ResponseWriter.Write(data)
	rc.body.Write(data[:n])
	return n, err
}

func (rc *responseCaptureWrapper) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func isSensitiveHeader(headerName string, sensitiveHeaders []string) bool {
	for _, sensitive := range sensitiveHeaders {
		if strings.EqualFold(sensitive, headerName) {
			return true
		}
	}
	return false
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/json")
}
