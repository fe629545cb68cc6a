package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/insight-pulse/pkg/logger"
)

const (
	redacted = "[FILTERED]"
	// maxLoggedBody caps how much of a request or response body is logged.
	maxLoggedBody = 4 << 10
)

// redactedKeys are JSON keys and header names whose values never reach the
// log. Matching is exact and case-insensitive.
var redactedKeys = map[string]struct{}{
	"password":         {},
	"hashed_password":  {},
	"sendgrid_api_key": {},
	"api_key":          {},
	"authorization":    {},
	"cookie":           {},
	"set-cookie":       {},
}

// quietPrefixes are paths whose bodies are static documents.
var quietPrefixes = []string{"/swagger/", "/openapi.yml"}

func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := logger.FromOr(r.Context(), base)
			quiet := isQuiet(r.URL.Path)

			logRequest(log, r, quiet)

			ww := &responseWriter{ResponseWriter: w, capture: !quiet}
			next.ServeHTTP(ww, r)

			logResponse(log, r, ww, time.Since(start))
		})
	}
}

func isQuiet(path string) bool {
	for _, p := range quietPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// responseWriter records the status and size, and keeps the head of the
// body for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
	capture    bool
	head       bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.statusCode == 0 {
		rw.statusCode = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	if rw.capture && rw.head.Len() < maxLoggedBody {
		n := maxLoggedBody - rw.head.Len()
		if n > len(b) {
			n = len(b)
		}
		rw.head.Write(b[:n])
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *responseWriter) status() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

func logRequest(log *slog.Logger, r *http.Request, quiet bool) {
	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"query", r.URL.RawQuery,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
		"headers", redactHeaders(r.Header),
	}

	if !quiet && r.Body != nil && r.Body != http.NoBody {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		attrs = append(attrs, "body", redactBody(body))
	}

	log.InfoContext(r.Context(), "incoming request", attrs...)
}

func logResponse(log *slog.Logger, r *http.Request, rw *responseWriter, duration time.Duration) {
	status := rw.status()

	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", status,
		"duration_ms", duration.Milliseconds(),
		"response_size", rw.size,
	}
	if rw.capture {
		attrs = append(attrs, "body", redactBody(rw.head.Bytes()))
	}

	log.Log(r.Context(), level, "response", attrs...)
}

func isRedacted(name string) bool {
	_, ok := redactedKeys[strings.ToLower(name)]
	return ok
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isRedacted(name) {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// redactBody masks redacted keys anywhere in a JSON body. Bodies that are
// not JSON are logged only when they mention none of those keys.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		lower := strings.ToLower(string(body))
		for key := range redactedKeys {
			if strings.Contains(lower, key) {
				return redacted
			}
		}
		return truncate(string(body))
	}

	out, err := json.Marshal(redactJSON(doc))
	if err != nil {
		return redacted
	}
	return truncate(string(out))
}

func redactJSON(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if isRedacted(k) {
				out[k] = redacted
				continue
			}
			out[k] = redactJSON(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = redactJSON(item)
		}
		return out
	default:
		return t
	}
}

func truncate(s string) string {
	if len(s) <= maxLoggedBody {
		return s
	}
	return s[:maxLoggedBody] + "...(truncated)"
}
