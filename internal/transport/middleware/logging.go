package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
)

// sensitiveFields are request/response field names never written to logs.
// Reset tokens travel in the URL path, so paths under /reset-password are
// redacted as well.
var sensitiveFields = []string{
	"password",
	"password_hash",
	"token",
	"authorization",
	"secret",
	"session",
	"credential",
}

// Logging records one line per request with method, redacted path, status
// and latency. Bodies are not logged; login and reset payloads carry
// credentials and the filtering cost is not worth what access logs gain.
func Logging(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := middleware.GetReqID(r.Context())

			ww := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(ww, r)

			status := ww.status
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelError
			} else if status >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "http request",
				"request_id", reqID,
				"method", r.Method,
				"path", redactPath(r.URL.Path),
				"query", redactQuery(r.URL.RawQuery),
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// redactPath masks path segments that follow a reset-token prefix.
func redactPath(path string) string {
	const prefix = "/api/v1/reset-password/"
	if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
		return prefix + "[REDACTED]"
	}
	return path
}

// redactQuery masks any query parameter whose name looks sensitive.
func redactQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	pairs := strings.Split(rawQuery, "&")
	for i, pair := range pairs {
		name, _, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		lower := strings.ToLower(name)
		for _, field := range sensitiveFields {
			if strings.Contains(lower, field) {
				pairs[i] = name + "=[REDACTED]"
				break
			}
		}
	}
	return strings.Join(pairs, "&")
}

// RedactJSON masks sensitive fields in a JSON document; used by debug
// tooling, never on the hot path.
func RedactJSON(body []byte) string {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "[UNPARSEABLE]"
	}

	out, err := json.Marshal(redactValue(data))
	if err != nil {
		return "[UNPARSEABLE]"
	}
	return string(out)
}

func redactValue(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		filtered := make(map[string]interface{}, len(v))
		for key, value := range v {
			lower := strings.ToLower(key)
			masked := false
			for _, field := range sensitiveFields {
				if strings.Contains(lower, field) {
					filtered[key] = "[REDACTED]"
					masked = true
					break
				}
			}
			if !masked {
				filtered[key] = redactValue(value)
			}
		}
		return filtered
	case []interface{}:
		filtered := make([]interface{}, len(v))
		for i, item := range v {
			filtered[i] = redactValue(item)
		}
		return filtered
	default:
		return v
	}
}
