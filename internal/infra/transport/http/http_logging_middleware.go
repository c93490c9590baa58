package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/quewww/blog/internal/infra/logging"
)

// ResponseRecorder captures the status and size of a response on its way out.
type ResponseRecorder struct {
	http.ResponseWriter
	Status int
	Bytes  int

	written bool
}

// WriteHeader records the first status code written.
func (rec *ResponseRecorder) WriteHeader(code int) {
	if !rec.written {
		rec.Status, rec.written = code, true
	}

	rec.ResponseWriter.WriteHeader(code)
}

func (rec *ResponseRecorder) Write(b []byte) (int, error) {
	if !rec.written {
		rec.Status, rec.written = http.StatusOK, true
	}

	n, err := rec.ResponseWriter.Write(b)
	rec.Bytes += n

	if err != nil {
		return n, fmt.Errorf("write: %w", err)
	}

	return n, nil
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rec *ResponseRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// LoggingMiddleware logs each request at debug level and its response at a
// level derived from the status code.
func LoggingMiddleware(next http.Handler, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		req := logging.GroupValue(
			logging.String("method", r.Method),
			logging.String("uri", r.RequestURI),
		)

		log.DebugContext(r.Context(), "request", "http", req)

		rec := &ResponseRecorder{ResponseWriter: w, Status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Log(r.Context(), statusLevel(rec.Status), "response", "http", req, logging.Group("response",
			"status", rec.Status,
			"bytes", rec.Bytes,
			"duration", time.Since(start),
		))
	})
}

func statusLevel(status int) logging.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return logging.LevelError
	case status >= http.StatusBadRequest:
		return logging.LevelWarn
	default:
		return logging.LevelInfo
	}
}
