// Package webui provides the web-based user interface for GenAI Studio.
// This file contains the LoggingMiddleware molecule for HTTP request logging.
package webui

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"genai_studio/logging"
)

// LoggingMiddleware logs every HTTP request with method, path, status
// code, duration, and client address.
//
// Thread-safe for concurrent HTTP requests.
type LoggingMiddleware struct {
	logger    *logging.Logger
	skipPaths map[string]bool
}

// NewLoggingMiddleware creates the middleware. Requests to skipPaths
// (health probes, tip polling) are served without a log line.
func NewLoggingMiddleware(logger *logging.Logger, skipPaths []string) *LoggingMiddleware {
	if logger == nil {
		logger = logging.NewNop()
	}

	skip := make(map[string]bool, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = true
	}

	return &LoggingMiddleware{
		logger:    logger.Named("http"),
		skipPaths: skip,
	}
}

// Handler wraps next with request logging.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.Int64("bytes", wrapped.bytesWritten),
			zap.String("remote_addr", clientIP(r)),
		}

		switch {
		case wrapped.statusCode >= 500:
			m.logger.Error("request failed", fields...)
		case wrapped.statusCode >= 400:
			m.logger.Warn("request rejected", fields...)
		default:
			m.logger.Info("request served", fields...)
		}
	})
}

// responseWriterWrapper captures the status code and body size.
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

// Flush implements http.Flusher if the underlying writer supports it.
func (w *responseWriterWrapper) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// clientIP extracts the client address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
