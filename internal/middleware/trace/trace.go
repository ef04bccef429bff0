package trace

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"budget/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	// RequestIDHeader is echoed on every response.
	RequestIDHeader = "X-Request-ID"
)

// Middleware handles request tracing and logging
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *log.Logger
	metrics   *metrics
}

// Metrics tracks request metrics
type Metrics struct {
	TotalRequests       int64
	AverageResponseTime int64 // in microseconds, over completed requests
}

type metrics struct {
	started     int64
	completed   int64
	totalMicros int64
}

// NewMiddleware creates a new trace middleware
func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string) *Middleware {
	return &Middleware{
		extractIP: extractIP,
		logger:    logger,
		metrics:   &metrics{},
	}
}

// Middleware assigns a request ID, then hands the request to the log
// package middleware, which puts a request-scoped logger in the context.
// Start and end of every request are logged with that logger.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	logged := log.Middleware(m.logger)(log.RequestIDMiddleware(func(r *http.Request) string {
		return GetRequestID(r.Context())
	})(m.observe(next)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := requestIDFrom(r)
		w.Header().Set(RequestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		logged.ServeHTTP(w, r.WithContext(ctx))
	})
}

// observe logs and times the request using the logger from the context.
func (m *Middleware) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		sl := log.NewStructuredLogger(log.FromContext(ctx))
		sl.LogHTTPStart(ctx, r, clientIP)

		atomic.AddInt64(&m.metrics.started, 1)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		atomic.AddInt64(&m.metrics.totalMicros, duration.Microseconds())
		atomic.AddInt64(&m.metrics.completed, 1)
		sl.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	})
}

// requestIDFrom keeps a well-formed incoming ID so callers can correlate
// logs, and otherwise generates a fresh one.
func requestIDFrom(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return GenerateRequestID()
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	return uuid.NewString()
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns current metrics. The average covers completed
// requests only.
func (m *Middleware) GetMetrics() Metrics {
	out := Metrics{TotalRequests: atomic.LoadInt64(&m.metrics.started)}
	if done := atomic.LoadInt64(&m.metrics.completed); done > 0 {
		out.AverageResponseTime = atomic.LoadInt64(&m.metrics.totalMicros) / done
	}
	return out
}
