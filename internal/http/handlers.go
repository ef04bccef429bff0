package http

import (
	"context"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check and reports middleware counters.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	OK("ok", map[string]any{
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
		"uptime":              time.Since(s.startedAt).Round(time.Second).String(),
		"requests":            s.traceMiddleware.GetMetrics().TotalRequests,
		"rate_limited":        s.rateLimiter.GetMetrics().TotalHits,
		"suspicious_requests": s.securityDetector.GetMetrics().SuspiciousRequests,
	}).Write(w)
}

// handleReady checks that the database answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"storage": "ok"}
	if s.storage == nil {
		checks["storage"] = "not_configured"
	} else if err := s.storage.Ping(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Readiness check failed", "error", err)
		checks["storage"] = "failed"
	}

	if checks["storage"] != "ok" {
		ErrorResponse(http.StatusServiceUnavailable, "not_ready").Data(checks).Write(w)
		return
	}
	OK("ready", checks).Write(w)
}
