package http

import (
	"net/http"

	"budget/internal/log"
)

// handleDonut serves the normalized category donut. min_angle is optional.
func (s *Server) handleDonut(w http.ResponseWriter, r *http.Request) {
	deg, err := ParseMinAngle(r.URL.Query(), s.dashboard.DefaultMinAngle())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	d, err := s.dashboard.Donut(r.Context(), deg)
	if err != nil {
		s.respondError(w, r, log.OpNormalize, err)
		return
	}
	OK("Ok", d).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.dashboard.Summary(r.Context())
	if err != nil {
		s.respondError(w, r, log.OpAggregate, err)
		return
	}
	OK("Ok", toSummaryDTO(sum)).Write(w)
}
