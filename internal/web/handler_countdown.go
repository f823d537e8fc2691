package web

import (
	"errors"
	"net/http"

	"github.com/fallincloud/travelog/internal/schedule"
	"github.com/fallincloud/travelog/internal/service"
)

// handleCountdowns serves the polling endpoint behind the live departure
// timers on the travel detail page.
func (s *Server) handleCountdowns(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid travel id",
		})
		return
	}

	countdowns, err := s.travels.Countdowns(r.Context(), id, s.now())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   "travel not found",
			})
			return
		}
		s.logger.Error("compute countdowns failed", "travel_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "failed to compute countdowns",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"countdowns":     countdowns,
		"pollIntervalMs": schedule.PollInterval.Milliseconds(),
	})
}
