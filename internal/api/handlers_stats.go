package api

import (
	"net/http"
)

func (s *Server) handleAutomationStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "automation stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stats":       s.stats.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
