package adapthttp

import (
	"fmt"
	"net/http"
	"strconv"
)

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	days := 14
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid days value %q", raw))
			return
		}
		days = parsed
	}

	points, err := s.stats.GetDaily(r.Context(), currentUser(r).ID, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleSummaryStats(w http.ResponseWriter, r *http.Request) {
	summary, err := s.stats.GetSummary(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
