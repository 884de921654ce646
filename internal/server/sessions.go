package server

import (
	"net/http"
	"strconv"

	"github.com/northstar-io/northstar/internal/analytics"
	"github.com/northstar-io/northstar/internal/store"
	"github.com/northstar-io/northstar/internal/timeutil"
)

func (s *Server) handleListSessions(
	w http.ResponseWriter, r *http.Request,
) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	sessions, err := s.store.RecentSessions(r.Context(), limit)
	if err != nil {
		if handleContextError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []store.WorkSession{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
	})
}

func (s *Server) handleTodaySessions(
	w http.ResponseWriter, r *http.Request,
) {
	today := timeutil.Date(s.now())
	sessions, err := s.store.TodaySessions(r.Context(), today)
	if err != nil {
		if handleContextError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []store.WorkSession{}
	}

	total := analytics.TotalMinutesToday(sessions, today)
	writeJSON(w, http.StatusOK, map[string]any{
		"date":        today,
		"sessions":    sessions,
		"total_min":   total,
		"total_label": analytics.FormatTotal(total),
	})
}
