package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/northstar-io/northstar/internal/store"
	"github.com/northstar-io/northstar/internal/timeutil"
)

// parseID extracts the {id} path value as an int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (s *Server) handleListHabits(
	w http.ResponseWriter, r *http.Request,
) {
	today := timeutil.Date(s.now())
	habits, err := s.store.Habits(r.Context(), today)
	if err != nil {
		if handleContextError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if habits == nil {
		habits = []store.Habit{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"habits": habits,
	})
}

func (s *Server) handleAddHabit(
	w http.ResponseWriter, r *http.Request,
) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		writeError(w, http.StatusBadRequest, "title must not be empty")
		return
	}

	id, err := s.store.AddHabit(title)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleToggleHabit(
	w http.ResponseWriter, r *http.Request,
) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.store.ToggleHabit(id, timeutil.Date(s.now())); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "habit not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteHabit(
	w http.ResponseWriter, r *http.Request,
) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.store.DeleteHabit(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
