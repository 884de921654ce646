package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/northstar-io/northstar/internal/store"
)

func (s *Server) handleListFrozenIdeas(
	w http.ResponseWriter, r *http.Request,
) {
	ideas, err := s.store.FrozenIdeas(r.Context())
	if err != nil {
		if handleContextError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ideas == nil {
		ideas = []store.FrozenIdea{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ideas": ideas,
	})
}

func (s *Server) handleFreezeIdea(
	w http.ResponseWriter, r *http.Request,
) {
	var req struct {
		Idea string `json:"idea"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	idea := strings.TrimSpace(req.Idea)
	if idea == "" {
		writeError(w, http.StatusBadRequest, "idea must not be empty")
		return
	}

	id, err := s.store.FreezeIdea(idea)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}
