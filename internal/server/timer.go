package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/northstar-io/northstar/internal/analytics"
	"github.com/northstar-io/northstar/internal/timer"
	"github.com/northstar-io/northstar/internal/timeutil"
)

type timerStartRequest struct {
	Task   string `json:"task"`
	Pillar string `json:"pillar"`
}

type timerStatus struct {
	Running    bool    `json:"running"`
	Task       string  `json:"task,omitempty"`
	Pillar     string  `json:"pillar,omitempty"`
	StartedAt  string  `json:"started_at,omitempty"`
	ElapsedMin float64 `json:"elapsed_min"`
}

func (s *Server) handleTimerStart(
	w http.ResponseWriter, r *http.Request,
) {
	var req timerStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pillar := analytics.NormalizePillar(req.Pillar, s.pillars())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		writeError(w, http.StatusConflict, "a timer is already running")
		return
	}

	t, err := timer.Start(strings.TrimSpace(req.Task), pillar, s.now())
	if err != nil {
		if errors.Is(err, timer.ErrEmptyTask) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.active = t

	writeJSON(w, http.StatusCreated, timerStatus{
		Running:   true,
		Task:      t.Task,
		Pillar:    t.Pillar,
		StartedAt: timeutil.Format(t.StartedAt),
	})
}

func (s *Server) handleTimerStatus(
	w http.ResponseWriter, _ *http.Request,
) {
	s.mu.RLock()
	t := s.active
	s.mu.RUnlock()

	if t == nil {
		writeJSON(w, http.StatusOK, timerStatus{Running: false})
		return
	}
	writeJSON(w, http.StatusOK, timerStatus{
		Running:    true,
		Task:       t.Task,
		Pillar:     t.Pillar,
		StartedAt:  timeutil.Format(t.StartedAt),
		ElapsedMin: t.Elapsed(s.now()).Minutes(),
	})
}

func (s *Server) handleTimerStop(
	w http.ResponseWriter, _ *http.Request,
) {
	s.mu.Lock()
	t := s.active
	s.active = nil
	s.mu.Unlock()

	if t == nil {
		writeError(w, http.StatusConflict, "no timer is running")
		return
	}

	res := t.Stop(s.now())
	id, err := s.store.SaveSession(
		res.Task, res.Pillar, res.Start, res.End, res.DurationMin,
	)
	if err != nil {
		// Put the timer back so the timed work is not lost and
		// stop can be retried.
		s.mu.Lock()
		if s.active == nil {
			s.active = t
		}
		s.mu.Unlock()
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":           id,
		"task":         res.Task,
		"pillar":       res.Pillar,
		"duration_min": res.DurationMin,
	})
}
