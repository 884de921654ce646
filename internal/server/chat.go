package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/northstar-io/northstar/internal/analytics"
	"github.com/northstar-io/northstar/internal/coach"
	"github.com/northstar-io/northstar/internal/timeutil"
)

// maxChatHistory bounds the in-memory transcript. The transcript is
// per-process and intentionally not persisted.
const maxChatHistory = 100

// ChatMessage is one entry in the coach transcript.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (s *Server) handleChat(
	w http.ResponseWriter, r *http.Request,
) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "message must not be empty")
		return
	}

	stats, err := s.coachStats(r)
	if err != nil {
		if handleContextError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	reply := s.coach.Ask(r.Context(), message, stats)

	s.mu.Lock()
	s.chat = append(s.chat,
		ChatMessage{Role: "user", Content: message},
		ChatMessage{Role: "coach", Content: reply},
	)
	if len(s.chat) > maxChatHistory {
		s.chat = s.chat[len(s.chat)-maxChatHistory:]
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) handleChatHistory(
	w http.ResponseWriter, _ *http.Request,
) {
	s.mu.RLock()
	messages := append([]ChatMessage(nil), s.chat...)
	s.mu.RUnlock()
	if messages == nil {
		messages = []ChatMessage{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": messages,
	})
}

func (s *Server) handleAnalyzeToday(
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

	reply := s.coach.AnalyzePerformance(r.Context(), sessions)
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// coachStats assembles the numeric context the coach sees alongside
// every query.
func (s *Server) coachStats(r *http.Request) (coach.Stats, error) {
	ctx := r.Context()

	sessions, err := s.store.AllSessions(ctx)
	if err != nil {
		return coach.Stats{}, err
	}
	activeTasks, err := s.store.ActiveTaskCount(ctx)
	if err != nil {
		return coach.Stats{}, err
	}

	now := s.now()
	today := timeutil.Date(now)
	todayMin := analytics.TotalMinutesToday(sessions, today)

	return coach.Stats{
		TodayTotal:  analytics.FormatTotal(todayMin),
		Metrics:     analytics.TimeMetrics(sessions, now),
		PillarHours: analytics.PillarStats(sessions),
		ActiveTasks: activeTasks,
	}, nil
}
