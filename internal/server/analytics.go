package server

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/northstar-io/northstar/internal/analytics"
	"github.com/northstar-io/northstar/internal/timeutil"
)

var validQuarters = map[string]bool{
	"Q1": true, "Q2": true, "Q3": true, "Q4": true,
}

// heatmapDays is the default heatmap window, today inclusive.
const heatmapDays = 90

func (s *Server) handleAnalyticsSummary(
	w http.ResponseWriter, r *http.Request,
) {
	sessions, err := s.store.AllSessions(r.Context())
	if err != nil {
		if handleContextError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	now := s.now()
	today := timeutil.Date(now)
	totalToday := analytics.TotalMinutesToday(sessions, today)

	writeJSON(w, http.StatusOK, map[string]any{
		"date":        today,
		"metrics":     analytics.TimeMetrics(sessions, now),
		"pillars":     analytics.PillarStats(sessions),
		"today_total": analytics.FormatTotal(totalToday),
	})
}

func (s *Server) handleAnalyticsDaily(
	w http.ResponseWriter, r *http.Request,
) {
	sessions, err := s.store.AllSessions(r.Context())
	if err != nil {
		if handleContextError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days": analytics.DailySummary(sessions),
	})
}

func (s *Server) handleAnalyticsHeatmap(
	w http.ResponseWriter, r *http.Request,
) {
	q := r.URL.Query()
	now := s.now().UTC()
	from := timeutil.Date(now.AddDate(0, 0, -(heatmapDays - 1)))
	to := timeutil.Date(now)
	if v := q.Get("from"); v != "" {
		from = v
	}
	if v := q.Get("to"); v != "" {
		to = v
	}
	if _, err := timeutil.ParseDate(from); err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	if _, err := timeutil.ParseDate(to); err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}
	if from > to {
		writeError(w, http.StatusBadRequest, "from is after to")
		return
	}

	sessions, err := s.store.AllSessions(r.Context())
	if err != nil {
		if handleContextError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	days := analytics.DailySummary(sessions)
	writeJSON(w, http.StatusOK, analytics.Heatmap(days, from, to))
}

type quarterPillar struct {
	Pillar  string  `json:"pillar"`
	Hours   float64 `json:"hours"`
	Target  float64 `json:"target"`
	Percent int     `json:"percent"`
}

func (s *Server) handleAnalyticsQuarter(
	w http.ResponseWriter, r *http.Request,
) {
	q := r.URL.Query()
	now := s.now().UTC()

	quarter := analytics.QuarterOf(now)
	if v := q.Get("q"); v != "" {
		if !validQuarters[v] {
			writeError(w, http.StatusBadRequest,
				"invalid quarter: must be Q1, Q2, Q3, or Q4")
			return
		}
		quarter = v
	}

	year := now.Year()
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = n
	}

	sessions, err := s.store.AllSessions(r.Context())
	if err != nil {
		if handleContextError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	hours := analytics.QuarterProgress(sessions, quarter, year)
	targets := s.quarterTargets()

	// Configured pillars first, in order, then any stray pillar
	// labels that made it into the data, sorted.
	ordered := s.pillars()
	seen := make(map[string]bool, len(ordered))
	for _, p := range ordered {
		seen[p] = true
	}
	var extra []string
	for p := range hours {
		if !seen[p] {
			extra = append(extra, p)
		}
	}
	sort.Strings(extra)

	pillars := make([]quarterPillar, 0, len(ordered)+len(extra))
	for _, p := range append(ordered, extra...) {
		pillars = append(pillars, quarterPillar{
			Pillar:  p,
			Hours:   hours[p],
			Target:  targets[p],
			Percent: analytics.TargetPercent(hours[p], targets[p]),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"quarter": quarter,
		"year":    year,
		"pillars": pillars,
	})
}
