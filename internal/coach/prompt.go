package coach

import (
	"fmt"
	"sort"
	"strings"

	"github.com/northstar-io/northstar/internal/analytics"
	"github.com/northstar-io/northstar/internal/store"
)

// maxPromptSessions caps how many of today's sessions are inlined
// into a prompt.
const maxPromptSessions = 50

// Stats is the numeric context handed to the coach alongside a user
// query. It is assembled from aggregator output, never queried by
// the coach itself.
type Stats struct {
	TodayTotal  string
	Metrics     analytics.Metrics
	PillarHours map[string]float64
	ActiveTasks int
}

// BuildAskPrompt assembles the coaching prompt: persona framing,
// numeric context, then the user's query.
func BuildAskPrompt(query string, stats Stats) string {
	var b strings.Builder
	b.WriteString("Act as a world-class productivity coach (NorthStar).\n")
	b.WriteString("Be concise, motivating, and data-driven.\n")
	b.WriteString("If active tasks exceed 3, push back on starting anything new.\n\n")

	b.WriteString("## Context\n\n")
	fmt.Fprintf(&b, "- Focused today: %s\n", stats.TodayTotal)
	fmt.Fprintf(&b, "- Hours today/week/month: %.1f / %.1f / %.1f\n",
		stats.Metrics.Daily, stats.Metrics.Weekly, stats.Metrics.Monthly)
	fmt.Fprintf(&b, "- Active tasks: %d\n", stats.ActiveTasks)

	if len(stats.PillarHours) > 0 {
		b.WriteString("- Hours per pillar:\n")
		pillars := make([]string, 0, len(stats.PillarHours))
		for p := range stats.PillarHours {
			pillars = append(pillars, p)
		}
		sort.Strings(pillars)
		for _, p := range pillars {
			fmt.Fprintf(&b, "  - %s: %.1f\n", p, stats.PillarHours[p])
		}
	}

	b.WriteString("\n## User\n\n")
	b.WriteString(query)
	b.WriteString("\n")
	return b.String()
}

// BuildAnalyzePrompt assembles the one-shot performance check over
// today's sessions, truncated to a bounded count.
func BuildAnalyzePrompt(sessions []store.WorkSession) string {
	var b strings.Builder
	b.WriteString("Analyze my work sessions today.\n")
	b.WriteString("Am I distracted, lazy, or productive?\n")
	b.WriteString("Give me one sentence of feedback.\n\n")
	b.WriteString("## Sessions\n\n")

	if len(sessions) == 0 {
		b.WriteString("(none logged yet)\n")
		return b.String()
	}

	truncated := len(sessions) > maxPromptSessions
	if truncated {
		sessions = sessions[:maxPromptSessions]
	}
	for _, w := range sessions {
		pillar := "General"
		if w.Pillar != nil && *w.Pillar != "" {
			pillar = *w.Pillar
		}
		mins := 0.0
		if w.DurationMin != nil {
			mins = *w.DurationMin
		}
		fmt.Fprintf(&b, "- %s (%s, %.0f min)\n", w.Task, pillar, mins)
	}
	if truncated {
		b.WriteString("- ...\n")
	}
	return b.String()
}
