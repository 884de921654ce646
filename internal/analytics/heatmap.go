package analytics

import (
	"sort"

	"github.com/northstar-io/northstar/internal/timeutil"
)

// HeatmapEntry is one day in the heatmap calendar.
type HeatmapEntry struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
	Level int     `json:"level"`
}

// HeatmapLevels defines the quartile thresholds for levels 1-4.
type HeatmapLevels struct {
	L1 float64 `json:"l1"`
	L2 float64 `json:"l2"`
	L3 float64 `json:"l3"`
	L4 float64 `json:"l4"`
}

// HeatmapResponse wraps the heatmap data.
type HeatmapResponse struct {
	Entries []HeatmapEntry `json:"entries"`
	Levels  HeatmapLevels  `json:"levels"`
}

// Heatmap builds a day-by-day intensity grid from the daily summary,
// with one entry per calendar day in [from, to] and quartile-based
// levels 0-4 for shading.
func Heatmap(days []DayStat, from, to string) HeatmapResponse {
	hours := make(map[string]float64, len(days))
	var values []float64
	for _, d := range days {
		hours[d.Date] = d.Hours
		if d.Hours > 0 {
			values = append(values, d.Hours)
		}
	}
	sort.Float64s(values)

	levels := computeQuartileLevels(values)
	entries := buildDateEntries(from, to, hours, levels)

	return HeatmapResponse{Entries: entries, Levels: levels}
}

// computeQuartileLevels computes thresholds from sorted values.
func computeQuartileLevels(sorted []float64) HeatmapLevels {
	if len(sorted) == 0 {
		return HeatmapLevels{L1: 1, L2: 2, L3: 3, L4: 4}
	}
	n := len(sorted)
	return HeatmapLevels{
		L1: sorted[0],
		L2: sorted[n/4],
		L3: sorted[n/2],
		L4: sorted[n*3/4],
	}
}

// assignLevel determines the heatmap level (0-4) for a value.
func assignLevel(value float64, levels HeatmapLevels) int {
	if value <= 0 {
		return 0
	}
	if value <= levels.L2 {
		return 1
	}
	if value <= levels.L3 {
		return 2
	}
	if value <= levels.L4 {
		return 3
	}
	return 4
}

// buildDateEntries creates a HeatmapEntry for each day in [from, to].
func buildDateEntries(
	from, to string,
	values map[string]float64,
	levels HeatmapLevels,
) []HeatmapEntry {
	start, err := timeutil.ParseDate(from)
	if err != nil {
		return nil
	}
	end, err := timeutil.ParseDate(to)
	if err != nil {
		return nil
	}

	var entries []HeatmapEntry
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := timeutil.Date(d)
		v := values[date]
		entries = append(entries, HeatmapEntry{
			Date:  date,
			Hours: v,
			Level: assignLevel(v, levels),
		})
	}
	return entries
}
