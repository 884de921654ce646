// Package analytics derives summary statistics from the raw work
// session set. Every function is pure: deterministic given the same
// input and the same "now", no I/O, no hidden state. Records missing
// a pillar or a duration are skipped rather than rejected, so one
// malformed row cannot break the dashboard.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/northstar-io/northstar/internal/store"
	"github.com/northstar-io/northstar/internal/timeutil"
)

// roundHours converts minutes to hours rounded to one decimal.
func roundHours(minutes float64) float64 {
	return math.Round(minutes/60*10) / 10
}

// TotalMinutesToday sums duration_min across sessions whose stored
// date equals today (string equality).
func TotalMinutesToday(
	sessions []store.WorkSession, today string,
) float64 {
	var total float64
	for _, w := range sessions {
		if w.Date != today || w.DurationMin == nil {
			continue
		}
		total += *w.DurationMin
	}
	return total
}

// FormatTotal renders a minute total as "Xh Ym", truncating partial
// minutes.
func FormatTotal(minutes float64) string {
	h := int(minutes) / 60
	m := int(minutes) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}

// PillarStats groups sessions by pillar and returns total hours per
// pillar, rounded to one decimal. Always returns a non-nil map.
func PillarStats(
	sessions []store.WorkSession,
) map[string]float64 {
	mins := make(map[string]float64)
	for _, w := range sessions {
		if w.Pillar == nil || *w.Pillar == "" || w.DurationMin == nil {
			continue
		}
		mins[*w.Pillar] += *w.DurationMin
	}

	stats := make(map[string]float64, len(mins))
	for pillar, m := range mins {
		stats[pillar] = roundHours(m)
	}
	return stats
}

// DayStat is one distinct calendar date present in the session set,
// annotated for heatmap and trend rendering.
type DayStat struct {
	Date    string  `json:"date"`
	Hours   float64 `json:"hours"`
	WeekNum int     `json:"week_num"`
	DayName string  `json:"day_name"`
}

// DailySummary groups sessions by calendar date and returns one row
// per date, sorted ascending, with total hours, ISO week number, and
// weekday name. Sessions with an unparsable date or no duration are
// skipped. The input is never mutated.
func DailySummary(sessions []store.WorkSession) []DayStat {
	mins := make(map[string]float64)
	for _, w := range sessions {
		if w.DurationMin == nil {
			continue
		}
		if _, err := timeutil.ParseDate(w.Date); err != nil {
			continue
		}
		mins[w.Date] += *w.DurationMin
	}

	days := make([]DayStat, 0, len(mins))
	for date, m := range mins {
		d, _ := timeutil.ParseDate(date)
		_, week := d.ISOWeek()
		days = append(days, DayStat{
			Date:    date,
			Hours:   roundHours(m),
			WeekNum: week,
			DayName: d.Weekday().String(),
		})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	return days
}

// Metrics holds hour totals for the day, ISO week, and month
// containing "now".
type Metrics struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
}

// TimeMetrics computes daily, weekly, and monthly hour totals
// relative to now. The three windows are independent filters over
// the same input, evaluated in one parse pass. The weekly bucket
// keys on ISO week number plus calendar year, so the last days of
// December and first days of January can land in a week that
// straddles the year boundary; that is the historical behavior and
// is kept as is.
func TimeMetrics(
	sessions []store.WorkSession, now time.Time,
) Metrics {
	now = now.UTC()
	today := timeutil.Date(now)
	_, nowWeek := now.ISOWeek()
	nowYear := now.Year()
	nowMonth := now.Month()

	var daily, weekly, monthly float64
	for _, w := range sessions {
		if w.DurationMin == nil {
			continue
		}
		d, err := timeutil.ParseDate(w.Date)
		if err != nil {
			continue
		}

		if w.Date == today {
			daily += *w.DurationMin
		}
		if _, week := d.ISOWeek(); week == nowWeek && d.Year() == nowYear {
			weekly += *w.DurationMin
		}
		if d.Month() == nowMonth && d.Year() == nowYear {
			monthly += *w.DurationMin
		}
	}

	return Metrics{
		Daily:   roundHours(daily),
		Weekly:  roundHours(weekly),
		Monthly: roundHours(monthly),
	}
}

// quarterMonths is the fixed quarter to month mapping. There is no
// year selector anywhere in the product, so cross-year quarters
// cannot be expressed.
var quarterMonths = map[string][]time.Month{
	"Q1": {time.January, time.February, time.March},
	"Q2": {time.April, time.May, time.June},
	"Q3": {time.July, time.August, time.September},
	"Q4": {time.October, time.November, time.December},
}

// QuarterOf returns the quarter label containing t.
func QuarterOf(t time.Time) string {
	switch {
	case t.Month() <= time.March:
		return "Q1"
	case t.Month() <= time.June:
		return "Q2"
	case t.Month() <= time.September:
		return "Q3"
	default:
		return "Q4"
	}
}

// QuarterProgress returns hours per pillar for sessions falling in
// the given quarter and year. An unknown quarter label yields an
// empty map, not an error.
func QuarterProgress(
	sessions []store.WorkSession, quarter string, year int,
) map[string]float64 {
	stats := make(map[string]float64)
	months, ok := quarterMonths[quarter]
	if !ok {
		return stats
	}

	inQuarter := func(m time.Month) bool {
		for _, qm := range months {
			if m == qm {
				return true
			}
		}
		return false
	}

	mins := make(map[string]float64)
	for _, w := range sessions {
		if w.Pillar == nil || *w.Pillar == "" || w.DurationMin == nil {
			continue
		}
		d, err := timeutil.ParseDate(w.Date)
		if err != nil {
			continue
		}
		if d.Year() != year || !inQuarter(d.Month()) {
			continue
		}
		mins[*w.Pillar] += *w.DurationMin
	}

	for pillar, m := range mins {
		stats[pillar] = roundHours(m)
	}
	return stats
}

// TargetPercent returns progress toward a target as a percentage
// capped at 100. A zero or negative target reports zero.
func TargetPercent(value, target float64) int {
	if target <= 0 {
		return 0
	}
	pct := int(value / target * 100)
	if pct > 100 {
		pct = 100
	}
	return pct
}
