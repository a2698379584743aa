package fitness

import (
	"sort"
	"time"

	"trena/internal/activity"
)

// FutureDaysPreview is the number of trailing preview days appended after
// "today" so the trend chart shows the decay ahead.
const FutureDaysPreview = 14

// DayStress is the per-calendar-day aggregation of prepared activities.
// Discipline sums stay nil until an activity contributes; zero is never
// used to mean "no data".
type DayStress struct {
	Date      time.Time        `json:"date"`
	Timestamp int64            `json:"timestamp"`
	IDs       []string         `json:"ids,omitempty"`
	Names     []string         `json:"activitiesName,omitempty"`
	Types     []activity.Sport `json:"types,omitempty"`

	TRIMP *float64 `json:"trimp,omitempty"`
	HRSS  *float64 `json:"hrss,omitempty"`
	PSS   *float64 `json:"pss,omitempty"`
	RSS   *float64 `json:"rss,omitempty"`
	SSS   *float64 `json:"sss,omitempty"`

	FinalStressScore float64 `json:"finalStressScore"`
	PreviewDay       bool    `json:"previewDay"`
}

// finalScoreRules is the strict priority order deciding which single
// discipline an activity contributes to the day's final total. Evaluated
// per activity; the first matching rule wins and the rest are ignored,
// even when other disciplines carry legitimate scores.
var finalScoreRules = []func(p Prepared) *float64{
	func(p Prepared) *float64 { // power, real meter
		if p.HasPowerMeter {
			return p.PSS
		}
		return nil
	},
	func(p Prepared) *float64 { return p.HRSS },
	func(p Prepared) *float64 { return p.TRIMP },
	func(p Prepared) *float64 { return p.PSS }, // estimated power
	func(p Prepared) *float64 { return p.RSS },
	func(p Prepared) *float64 { return p.SSS },
}

func finalScore(p Prepared) float64 {
	for _, rule := range finalScoreRules {
		if s := rule(p); s != nil && *s > 0 {
			return *s
		}
	}
	return 0
}

// GenerateDailyStress folds prepared activities into one DayStress per
// calendar day, spanning (first activity date − 1 day) through today
// inclusive, then FutureDaysPreview preview days with no contributions.
func GenerateDailyStress(prepared []Prepared, today time.Time) []DayStress {
	if len(prepared) == 0 {
		return nil
	}

	sorted := make([]Prepared, len(prepared))
	copy(sorted, prepared)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	byDay := make(map[string][]Prepared, len(sorted))
	for _, p := range sorted {
		k := dayKey(p.Date)
		byDay[k] = append(byDay[k], p)
	}

	start := startOfDay(sorted[0].Date).AddDate(0, 0, -1)
	end := startOfDay(today)

	var days []DayStress
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, buildDay(d, byDay[dayKey(d)], false))
	}
	for i := 1; i <= FutureDaysPreview; i++ {
		days = append(days, buildDay(end.AddDate(0, 0, i), nil, true))
	}
	return days
}

func buildDay(date time.Time, acts []Prepared, preview bool) DayStress {
	day := DayStress{
		Date:       date,
		Timestamp:  date.Unix(),
		PreviewDay: preview,
	}
	for _, p := range acts {
		day.IDs = append(day.IDs, p.ID)
		day.Names = append(day.Names, p.Name)
		day.Types = append(day.Types, p.Type)

		addTo(&day.TRIMP, p.TRIMP)
		addTo(&day.HRSS, p.HRSS)
		addTo(&day.PSS, p.PSS)
		addTo(&day.RSS, p.RSS)
		addTo(&day.SSS, p.SSS)

		day.FinalStressScore += finalScore(p)
	}
	return day
}

// addTo accumulates a nullable score: the sum stays nil until the first
// contribution.
func addTo(sum **float64, v *float64) {
	if v == nil {
		return
	}
	if *sum == nil {
		*sum = ptr(*v)
		return
	}
	**sum += *v
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
