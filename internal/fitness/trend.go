package fitness

import (
	"math"
	"time"

	"trena/internal/activity"
)

// Time constants of the chronic and acute load filters, in days.
const (
	ctlTimeConstant = 42.0
	atlTimeConstant = 7.0
)

// Seed optionally initializes the filter state, typically from a trend
// computed over an earlier history window.
type Seed struct {
	CTL float64
	ATL float64
}

// DayTrend is one DayStress enriched with the filter outputs and their
// day-over-day deltas.
type DayTrend struct {
	DayStress

	CTL float64 `json:"ctl"`
	ATL float64 `json:"atl"`
	TSB float64 `json:"tsb"`

	DeltaCTL float64 `json:"deltaCtl"`
	DeltaATL float64 `json:"deltaAtl"`
	DeltaTSB float64 `json:"deltaTsb"`
}

// ComputeTrend runs the day sequence through the two exponential moving
// averages. The first day carries the seed (or zero) verbatim; every
// following day first reports tsb from the state entering the day, then
// folds its final stress score into ctl and atl.
func ComputeTrend(days []DayStress, seed *Seed) []DayTrend {
	if len(days) == 0 {
		return nil
	}

	ctlDecay := 1 - math.Exp(-1/ctlTimeConstant)
	atlDecay := 1 - math.Exp(-1/atlTimeConstant)

	var ctl, atl float64
	if seed != nil {
		ctl, atl = seed.CTL, seed.ATL
	}

	trend := make([]DayTrend, 0, len(days))
	prev := DayTrend{CTL: ctl, ATL: atl, TSB: ctl - atl}
	for i, day := range days {
		// tsb reflects the state entering the day, before today's load
		// is folded in.
		tsb := ctl - atl
		if i > 0 {
			ctl += (day.FinalStressScore - ctl) * ctlDecay
			atl += (day.FinalStressScore - atl) * atlDecay
		}
		dt := DayTrend{
			DayStress: day,
			CTL:       ctl,
			ATL:       atl,
			TSB:       tsb,
		}
		scrubNonPositiveScores(&dt.DayStress)
		dt.DeltaCTL = dt.CTL - prev.CTL
		dt.DeltaATL = dt.ATL - prev.ATL
		dt.DeltaTSB = dt.TSB - prev.TSB
		trend = append(trend, dt)
		prev = dt
	}
	return trend
}

// scrubNonPositiveScores drops discipline sums that are not strictly
// positive; on the trend record zero means absent, never "zero load".
func scrubNonPositiveScores(d *DayStress) {
	for _, s := range []**float64{&d.TRIMP, &d.HRSS, &d.PSS, &d.RSS, &d.SSS} {
		if *s != nil && (math.IsNaN(**s) || **s <= 0) {
			*s = nil
		}
	}
}

// Trend chains preparation, daily aggregation and the recursive filter.
func Trend(activities []*activity.Synced, cfg Config, today time.Time, seed *Seed) ([]DayTrend, error) {
	prepared, err := Prepare(activities, cfg)
	if err != nil {
		return nil, err
	}
	return ComputeTrend(GenerateDailyStress(prepared, today), seed), nil
}
