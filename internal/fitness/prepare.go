// Package fitness turns synced activities into the day-by-day fitness
// trend: per-activity stress preparation, daily aggregation and the
// CTL/ATL/TSB recursive filter.
package fitness

import (
	"strings"
	"time"

	"trena/internal/activity"
)

// ImpulseMode selects which heart-rate stress model feeds the trend.
type ImpulseMode string

const (
	ImpulseHRSS  ImpulseMode = "hrss"
	ImpulseTRIMP ImpulseMode = "trimp"
)

// Config are the trend feature toggles and filters.
type Config struct {
	ImpulseMode ImpulseMode

	// CyclingPowerEnabled gates the power stress score entirely;
	// AllowEstimatedPower additionally admits rides without a real meter.
	CyclingPowerEnabled   bool
	AllowEstimatedPower   bool
	AllowEstimatedRunning bool
	SwimEnabled           bool

	// IgnoreBefore drops activities started before the cutoff.
	IgnoreBefore *time.Time
	// IgnoreNamePatterns drops activities whose name contains any entry.
	IgnoreNamePatterns []string
	// SkipTypes drops whole sport types.
	SkipTypes []activity.Sport
}

// Prepared is one activity reduced to its trend-relevant stress scores.
// A nil score means the discipline did not qualify for this activity.
// Ephemeral: rebuilt on every trend computation.
type Prepared struct {
	ID            string
	Name          string
	Type          activity.Sport
	Date          time.Time
	Timestamp     int64
	DayOfYear     int
	Year          int
	HasPowerMeter bool

	TRIMP *float64
	HRSS  *float64
	PSS   *float64
	RSS   *float64
	SSS   *float64
}

// Prepare filters the synced activities and assigns per-discipline stress
// scores. The returned error, when non-nil, is always a *Error with a
// stable code; any failure aborts the whole preparation.
func Prepare(activities []*activity.Synced, cfg Config) ([]Prepared, error) {
	if len(activities) == 0 {
		return nil, errNoActivities()
	}

	kept := activities[:0:0]
	for _, a := range activities {
		if cfg.IgnoreBefore != nil && a.StartTime.Before(*cfg.IgnoreBefore) {
			continue
		}
		if nameIgnored(a.Name, cfg.IgnoreNamePatterns) {
			continue
		}
		if typeSkipped(a.Type, cfg.SkipTypes) {
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) == 0 {
		return nil, errAllFiltered()
	}

	prepared := make([]Prepared, 0, len(kept))
	for _, a := range kept {
		if a.AthleteSnapshot == nil {
			return nil, errMissingSettings(a.ID)
		}
		prepared = append(prepared, prepareOne(a, cfg))
	}
	return prepared, nil
}

func prepareOne(a *activity.Synced, cfg Config) Prepared {
	p := Prepared{
		ID:            a.ID,
		Name:          a.Name,
		Type:          a.Type,
		Date:          a.StartTime,
		Timestamp:     a.StartTime.Unix(),
		DayOfYear:     a.StartTime.YearDay(),
		Year:          a.StartTime.Year(),
		HasPowerMeter: a.HasPowerMeter,
	}
	if a.Stats == nil {
		return p
	}
	scores := a.Stats.Scores
	ftp := a.AthleteSnapshot.Settings

	// Heart-rate stress: exactly one of TRIMP/HRSS per the configured
	// impulse mode. The abnormal heart-rate flag vetoes both variants.
	switch cfg.ImpulseMode {
	case ImpulseTRIMP:
		if scores.TRIMP > 0 && !a.HasFlag(activity.FlagAbnormalHRSS) {
			p.TRIMP = ptr(scores.TRIMP)
		}
	default:
		if scores.HRSS > 0 && !a.HasFlag(activity.FlagAbnormalHRSS) {
			p.HRSS = ptr(scores.HRSS)
		}
	}

	if cfg.CyclingPowerEnabled && cfg.ImpulseMode != ImpulseTRIMP &&
		a.Type.IsRide(true) && ftp.CyclingFTP > 0 &&
		(a.HasPowerMeter || cfg.AllowEstimatedPower) &&
		scores.PSS > 0 && !a.HasFlag(activity.FlagAbnormalPSS) {
		p.PSS = ptr(scores.PSS)
	}

	if cfg.AllowEstimatedRunning && cfg.ImpulseMode != ImpulseTRIMP &&
		a.Type.IsRun() && ftp.RunningFTP > 0 &&
		scores.RSS > 0 && !a.HasFlag(activity.FlagAbnormalRSS) {
		p.RSS = ptr(scores.RSS)
	}

	if cfg.SwimEnabled && cfg.ImpulseMode != ImpulseTRIMP &&
		a.Type.IsSwim() && ftp.SwimFTP > 0 &&
		scores.SSS > 0 && !a.HasFlag(activity.FlagAbnormalSSS) {
		p.SSS = ptr(scores.SSS)
	}
	return p
}

func nameIgnored(name string, patterns []string) bool {
	for _, pat := range patterns {
		if pat != "" && strings.Contains(name, pat) {
			return true
		}
	}
	return false
}

func typeSkipped(t activity.Sport, skip []activity.Sport) bool {
	for _, s := range skip {
		if t == s {
			return true
		}
	}
	return false
}

func ptr(v float64) *float64 { return &v }
