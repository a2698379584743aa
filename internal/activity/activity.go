package activity

import "time"

// Flags attached to a synced activity when a stress score looks abnormal.
// A flagged discipline is excluded from fitness trend preparation.
const (
	FlagAbnormalHRSS = "score_hrss_per_hour_abnormal"
	FlagAbnormalPSS  = "score_pss_per_hour_abnormal"
	FlagAbnormalRSS  = "score_rss_per_hour_abnormal"
	FlagAbnormalSSS  = "score_sss_per_hour_abnormal"
)

// Bare is the minimal activity derived from one parsed source activity.
// Immutable once created; it seeds a Synced activity.
type Bare struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          Sport     `json:"type"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	HasPowerMeter bool      `json:"hasPowerMeter"`
	Trainer       bool      `json:"trainer"`
	Commute       *bool     `json:"commute"`
}

// FileLocation points back at the source file an activity came from.
type FileLocation struct {
	Path string `json:"path"`
}

// Extras carries source-connector specific references.
type Extras struct {
	FileLocation FileLocation `json:"fs_activity_location"`
}

// StressScores are the per-discipline training stress scores computed at
// sync time. Zero means "not computed / not applicable", never "zero load".
type StressScores struct {
	TRIMP float64 `json:"trimp,omitempty"`
	HRSS  float64 `json:"hrss,omitempty"`
	PSS   float64 `json:"pss,omitempty"`
	RSS   float64 `json:"rss,omitempty"`
	SSS   float64 `json:"sss,omitempty"`
}

// HRZone is time accumulated inside one heart rate zone.
type HRZone struct {
	Zone        int `json:"zone"`
	TimeSeconds int `json:"time_seconds"`
}

// Stats are the computed extended statistics of a synced activity, plus
// the primitive values recovered from the source file when stream-based
// computation cannot provide them.
type Stats struct {
	DistanceM      float64 `json:"distance"`
	MovingTimeS    float64 `json:"moving_time"`
	ElapsedTimeS   float64 `json:"elapsed_time"`
	ElevationGainM float64 `json:"elevation_gain"`
	AvgSpeedMS     float64 `json:"avg_speed"`
	MaxSpeedMS     float64 `json:"max_speed"`
	AvgHR          float64 `json:"avg_hr,omitempty"`
	MaxHR          float64 `json:"max_hr,omitempty"`

	Scores  StressScores `json:"scores"`
	HRZones []HRZone     `json:"hr_zones,omitempty"`
}

// Synced is the canonical persisted activity. Identity derives from the
// start/end time hash; the content hash changes when a re-sync produces
// materially different data.
type Synced struct {
	Bare

	StartTimestamp  int64            `json:"start_timestamp"`
	AthleteSnapshot *AthleteSnapshot `json:"athleteSnapshot"`
	Stats           *Stats           `json:"stats"`
	LatLngCenter    *[2]float64      `json:"latLngCenter,omitempty"`
	Hash            string           `json:"hash"`
	SettingsLack    bool             `json:"settingsLack"`
	SourceConnector string           `json:"sourceConnectorType"`
	Flags           []string         `json:"flags,omitempty"`
	Extras          Extras           `json:"extras"`
}

// HasFlag reports whether the activity carries the given abnormal-score flag.
func (a *Synced) HasFlag(flag string) bool {
	for _, f := range a.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// DurationS is the elapsed wall-clock span of the activity in seconds.
func (b *Bare) DurationS() float64 {
	return b.EndTime.Sub(b.StartTime).Seconds()
}
