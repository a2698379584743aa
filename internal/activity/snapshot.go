package activity

import (
	"errors"
	"sort"
	"time"
)

// ErrNoSettings is returned when resolving against an empty history.
var ErrNoSettings = errors.New("athlete settings history not initialized")

// Karvonen factor used to estimate the lactate threshold heart rate when
// the athlete never measured it.
const DefaultLTHRKarvonenFactor = 0.85

// AthleteSettings are the athlete parameters valid over one dated period.
type AthleteSettings struct {
	MaxHR      float64  `json:"maxHr"`
	RestHR     float64  `json:"restHr"`
	LTHR       *float64 `json:"lthr,omitempty"`
	CyclingFTP float64  `json:"cyclingFtp"`
	RunningFTP float64  `json:"runningFtp"`
	SwimFTP    float64  `json:"swimFtp"`
	WeightKg   float64  `json:"weight"`
}

// EffectiveLTHR returns the measured LTHR or the Karvonen estimate from
// rest/max heart rate.
func (s AthleteSettings) EffectiveLTHR() float64 {
	if s.LTHR != nil && *s.LTHR > 0 {
		return *s.LTHR
	}
	return s.RestHR + DefaultLTHRKarvonenFactor*(s.MaxHR-s.RestHR)
}

// AthleteSnapshot is the athlete state resolved for one specific date.
type AthleteSnapshot struct {
	Gender   string          `json:"gender"`
	Settings AthleteSettings `json:"athleteSettings"`
}

// DatedSettings binds settings to the date they become valid. A nil Since
// means "valid forever from the beginning" and always sorts last.
type DatedSettings struct {
	Since    *time.Time      `json:"since"`
	Gender   string          `json:"gender"`
	Settings AthleteSettings `json:"athleteSettings"`
}

// SettingsHistory is the immutable, time-ordered athlete settings list.
// Build it once with NewSettingsHistory and pass it into each computation
// instead of holding resolver state that can go stale.
type SettingsHistory struct {
	entries []DatedSettings // newest first, nil-Since entry last
}

// NewSettingsHistory orders the entries newest-first with the forever
// entry last, which makes Resolve a linear first-match scan.
func NewSettingsHistory(entries []DatedSettings) SettingsHistory {
	sorted := make([]DatedSettings, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Since, sorted[j].Since
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
	return SettingsHistory{entries: sorted}
}

func (h SettingsHistory) Empty() bool { return len(h.entries) == 0 }

// Resolve returns the snapshot valid on the given date. Exactly one entry
// matches any date: the newest entry whose Since is on or before it, the
// forever entry otherwise. A zero date resolves to the most recent
// snapshot, mirroring the "invalid date" fallback of the original
// resolver.
func (h SettingsHistory) Resolve(date time.Time) (*AthleteSnapshot, error) {
	if h.Empty() {
		return nil, ErrNoSettings
	}
	if date.IsZero() {
		e := h.entries[0]
		return &AthleteSnapshot{Gender: e.Gender, Settings: e.Settings}, nil
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	for _, e := range h.entries {
		if e.Since == nil || !e.Since.After(day) {
			return &AthleteSnapshot{Gender: e.Gender, Settings: e.Settings}, nil
		}
	}
	// All entries start after the date: fall back to the oldest one.
	e := h.entries[len(h.entries)-1]
	return &AthleteSnapshot{Gender: e.Gender, Settings: e.Settings}, nil
}
