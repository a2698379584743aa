package fitness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trena/internal/activity"
)

func defaultConfig() Config {
	return Config{
		ImpulseMode:           ImpulseHRSS,
		CyclingPowerEnabled:   true,
		AllowEstimatedPower:   true,
		AllowEstimatedRunning: true,
		SwimEnabled:           true,
	}
}

func snapshot() *activity.AthleteSnapshot {
	return &activity.AthleteSnapshot{
		Gender: "male",
		Settings: activity.AthleteSettings{
			MaxHR: 190, RestHR: 50,
			CyclingFTP: 220, RunningFTP: 3.5, SwimFTP: 31, WeightKg: 75,
		},
	}
}

func ride(id string, start time.Time, scores activity.StressScores, powerMeter bool) *activity.Synced {
	return &activity.Synced{
		Bare: activity.Bare{
			ID: id, Name: "Ride " + id, Type: activity.SportRide,
			StartTime: start, EndTime: start.Add(time.Hour),
			HasPowerMeter: powerMeter,
		},
		AthleteSnapshot: snapshot(),
		Stats:           &activity.Stats{MovingTimeS: 3600, Scores: scores},
	}
}

func TestPrepareEmptyInput(t *testing.T) {
	_, err := Prepare(nil, defaultConfig())
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, CodeNoActivities, fe.Code)
}

func TestPrepareAllFiltered(t *testing.T) {
	start := time.Date(2019, 5, 1, 9, 0, 0, 0, time.UTC)
	cutoff := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)

	cfg := defaultConfig()
	cfg.IgnoreBefore = &cutoff

	_, err := Prepare([]*activity.Synced{ride("a", start, activity.StressScores{HRSS: 50}, false)}, cfg)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, CodeAllFiltered, fe.Code)
}

func TestPrepareFiltersByNameAndType(t *testing.T) {
	start := time.Date(2019, 5, 1, 9, 0, 0, 0, time.UTC)
	commute := ride("a", start, activity.StressScores{HRSS: 50}, false)
	commute.Name = "Commute to work"
	kept := ride("b", start.Add(24*time.Hour), activity.StressScores{HRSS: 60}, false)
	skiing := ride("c", start.Add(48*time.Hour), activity.StressScores{HRSS: 70}, false)
	skiing.Type = activity.SportAlpineSki

	cfg := defaultConfig()
	cfg.IgnoreNamePatterns = []string{"Commute"}
	cfg.SkipTypes = []activity.Sport{activity.SportAlpineSki}

	prepared, err := Prepare([]*activity.Synced{commute, kept, skiing}, cfg)
	require.NoError(t, err)
	require.Len(t, prepared, 1)
	assert.Equal(t, "b", prepared[0].ID)
}

func TestPrepareMissingSnapshotAbortsEverything(t *testing.T) {
	start := time.Date(2019, 5, 1, 9, 0, 0, 0, time.UTC)
	ok := ride("a", start, activity.StressScores{HRSS: 50}, false)
	broken := ride("b", start.Add(24*time.Hour), activity.StressScores{HRSS: 60}, false)
	broken.AthleteSnapshot = nil

	_, err := Prepare([]*activity.Synced{ok, broken}, defaultConfig())
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, CodeMissingSettings, fe.Code)
}

func TestPrepareAssignsDisciplines(t *testing.T) {
	start := time.Date(2019, 5, 1, 9, 0, 0, 0, time.UTC)
	a := ride("a", start, activity.StressScores{HRSS: 80, PSS: 120}, true)

	prepared, err := Prepare([]*activity.Synced{a}, defaultConfig())
	require.NoError(t, err)
	require.Len(t, prepared, 1)

	p := prepared[0]
	require.NotNil(t, p.HRSS)
	assert.Equal(t, 80.0, *p.HRSS)
	require.NotNil(t, p.PSS)
	assert.Equal(t, 120.0, *p.PSS)
	assert.Nil(t, p.TRIMP)
	assert.Nil(t, p.RSS)
	assert.Nil(t, p.SSS)
	assert.True(t, p.HasPowerMeter)
	assert.Equal(t, start.YearDay(), p.DayOfYear)
}

func TestPrepareTRIMPModeSuppressesOtherScores(t *testing.T) {
	start := time.Date(2019, 5, 1, 9, 0, 0, 0, time.UTC)
	a := ride("a", start, activity.StressScores{TRIMP: 90, HRSS: 80, PSS: 120}, true)

	cfg := defaultConfig()
	cfg.ImpulseMode = ImpulseTRIMP

	prepared, err := Prepare([]*activity.Synced{a}, cfg)
	require.NoError(t, err)
	p := prepared[0]
	require.NotNil(t, p.TRIMP)
	assert.Equal(t, 90.0, *p.TRIMP)
	assert.Nil(t, p.HRSS)
	assert.Nil(t, p.PSS)
}

func TestPrepareAbnormalFlagVetoesDiscipline(t *testing.T) {
	start := time.Date(2019, 5, 1, 9, 0, 0, 0, time.UTC)
	a := ride("a", start, activity.StressScores{HRSS: 80, PSS: 120}, true)
	a.Flags = []string{activity.FlagAbnormalPSS}

	prepared, err := Prepare([]*activity.Synced{a}, defaultConfig())
	require.NoError(t, err)
	p := prepared[0]
	assert.Nil(t, p.PSS)
	require.NotNil(t, p.HRSS)
	assert.Equal(t, 80.0, *p.HRSS)
}

func TestPrepareAbnormalHeartRateFlagVetoesTRIMP(t *testing.T) {
	start := time.Date(2019, 5, 1, 9, 0, 0, 0, time.UTC)
	a := ride("a", start, activity.StressScores{TRIMP: 90, HRSS: 80}, false)
	a.Flags = []string{activity.FlagAbnormalHRSS}

	cfg := defaultConfig()
	cfg.ImpulseMode = ImpulseTRIMP

	prepared, err := Prepare([]*activity.Synced{a}, cfg)
	require.NoError(t, err)
	assert.Nil(t, prepared[0].TRIMP)
	assert.Nil(t, prepared[0].HRSS)
}

func TestPrepareFilterIsIdempotent(t *testing.T) {
	start := time.Date(2019, 5, 1, 9, 0, 0, 0, time.UTC)
	cutoff := time.Date(2019, 5, 2, 0, 0, 0, 0, time.UTC)

	old := ride("a", start, activity.StressScores{HRSS: 50}, false)
	commute := ride("b", start.Add(24*time.Hour), activity.StressScores{HRSS: 55}, false)
	commute.Name = "Commute home"
	kept1 := ride("c", start.Add(48*time.Hour), activity.StressScores{HRSS: 60}, false)
	kept2 := ride("d", start.Add(72*time.Hour), activity.StressScores{HRSS: 70, PSS: 110}, true)
	all := []*activity.Synced{old, commute, kept1, kept2}

	cfg := defaultConfig()
	cfg.IgnoreBefore = &cutoff
	cfg.IgnoreNamePatterns = []string{"Commute"}

	once, err := Prepare(all, cfg)
	require.NoError(t, err)
	require.Len(t, once, 2)

	// re-filtering the survivors is a fixed point
	survivors := make([]*activity.Synced, 0, len(once))
	for _, p := range once {
		for _, a := range all {
			if a.ID == p.ID {
				survivors = append(survivors, a)
			}
		}
	}
	twice, err := Prepare(survivors, cfg)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestPrepareEstimatedPowerGate(t *testing.T) {
	start := time.Date(2019, 5, 1, 9, 0, 0, 0, time.UTC)
	a := ride("a", start, activity.StressScores{PSS: 120}, false)

	cfg := defaultConfig()
	cfg.AllowEstimatedPower = false
	prepared, err := Prepare([]*activity.Synced{a}, cfg)
	require.NoError(t, err)
	assert.Nil(t, prepared[0].PSS)

	cfg.AllowEstimatedPower = true
	prepared, err = Prepare([]*activity.Synced{a}, cfg)
	require.NoError(t, err)
	require.NotNil(t, prepared[0].PSS)
	assert.Equal(t, 120.0, *prepared[0].PSS)
}
