package compute

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trena/internal/activity"
)

func testSettings() activity.AthleteSettings {
	return activity.AthleteSettings{
		MaxHR:      190,
		RestHR:     50,
		CyclingFTP: 220,
		RunningFTP: 3.5,
		SwimFTP:    31,
		WeightKg:   75,
	}
}

func TestTRIMPOneHourAtThreshold(t *testing.T) {
	s := testSettings()
	// avg HR exactly at the Karvonen LTHR (ratio 0.85)
	avgHR := s.RestHR + 0.85*(s.MaxHR-s.RestHR)
	got := TRIMP(3600, avgHR, s, "male")
	want := 60 * 0.85 * math.Exp(1.92*0.85)
	assert.InDelta(t, want, got, 1e-9)
}

func TestTRIMPFemaleCoefficient(t *testing.T) {
	s := testSettings()
	male := TRIMP(3600, 150, s, "male")
	female := TRIMP(3600, 150, s, "female")
	assert.Less(t, female, male)
}

func TestTRIMPGuards(t *testing.T) {
	s := testSettings()
	assert.Zero(t, TRIMP(0, 150, s, "male"))
	assert.Zero(t, TRIMP(3600, 0, s, "male"))
	assert.Zero(t, TRIMP(3600, 150, activity.AthleteSettings{MaxHR: 50, RestHR: 50}, "male"))
}

func TestHRSSOneHourAtThresholdIsHundred(t *testing.T) {
	s := testSettings()
	avgHR := s.EffectiveLTHR()
	trimp := TRIMP(3600, avgHR, s, "male")
	assert.InDelta(t, 100, HRSS(trimp, s, "male"), 1e-9)
}

func TestNormalizedPowerConstantEffort(t *testing.T) {
	watts := make([]float64, 120)
	for i := range watts {
		watts[i] = 200
	}
	assert.InDelta(t, 200, normalizedPower(watts), 1e-9)
}

func TestPSSOneHourAtFTPIsHundred(t *testing.T) {
	watts := make([]float64, 3600)
	for i := range watts {
		watts[i] = 220
	}
	streams := &activity.Streams{Watts: watts}
	assert.InDelta(t, 100, PSS(streams, 3600, 220), 1e-9)
}

func TestPSSWithoutWatts(t *testing.T) {
	assert.Zero(t, PSS(&activity.Streams{}, 3600, 220))
	assert.Zero(t, PSS(nil, 3600, 220))
}

func TestRSSOneHourAtThresholdIsHundred(t *testing.T) {
	speeds := make([]float64, 100)
	for i := range speeds {
		speeds[i] = 3.5
	}
	streams := &activity.Streams{Velocity: speeds}
	assert.InDelta(t, 100, RSS(streams, 3600, 3.5), 1e-9)
}

func TestRSSPrefersGradeAdjustedSpeed(t *testing.T) {
	streams := &activity.Streams{
		Velocity:           []float64{3.0, 3.0},
		GradeAdjustedSpeed: []float64{3.5, 3.5},
	}
	flatOnly := &activity.Streams{Velocity: []float64{3.0, 3.0}}
	assert.Greater(t, RSS(streams, 3600, 3.5), RSS(flatOnly, 3600, 3.5))
}

func TestSSSOneHourAtThresholdIsHundred(t *testing.T) {
	// threshold pace 31 m/min held for one hour
	assert.InDelta(t, 100, SSS(31*60, 3600, 31), 1e-9)
}

func TestHRZoneDistribution(t *testing.T) {
	streams := &activity.Streams{
		Time:      []float64{0, 60, 120, 180},
		HeartRate: []float64{100, 140, 185, 185}, // maxHR 200: z1, z3, z5
	}
	zones := HRZoneDistribution(streams, 200)
	require.Len(t, zones, 3)
	assert.Equal(t, activity.HRZone{Zone: 1, TimeSeconds: 60}, zones[0])
	assert.Equal(t, activity.HRZone{Zone: 3, TimeSeconds: 60}, zones[1])
	assert.Equal(t, activity.HRZone{Zone: 5, TimeSeconds: 60}, zones[2])
}

func TestStatsFillsPrimitivesFromSource(t *testing.T) {
	bare := &activity.Bare{
		Type:      activity.SportRide,
		StartTime: time.Date(2020, 5, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	snapshot := &activity.AthleteSnapshot{Gender: "male", Settings: testSettings()}
	nan := math.NaN()

	st := Stats(bare, &activity.Streams{}, snapshot, nan, 3000, 20000, 250)
	assert.InDelta(t, 3600, st.ElapsedTimeS, 1e-9) // from bare duration
	assert.InDelta(t, 3000, st.MovingTimeS, 1e-9)
	assert.InDelta(t, 20000, st.DistanceM, 1e-9)
	assert.InDelta(t, 250, st.ElevationGainM, 1e-9)
	assert.InDelta(t, 20000.0/3000, st.AvgSpeedMS, 1e-9)
}

func TestStatsComputesScoresFromStreams(t *testing.T) {
	bare := &activity.Bare{
		Type:          activity.SportRide,
		HasPowerMeter: true,
		StartTime:     time.Date(2020, 5, 1, 9, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	snapshot := &activity.AthleteSnapshot{Gender: "male", Settings: testSettings()}

	n := 3600
	streams := &activity.Streams{
		Time:      make([]float64, n),
		Watts:     make([]float64, n),
		HeartRate: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		streams.Time[i] = float64(i)
		streams.Watts[i] = 220
		streams.HeartRate[i] = 160
	}
	nan := math.NaN()

	st := Stats(bare, streams, snapshot, nan, nan, nan, nan)
	assert.InDelta(t, 100, st.Scores.PSS, 1e-6)
	assert.Greater(t, st.Scores.TRIMP, 0.0)
	assert.Greater(t, st.Scores.HRSS, 0.0)
	assert.Zero(t, st.Scores.RSS)
	assert.Zero(t, st.Scores.SSS)
	assert.NotEmpty(t, st.HRZones)
}

func TestGradeAdjustedSpeed(t *testing.T) {
	got := GradeAdjustedSpeed([]float64{3, 3, 3}, []float64{0, 10, -10})
	require.Len(t, got, 3)
	assert.InDelta(t, 3.0, got[0], 1e-9)
	assert.InDelta(t, 3.45, got[1], 1e-9) // +10% grade costs 15% extra effort
	assert.InDelta(t, 2.55, got[2], 1e-9)
}
