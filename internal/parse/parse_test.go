package parse

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trena/internal/scan"
)

const gpxRide = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
  <trk>
    <name>Morning loop</name>
    <type>cycling</type>
    <trkseg>
      <trkpt lat="45.0000" lon="5.0000">
        <ele>200</ele>
        <time>2019-07-21T08:30:00Z</time>
        <extensions><power>150</power><TrackPointExtension><hr>120</hr><cad>80</cad></TrackPointExtension></extensions>
      </trkpt>
      <trkpt lat="45.0010" lon="5.0000">
        <ele>210</ele>
        <time>2019-07-21T08:30:30Z</time>
        <extensions><power>180</power><TrackPointExtension><hr>130</hr><cad>82</cad></TrackPointExtension></extensions>
      </trkpt>
      <trkpt lat="45.0020" lon="5.0000">
        <ele>205</ele>
        <time>2019-07-21T08:31:00Z</time>
        <extensions><power>170</power><TrackPointExtension><hr>135</hr><cad>81</cad></TrackPointExtension></extensions>
      </trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestGPX(t *testing.T) {
	sources, err := GPX([]byte(gpxRide))
	require.NoError(t, err)
	require.Len(t, sources, 1)

	src := sources[0]
	assert.Equal(t, "cycling", src.Sport)
	assert.Equal(t, time.Date(2019, 7, 21, 8, 30, 0, 0, time.UTC), src.StartTime)
	assert.Equal(t, time.Date(2019, 7, 21, 8, 31, 0, 0, time.UTC), src.EndTime)
	assert.True(t, src.HasPowerMeter)
	assert.False(t, src.Transition)

	s := src.Streams
	require.Len(t, s.Time, 3)
	assert.Equal(t, []float64{0, 30, 60}, s.Time)
	assert.Len(t, s.LatLng, 3)
	assert.Len(t, s.Velocity, 3)
	assert.Equal(t, []float64{150, 180, 170}, s.Watts)
	assert.Equal(t, []float64{120, 130, 135}, s.HeartRate)
	require.Len(t, s.Distance, 3)
	// ~111m per 0.001 deg of latitude
	assert.InDelta(t, 222, s.Distance[2], 5)
	require.Len(t, s.Grade, 3)

	assert.InDelta(t, s.Distance[2], src.Stats.DistanceM, 1e-9)
	assert.InDelta(t, 60, src.Stats.DurationS, 1e-9)
	assert.InDelta(t, 10, src.Stats.AscentM, 1e-9) // only the climbing delta
	assert.True(t, math.IsNaN(src.Stats.PauseS))
}

func TestGPXWithoutSensorsDropsStreams(t *testing.T) {
	bare := `<gpx><trk><type>running</type><trkseg>
	  <trkpt lat="45.0" lon="5.0"><time>2019-07-21T08:30:00Z</time></trkpt>
	  <trkpt lat="45.001" lon="5.0"><time>2019-07-21T08:30:30Z</time></trkpt>
	</trkseg></trk></gpx>`

	sources, err := GPX([]byte(bare))
	require.NoError(t, err)
	src := sources[0]
	assert.False(t, src.HasPowerMeter)
	assert.Nil(t, src.Streams.Watts)
	assert.Nil(t, src.Streams.HeartRate)
	assert.Nil(t, src.Streams.Cadence)
	assert.Nil(t, src.Streams.Altitude)
}

func TestGPXEmpty(t *testing.T) {
	_, err := GPX([]byte(`<gpx><trk><trkseg></trkseg></trk></gpx>`))
	assert.ErrorIs(t, err, errNoTrackPoints)
}

const tcxRun = `<?xml version="1.0"?>
<TrainingCenterDatabase>
  <Activities>
    <Activity Sport="Running">
      <Id>2019-07-21T08:30:00Z</Id>
      <Lap>
        <TotalTimeSeconds>60</TotalTimeSeconds>
        <DistanceMeters>250</DistanceMeters>
        <MaximumSpeed>4.5</MaximumSpeed>
        <Track>
          <Trackpoint>
            <Time>2019-07-21T08:30:00Z</Time>
            <Position><LatitudeDegrees>45.0</LatitudeDegrees><LongitudeDegrees>5.0</LongitudeDegrees></Position>
            <AltitudeMeters>200</AltitudeMeters>
            <DistanceMeters>0</DistanceMeters>
            <HeartRateBpm><Value>140</Value></HeartRateBpm>
          </Trackpoint>
          <Trackpoint>
            <Time>2019-07-21T08:30:30Z</Time>
            <Position><LatitudeDegrees>45.001</LatitudeDegrees><LongitudeDegrees>5.0</LongitudeDegrees></Position>
            <AltitudeMeters>202</AltitudeMeters>
            <DistanceMeters>120</DistanceMeters>
            <HeartRateBpm><Value>150</Value></HeartRateBpm>
          </Trackpoint>
          <Trackpoint>
            <Time>2019-07-21T08:31:00Z</Time>
            <Position><LatitudeDegrees>45.002</LatitudeDegrees><LongitudeDegrees>5.0</LongitudeDegrees></Position>
            <AltitudeMeters>204</AltitudeMeters>
            <DistanceMeters>250</DistanceMeters>
            <HeartRateBpm><Value>155</Value></HeartRateBpm>
          </Trackpoint>
        </Track>
      </Lap>
    </Activity>
  </Activities>
</TrainingCenterDatabase>`

func TestTCX(t *testing.T) {
	sources, err := TCX([]byte(tcxRun))
	require.NoError(t, err)
	require.Len(t, sources, 1)

	src := sources[0]
	assert.Equal(t, "Running", src.Sport)
	assert.False(t, src.HasPowerMeter)
	assert.Equal(t, []float64{140, 150, 155}, src.Streams.HeartRate)
	assert.Nil(t, src.Streams.Watts)
	assert.Equal(t, []float64{0, 120, 250}, src.Streams.Distance)

	// lap totals take precedence over stream-derived values
	assert.InDelta(t, 250, src.Stats.DistanceM, 1e-9)
	assert.InDelta(t, 60, src.Stats.DurationS, 1e-9)
	assert.InDelta(t, 4.5, src.Stats.MaxSpeedMS, 1e-9)

	// velocity derives from distance deltas when no Speed extension
	require.Len(t, src.Streams.Velocity, 3)
	assert.InDelta(t, 4.0, src.Streams.Velocity[1], 1e-9)
}

func TestTCXSkipsEmptyActivities(t *testing.T) {
	doc := `<TrainingCenterDatabase><Activities>
	  <Activity Sport="Running"><Id>x</Id><Lap><Track></Track></Lap></Activity>
	</Activities></TrainingCenterDatabase>`
	_, err := TCX([]byte(doc))
	assert.ErrorIs(t, err, errNoTrackpoints)
}

func TestDeriveGrade(t *testing.T) {
	distance := []float64{0, 100, 200, 200, 300}
	altitude := []float64{100, 105, 105, 105, 65}

	grade := deriveGrade(distance, altitude)
	require.Len(t, grade, 5)
	assert.InDelta(t, 5, grade[1], 1e-9)
	assert.InDelta(t, 5, grade[0], 1e-9) // first sample repeats the second
	assert.InDelta(t, 0, grade[2], 1e-9)
	assert.InDelta(t, 0, grade[3], 1e-9) // no movement keeps previous grade
	assert.InDelta(t, -30, grade[4], 1e-9) // clamped from -40%

	assert.Nil(t, deriveGrade([]float64{0, 1}, []float64{0}))
	assert.Nil(t, deriveGrade(nil, nil))
}

func TestHaversine(t *testing.T) {
	assert.Zero(t, haversineM(45, 5, 45, 5))
	// one degree of latitude is ~111.2 km
	assert.InDelta(t, 111200, haversineM(45, 5, 46, 5), 1000)
}

func TestFileDispatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ride.gpx")
	require.NoError(t, os.WriteFile(path, []byte(gpxRide), 0o644))

	sources, err := File(path, scan.FormatGPX)
	require.NoError(t, err)
	assert.Len(t, sources, 1)

	_, err = File(filepath.Join(dir, "missing.gpx"), scan.FormatGPX)
	assert.Error(t, err)

	_, err = File(path, scan.Format("xyz"))
	assert.Error(t, err)
}

func TestFITGarbage(t *testing.T) {
	_, err := FIT([]byte("definitely not a fit file"))
	assert.Error(t, err)
}
