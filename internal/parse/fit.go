package parse

import (
	"bytes"
	"math"
	"strings"
	"time"

	"github.com/tormoder/fit"

	"trena/internal/activity"
)

const semicirclesToDeg = 180.0 / 2147483648.0 // 2^31

// FIT decodes a FIT file into source activities, one per session. Raw
// FIT field scaling per the FIT profile:
//
//	total_timer_time / total_elapsed_time: seconds, scale 1000
//	total_distance: meters, scale 100
//	speed: m/s, scale 1000
//	altitude: meters, scale 5, offset 500
func FIT(data []byte) ([]Source, error) {
	fd, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	af, err := fd.Activity()
	if err != nil {
		return nil, err
	}
	if len(af.Sessions) == 0 {
		return nil, nil
	}

	var sources []Source
	for _, s := range af.Sessions {
		elapsed := float64(s.TotalElapsedTime) / 1000.0
		timer := float64(s.TotalTimerTime) / 1000.0
		start := s.StartTime.UTC()
		end := start.Add(time.Duration(elapsed * float64(time.Second)))

		st := absentStats()
		if s.TotalDistance > 0 {
			st.DistanceM = float64(s.TotalDistance) / 100.0
		}
		if elapsed > 0 {
			st.DurationS = elapsed
			if timer > 0 && elapsed > timer {
				st.PauseS = elapsed - timer
			}
		}
		if s.TotalAscent != 0xFFFF {
			st.AscentM = float64(s.TotalAscent)
		}
		if s.AvgSpeed != 0xFFFF {
			st.AvgSpeedMS = float64(s.AvgSpeed) / 1000.0
		}
		if s.MaxSpeed != 0xFFFF {
			st.MaxSpeedMS = float64(s.MaxSpeed) / 1000.0
		}

		streams, hasPower := fitStreams(af.Records, start, end)
		st = statsFromStreams(st, &streams)

		sport := s.Sport.String()
		sub := strings.ToLower(s.SubSport.String())
		sources = append(sources, Source{
			Sport:         sport,
			StartTime:     start,
			EndTime:       end,
			HasPowerMeter: hasPower,
			Trainer: strings.Contains(sub, "indoor") || strings.Contains(sub, "trainer") ||
				strings.Contains(sub, "virtual"),
			Transition: strings.EqualFold(sport, "transition"),
			Streams:    streams,
			Stats:      st,
		})
	}
	return sources, nil
}

// fitStreams extracts the records belonging to [start, end] into parallel
// channels. Sensor values of 255 (invalid per FIT) and zero positions are
// dropped; a missing sample repeats the previous one so every channel
// stays index-aligned with time.
func fitStreams(records []*fit.RecordMsg, start, end time.Time) (activity.Streams, bool) {
	var s activity.Streams
	hasPower := false

	var lastLat, lastLng, lastDist, lastAlt, lastSpeed, lastHR, lastCad, lastWatts float64
	havePos, haveAlt := false, false

	for _, rr := range records {
		if rr.Timestamp.Before(start) || rr.Timestamp.After(end) {
			continue
		}
		s.Time = append(s.Time, rr.Timestamp.Sub(start).Seconds())

		if rr.PositionLat.Semicircles() != 0 && rr.PositionLong.Semicircles() != 0 {
			lat := float64(rr.PositionLat.Semicircles()) * semicirclesToDeg
			lng := float64(rr.PositionLong.Semicircles()) * semicirclesToDeg
			if lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180 {
				lastLat, lastLng = floor8(lat), floor8(lng)
				havePos = true
			}
		}
		if havePos {
			s.LatLng = append(s.LatLng, [2]float64{lastLat, lastLng})
		}

		if rr.Distance != 0xFFFFFFFF && rr.Distance != 0 {
			lastDist = float64(rr.Distance) / 100.0
		}
		s.Distance = append(s.Distance, lastDist)

		if rr.Speed != 0xFFFF {
			lastSpeed = float64(rr.Speed) / 1000.0
		}
		s.Velocity = append(s.Velocity, lastSpeed)

		if rr.Altitude != 0xFFFF && rr.Altitude != 0 {
			lastAlt = float64(rr.Altitude)/5.0 - 500.0
			haveAlt = true
		}
		if haveAlt {
			s.Altitude = append(s.Altitude, lastAlt)
		}

		if rr.HeartRate != 0xFF && rr.HeartRate != 0 {
			lastHR = float64(rr.HeartRate)
		}
		s.HeartRate = append(s.HeartRate, lastHR)

		if rr.Cadence != 0xFF {
			lastCad = float64(rr.Cadence)
		}
		s.Cadence = append(s.Cadence, lastCad)

		if rr.Power != 0xFFFF && rr.Power != 0 {
			lastWatts = float64(rr.Power)
			hasPower = true
		}
		s.Watts = append(s.Watts, lastWatts)
	}

	// Drop ragged optional channels rather than emit short ones.
	if len(s.LatLng) != len(s.Time) {
		s.LatLng = nil
	}
	if len(s.Altitude) != len(s.Time) {
		s.Altitude = nil
	}
	if !hasPower {
		s.Watts = nil
	}
	if allZero(s.HeartRate) {
		s.HeartRate = nil
	}
	if allZero(s.Cadence) {
		s.Cadence = nil
	}
	if len(s.Altitude) == len(s.Distance) {
		s.Grade = deriveGrade(s.Distance, s.Altitude)
	}
	return s, hasPower
}

func allZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func floor8(v float64) float64 {
	return math.Floor(v*1e8) / 1e8
}
