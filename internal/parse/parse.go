// Package parse converts raw activity files (FIT, GPX, TCX) into
// normalized in-memory source activities with parallel sensor streams.
// FIT decoding sits on github.com/tormoder/fit; GPX and TCX are plain
// XML documents decoded directly.
package parse

import (
	"fmt"
	"math"
	"os"
	"time"

	"trena/internal/activity"
	"trena/internal/scan"
)

// Stats are the file-level statistics of one source activity. Absent
// values are NaN, not zero, so downstream heuristics can tell "no data"
// from "zero".
type Stats struct {
	DistanceM  float64
	DurationS  float64 // elapsed
	PauseS     float64
	AscentM    float64
	AvgSpeedMS float64
	MaxSpeedMS float64
}

func absentStats() Stats {
	nan := math.NaN()
	return Stats{nan, nan, nan, nan, nan, nan}
}

// Source is one normalized activity out of a parsed file. A single file
// may contain several (multisport recordings); transition segments are
// flagged so the sync loop can skip them.
type Source struct {
	Sport         string // parser-level vocabulary, mapped later by classify
	StartTime     time.Time
	EndTime       time.Time
	HasPowerMeter bool
	Trainer       bool
	Transition    bool
	Streams       activity.Streams
	Stats         Stats
}

// File reads and parses one activity file into its source activities.
func File(path string, format scan.Format) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case scan.FormatFIT:
		return FIT(data)
	case scan.FormatGPX:
		return GPX(data)
	case scan.FormatTCX:
		return TCX(data)
	}
	return nil, fmt.Errorf("unsupported activity file format %q", format)
}

// deriveGrade computes a grade (%) stream from cumulative distance and
// altitude. Slopes are clamped to +-30% to keep GPS noise out of the
// power estimation downstream.
func deriveGrade(distance, altitude []float64) []float64 {
	if len(distance) == 0 || len(distance) != len(altitude) {
		return nil
	}
	grade := make([]float64, len(distance))
	for i := 1; i < len(distance); i++ {
		dd := distance[i] - distance[i-1]
		if dd <= 0 {
			grade[i] = grade[i-1]
			continue
		}
		g := (altitude[i] - altitude[i-1]) / dd * 100
		if g > 30 {
			g = 30
		}
		if g < -30 {
			g = -30
		}
		grade[i] = g
	}
	if len(grade) > 1 {
		grade[0] = grade[1]
	}
	return grade
}

// statsFromStreams fills absent stat values from the extracted streams.
func statsFromStreams(st Stats, s *activity.Streams) Stats {
	if math.IsNaN(st.DistanceM) && len(s.Distance) > 0 {
		st.DistanceM = s.Distance[len(s.Distance)-1]
	}
	if math.IsNaN(st.DurationS) && len(s.Time) > 1 {
		st.DurationS = s.Time[len(s.Time)-1] - s.Time[0]
	}
	if len(s.Velocity) > 0 {
		var sum, max float64
		for _, v := range s.Velocity {
			sum += v
			if v > max {
				max = v
			}
		}
		if math.IsNaN(st.AvgSpeedMS) {
			st.AvgSpeedMS = sum / float64(len(s.Velocity))
		}
		if math.IsNaN(st.MaxSpeedMS) {
			st.MaxSpeedMS = max
		}
	}
	if math.IsNaN(st.AscentM) && len(s.Altitude) > 1 {
		var ascent float64
		for i := 1; i < len(s.Altitude); i++ {
			if d := s.Altitude[i] - s.Altitude[i-1]; d > 0 {
				ascent += d
			}
		}
		st.AscentM = ascent
	}
	return st
}

// haversineM is the great-circle distance between two points in meters.
func haversineM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000.0
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}
	lat1R := lat1 * math.Pi / 180
	lat2R := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1R)*math.Cos(lat2R)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
