package parse

import (
	"encoding/xml"
	"errors"
	"time"

	"trena/internal/activity"
)

type tcxFile struct {
	XMLName    xml.Name `xml:"TrainingCenterDatabase"`
	Activities struct {
		Activities []tcxActivity `xml:"Activity"`
	} `xml:"Activities"`
}

type tcxActivity struct {
	Sport string   `xml:"Sport,attr"`
	ID    string   `xml:"Id"`
	Laps  []tcxLap `xml:"Lap"`
}

type tcxLap struct {
	TotalTimeSeconds float64 `xml:"TotalTimeSeconds"`
	DistanceMeters   float64 `xml:"DistanceMeters"`
	MaximumSpeed     float64 `xml:"MaximumSpeed"`
	Track            struct {
		Points []tcxPoint `xml:"Trackpoint"`
	} `xml:"Track"`
}

type tcxPoint struct {
	Time     string `xml:"Time"`
	Position *struct {
		Lat float64 `xml:"LatitudeDegrees"`
		Lon float64 `xml:"LongitudeDegrees"`
	} `xml:"Position"`
	AltitudeMeters *float64 `xml:"AltitudeMeters"`
	DistanceMeters *float64 `xml:"DistanceMeters"`
	HeartRateBpm   *struct {
		Value float64 `xml:"Value"`
	} `xml:"HeartRateBpm"`
	Cadence    *float64 `xml:"Cadence"`
	Extensions struct {
		TPX struct {
			Speed *float64 `xml:"Speed"`
			Watts *float64 `xml:"Watts"`
		} `xml:"TPX"`
	} `xml:"Extensions"`
}

var errNoTrackpoints = errors.New("tcx: no trackpoints")

// TCX decodes a Training Center XML document; each <Activity> becomes
// one source activity, laps flattened into a single stream set.
func TCX(data []byte) ([]Source, error) {
	var doc tcxFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var sources []Source
	for _, act := range doc.Activities.Activities {
		src, err := tcxSource(act)
		if err != nil {
			if errors.Is(err, errNoTrackpoints) {
				continue
			}
			return nil, err
		}
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		return nil, errNoTrackpoints
	}
	return sources, nil
}

func tcxSource(act tcxActivity) (Source, error) {
	var points []tcxPoint
	var lapDist, lapTime, lapMax float64
	for _, lap := range act.Laps {
		points = append(points, lap.Track.Points...)
		lapDist += lap.DistanceMeters
		lapTime += lap.TotalTimeSeconds
		if lap.MaximumSpeed > lapMax {
			lapMax = lap.MaximumSpeed
		}
	}
	if len(points) == 0 {
		return Source{}, errNoTrackpoints
	}

	var s activity.Streams
	var start, last time.Time
	var lastDist float64
	hasPower, hasHR, hasCad := false, false, false

	for i, pt := range points {
		t, err := time.Parse(time.RFC3339, pt.Time)
		if err != nil {
			return Source{}, err
		}
		if i == 0 {
			start = t
		}

		s.Time = append(s.Time, t.Sub(start).Seconds())
		if pt.Position != nil {
			s.LatLng = append(s.LatLng, [2]float64{floor8(pt.Position.Lat), floor8(pt.Position.Lon)})
		}
		if pt.DistanceMeters != nil {
			lastDist = *pt.DistanceMeters
		}
		s.Distance = append(s.Distance, lastDist)
		if pt.AltitudeMeters != nil {
			s.Altitude = append(s.Altitude, *pt.AltitudeMeters)
		}
		if pt.HeartRateBpm != nil {
			hasHR = true
			s.HeartRate = append(s.HeartRate, pt.HeartRateBpm.Value)
		} else {
			s.HeartRate = append(s.HeartRate, 0)
		}
		if pt.Cadence != nil {
			hasCad = true
			s.Cadence = append(s.Cadence, *pt.Cadence)
		} else {
			s.Cadence = append(s.Cadence, 0)
		}
		if pt.Extensions.TPX.Watts != nil {
			hasPower = true
			s.Watts = append(s.Watts, *pt.Extensions.TPX.Watts)
		} else {
			s.Watts = append(s.Watts, 0)
		}
		if pt.Extensions.TPX.Speed != nil {
			s.Velocity = append(s.Velocity, *pt.Extensions.TPX.Speed)
		} else if i > 0 {
			dt := t.Sub(last).Seconds()
			dd := s.Distance[i] - s.Distance[i-1]
			if dt > 0 && dd >= 0 {
				s.Velocity = append(s.Velocity, dd/dt)
			} else {
				s.Velocity = append(s.Velocity, s.Velocity[i-1])
			}
		} else {
			s.Velocity = append(s.Velocity, 0)
		}
		last = t
	}

	if !hasPower {
		s.Watts = nil
	}
	if !hasHR {
		s.HeartRate = nil
	}
	if !hasCad {
		s.Cadence = nil
	}
	if len(s.LatLng) != len(s.Time) {
		s.LatLng = nil
	}
	if len(s.Altitude) != len(s.Time) {
		s.Altitude = nil
	}
	if len(s.Altitude) == len(s.Distance) {
		s.Grade = deriveGrade(s.Distance, s.Altitude)
	}

	st := absentStats()
	if lapDist > 0 {
		st.DistanceM = lapDist
	}
	if lapTime > 0 {
		st.DurationS = lapTime
	}
	if lapMax > 0 {
		st.MaxSpeedMS = lapMax
	}
	st = statsFromStreams(st, &s)

	return Source{
		Sport:         act.Sport,
		StartTime:     start,
		EndTime:       last,
		HasPowerMeter: hasPower,
		Streams:       s,
		Stats:         st,
	}, nil
}
