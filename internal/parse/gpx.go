package parse

import (
	"encoding/xml"
	"errors"
	"time"

	"trena/internal/activity"
)

type gpxFile struct {
	XMLName xml.Name   `xml:"gpx"`
	Tracks  []gpxTrack `xml:"trk"`
}

type gpxTrack struct {
	Name     string `xml:"name"`
	Type     string `xml:"type"`
	Segments []struct {
		Points []gpxPoint `xml:"trkpt"`
	} `xml:"trkseg"`
}

type gpxPoint struct {
	Lat        float64  `xml:"lat,attr"`
	Lon        float64  `xml:"lon,attr"`
	Elevation  *float64 `xml:"ele"`
	Time       string   `xml:"time"`
	Extensions struct {
		Power float64 `xml:"power"`
		TPX   struct {
			HR      float64 `xml:"hr"`
			Cadence float64 `xml:"cad"`
		} `xml:"TrackPointExtension"`
	} `xml:"extensions"`
}

var errNoTrackPoints = errors.New("gpx: no track points")

// GPX decodes a GPX document. Each <trk> becomes one source activity;
// distance is accumulated great-circle length, velocity and grade derive
// from the point deltas.
func GPX(data []byte) ([]Source, error) {
	var doc gpxFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var sources []Source
	for _, trk := range doc.Tracks {
		var points []gpxPoint
		for _, seg := range trk.Segments {
			points = append(points, seg.Points...)
		}
		if len(points) == 0 {
			continue
		}
		src, err := gpxSource(trk, points)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		return nil, errNoTrackPoints
	}
	return sources, nil
}

func gpxSource(trk gpxTrack, points []gpxPoint) (Source, error) {
	var s activity.Streams
	var start, last time.Time
	var cumDist float64
	hasPower, hasHR, hasCad := false, false, false

	for i, pt := range points {
		t, err := time.Parse(time.RFC3339, pt.Time)
		if err != nil {
			return Source{}, err
		}
		if i == 0 {
			start = t
		}

		if i > 0 {
			prev := points[i-1]
			cumDist += haversineM(prev.Lat, prev.Lon, pt.Lat, pt.Lon)
			dt := t.Sub(last).Seconds()
			if dt > 0 {
				s.Velocity = append(s.Velocity, haversineM(prev.Lat, prev.Lon, pt.Lat, pt.Lon)/dt)
			} else {
				s.Velocity = append(s.Velocity, s.Velocity[len(s.Velocity)-1])
			}
		} else {
			s.Velocity = append(s.Velocity, 0)
		}
		last = t

		s.Time = append(s.Time, t.Sub(start).Seconds())
		s.LatLng = append(s.LatLng, [2]float64{floor8(pt.Lat), floor8(pt.Lon)})
		s.Distance = append(s.Distance, cumDist)
		if pt.Elevation != nil {
			s.Altitude = append(s.Altitude, *pt.Elevation)
		}
		if pt.Extensions.Power > 0 {
			hasPower = true
		}
		s.Watts = append(s.Watts, pt.Extensions.Power)
		if pt.Extensions.TPX.HR > 0 {
			hasHR = true
		}
		s.HeartRate = append(s.HeartRate, pt.Extensions.TPX.HR)
		if pt.Extensions.TPX.Cadence > 0 {
			hasCad = true
		}
		s.Cadence = append(s.Cadence, pt.Extensions.TPX.Cadence)
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
	if len(s.Altitude) != len(s.Time) {
		s.Altitude = nil
	}
	if len(s.Altitude) == len(s.Distance) {
		s.Grade = deriveGrade(s.Distance, s.Altitude)
	}

	st := statsFromStreams(absentStats(), &s)

	return Source{
		Sport:         trk.Type,
		StartTime:     start,
		EndTime:       last,
		HasPowerMeter: hasPower,
		Streams:       s,
		Stats:         st,
	}, nil
}
