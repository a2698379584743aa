package activity

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
)

// Streams holds the parallel, time-indexed sensor channels of an activity.
// Every non-nil channel except Time has the same length as Time, so one
// index addresses one sample across channels. Watts may be synthesized
// after parsing (estimated cycling power); everything else is read-only
// once extracted from the source file.
type Streams struct {
	Time               []float64    `json:"time,omitempty"`
	LatLng             [][2]float64 `json:"latlng,omitempty"`
	Distance           []float64    `json:"distance,omitempty"`
	Velocity           []float64    `json:"velocity_smooth,omitempty"`
	HeartRate          []float64    `json:"heartrate,omitempty"`
	Altitude           []float64    `json:"altitude,omitempty"`
	Cadence            []float64    `json:"cadence,omitempty"`
	Watts              []float64    `json:"watts,omitempty"`
	Grade              []float64    `json:"grade_smooth,omitempty"`
	GradeAdjustedSpeed []float64    `json:"grade_adjusted_speed,omitempty"`
}

func (s *Streams) Empty() bool {
	return s == nil || len(s.Time) == 0
}

// Deflate serializes the streams to gzip-compressed JSON, the payload
// shape attached to activity-created sync events.
func (s *Streams) Deflate() ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(s); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Inflate is the inverse of Deflate.
func Inflate(data []byte) (*Streams, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	var s Streams
	if err := json.NewDecoder(zr).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// BaryCenter returns the mean point of the latlng channel, or nil when
// the activity has no position data.
func (s *Streams) BaryCenter() *[2]float64 {
	if s == nil || len(s.LatLng) == 0 {
		return nil
	}
	var lat, lng float64
	for _, p := range s.LatLng {
		lat += p[0]
		lng += p[1]
	}
	n := float64(len(s.LatLng))
	return &[2]float64{lat / n, lng / n}
}
