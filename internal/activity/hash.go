package activity

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"
)

// ShortHash returns the first 6 hex chars of the sha1 of s. Short enough
// to embed in identifiers and file names, long enough that collisions
// within one athlete's history are not a practical concern.
func ShortHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:6]
}

// MakeID derives the stable activity identifier from the start and end
// times: shortHash(startISO)-shortHash(endISO). Two files describing the
// same recording produce the same id.
func MakeID(start, end time.Time) string {
	return ShortHash(start.UTC().Format(time.RFC3339)) + "-" + ShortHash(end.UTC().Format(time.RFC3339))
}

// ContentHash computes an integrity hash over the canonical fields of a
// synced activity. A re-sync that changes any of these yields a new hash,
// which is the signal to update the stored record.
func ContentHash(a *Synced) string {
	canonical := fmt.Sprintf("%s|%s|%s|%s|%s|%t|%t",
		a.ID,
		a.Name,
		a.Type,
		a.StartTime.UTC().Format(time.RFC3339),
		a.EndTime.UTC().Format(time.RFC3339),
		a.HasPowerMeter,
		a.Trainer,
	)
	if a.Stats != nil {
		canonical += fmt.Sprintf("|%.1f|%.1f|%.1f|%.4f|%.4f|%.4f|%.4f|%.4f",
			a.Stats.DistanceM,
			a.Stats.MovingTimeS,
			a.Stats.ElevationGainM,
			a.Stats.Scores.TRIMP,
			a.Stats.Scores.HRSS,
			a.Stats.Scores.PSS,
			a.Stats.Scores.RSS,
			a.Stats.Scores.SSS,
		)
	}
	sum := sha1.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:])[:24]
}

// Day moment boundaries for generated activity names.
const (
	splitAfternoonAt = 12
	splitEveningAt   = 17
)

// DayMoment humanizes the time of day an activity started.
func DayMoment(t time.Time) string {
	h := t.Hour()
	switch {
	case h >= splitAfternoonAt && h <= splitEveningAt:
		return "Afternoon"
	case h > splitEveningAt:
		return "Evening"
	default:
		return "Morning"
	}
}

// MakeName builds the generated activity name, e.g. "Morning Ride", with
// a "#detected" marker when the sport came from the detection heuristic.
func MakeName(start time.Time, sport Sport, autoDetected bool) string {
	name := DayMoment(start) + " " + string(sport)
	if autoDetected {
		name += " #detected"
	}
	return name
}
