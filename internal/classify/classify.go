// Package classify maps the sport vocabulary of parsed activity files
// onto the internal sport enum, falling back to a calibrated heuristic
// when a file carries a sport we do not know.
package classify

import (
	"math"
	"strings"

	"trena/internal/activity"
)

// sportMap translates parser-level sport names (FIT profile sports, GPX
// track types, TCX sport attributes) to the internal enum. Keys are
// lower-cased and stripped of separators before lookup.
var sportMap = map[string]activity.Sport{
	"cycling":              activity.SportRide,
	"biking":               activity.SportRide,
	"road_biking":          activity.SportRide,
	"mountain_biking":      activity.SportRide,
	"indoor_cycling":       activity.SportRide,
	"virtual_cycling":      activity.SportVirtualRide,
	"virtual_ride":         activity.SportVirtualRide,
	"e_biking":             activity.SportEBikeRide,
	"running":              activity.SportRun,
	"indoor_running":       activity.SportRun,
	"trail_running":        activity.SportRun,
	"treadmill":            activity.SportRun,
	"virtual_running":      activity.SportVirtualRun,
	"virtual_run":          activity.SportVirtualRun,
	"swimming":             activity.SportSwim,
	"open_water_swimming":  activity.SportSwim,
	"lap_swimming":         activity.SportSwim,
	"walking":              activity.SportWalk,
	"nordic_walking":       activity.SportWalk,
	"hiking":               activity.SportHike,
	"trekking":             activity.SportHike,
	"rowing":               activity.SportRowing,
	"indoor_rowing":        activity.SportRowing,
	"alpine_skiing":        activity.SportAlpineSki,
	"downhill_skiing":      activity.SportAlpineSki,
	"cross_country_skiing": activity.SportNordicSki,
	"snowboarding":         activity.SportSnowboard,
	"ice_skating":          activity.SportIceSkate,
	"inline_skating":       activity.SportInlineSkate,
	"kayaking":             activity.SportKayaking,
	"canoeing":             activity.SportCanoeing,
	"paddling":             activity.SportCanoeing,
	"stand_up_paddleboarding": activity.SportStandUpPaddling,
	"elliptical":           activity.SportElliptical,
	"elliptical_trainer":   activity.SportElliptical,
	"stair_climbing":       activity.SportStairStepper,
	"strength_training":    activity.SportWeightTraining,
	"weight_training":      activity.SportWeightTraining,
	"yoga":                 activity.SportYoga,
	"training":             activity.SportWorkout,
	"fitness_equipment":    activity.SportWorkout,
	"generic":              activity.SportWorkout,
	"workout":              activity.SportWorkout,
	"cardio_training":      activity.SportCardio,
	"rock_climbing":        activity.SportClimbing,
	"golf":                 activity.SportGolf,
	"sailing":              activity.SportSailing,
	"surfing":              activity.SportSurfing,
	"windsurfing":          activity.SportWindsurf,
	"kitesurfing":          activity.SportKitesurf,
	"triathlon":            activity.SportTriathlon,
}

// SourceStats are the file-level statistics the heuristic needs.
type SourceStats struct {
	DistanceM  float64
	DurationS  float64
	AscentM    float64
	AvgSpeedMS float64
	MaxSpeedMS float64
}

// Result is the classification outcome. AutoDetected marks sports that
// came from the heuristic rather than the mapping table.
type Result struct {
	Sport        activity.Sport
	AutoDetected bool
}

func normalize(libSport string) string {
	s := strings.ToLower(strings.TrimSpace(libSport))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// Map performs the static table lookup only.
func Map(libSport string) (activity.Sport, bool) {
	sport, ok := sportMap[normalize(libSport)]
	return sport, ok
}

// Classify resolves an internal sport for a parser-level sport name. On a
// table miss, it runs the common-sport detection heuristic when enabled,
// otherwise returns Other.
func Classify(libSport string, detectWhenUnknown bool, stats SourceStats) Result {
	if sport, ok := Map(libSport); ok {
		return Result{Sport: sport}
	}
	if detectWhenUnknown {
		sport := AttemptDetectCommonSport(stats.DistanceM, stats.DurationS, stats.AscentM, stats.AvgSpeedMS, stats.MaxSpeedMS)
		return Result{Sport: sport, AutoDetected: sport != activity.SportOther}
	}
	return Result{Sport: activity.SportOther}
}

// Speed ceilings above which an activity cannot plausibly be running.
const (
	maxCyclingSpeedThreshold = 100.0 / 3.6 // 100 kph in m/s
	maxRunningSpeedThreshold = 40.0 / 3.6  // 40 kph in m/s
)

// maxAvgRunningSpeedForDistance models the highest running average speed
// plausible over the given distance, in m/s. The curve is fitted against
// elite performances at 0.4/1/5/10/21/42 km and scaled by the share of
// that performance a well-trained athlete can reach. Calibration data:
// do not re-derive.
func maxAvgRunningSpeedForDistance(meters float64) float64 {
	const perfRatio = 0.8
	const y0 = 21.485097981749487
	const a = 7.086180143945561
	const x0 = -0.19902800428936693
	return ((y0 + a/(meters/1000-x0)) / 3.6) * perfRatio
}

// isAssisted flags efforts whose climb rate is beyond unassisted riding
// (lift-served or motor-assisted), which we refuse to classify.
func isAssisted(distanceM, durationS, ascentM float64) bool {
	criteria := math.Pow(ascentM, 2) / ((distanceM / 1000) * (durationS / 60)) / 1000
	return criteria >= 1
}

// AttemptDetectCommonSport guesses Ride vs Run from distance (m),
// duration (s), ascent (m) and average/max speed (m/s). It is a
// heuristic: inconclusive inputs yield Other.
func AttemptDetectCommonSport(distanceM, durationS, ascentM, avgSpeedMS, maxSpeedMS float64) activity.Sport {
	if maxSpeedMS > 0 {
		if maxSpeedMS >= maxCyclingSpeedThreshold || maxSpeedMS >= maxRunningSpeedThreshold {
			if isAssisted(distanceM, durationS, ascentM) {
				return activity.SportOther
			}
			return activity.SportRide
		}
	}

	if avgSpeedMS > 0 && distanceM > 0 && maxSpeedMS > 0 {
		maxAvgRunningSpeed := maxAvgRunningSpeedForDistance(distanceM)

		grade := (ascentM / distanceM) * 1000
		gradeSpeed := avgSpeedMS + avgSpeedMS*(grade/100)*1.5

		if gradeSpeed > maxAvgRunningSpeed {
			if isAssisted(distanceM, durationS, ascentM) {
				return activity.SportOther
			}
			return activity.SportRide
		}

		// Cubic discriminant on the spread between max and average speed:
		// large spreads at high max speeds highlight rides. The +-0.2 band
		// around 1 leaves borderline activities unclassified.
		highlightRide := (math.Pow(maxSpeedMS-avgSpeedMS, 3) * math.Pow(maxSpeedMS, 4) / math.Pow(10, 4)) * 2 / 5
		const decisionSecureTolerance = 0.2

		if highlightRide > 1+decisionSecureTolerance {
			return activity.SportRide
		}
		if highlightRide < 1-decisionSecureTolerance {
			return activity.SportRun
		}
	}

	return activity.SportOther
}
