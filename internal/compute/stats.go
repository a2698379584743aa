// Package compute derives the extended statistics of a synced activity:
// per-discipline training stress scores and heart rate zone
// distributions, from the sensor streams and the athlete snapshot valid
// on the activity date.
package compute

import (
	"math"

	"trena/internal/activity"
)

// Banister exponent coefficients; the female variant applies when the
// snapshot says so.
const (
	trimpCoeffMale   = 1.92
	trimpCoeffFemale = 1.67
)

// Stats computes the extended stats, filling primitive values from the
// source when the streams cannot provide them. sourceElapsed,
// sourceMoving, sourceDistance and sourceAscent may be NaN for "absent".
func Stats(bare *activity.Bare, streams *activity.Streams, snapshot *activity.AthleteSnapshot,
	sourceElapsed, sourceMoving, sourceDistance, sourceAscent float64) *activity.Stats {

	st := &activity.Stats{}

	st.ElapsedTimeS = bare.DurationS()
	if !math.IsNaN(sourceElapsed) && sourceElapsed > 0 {
		st.ElapsedTimeS = sourceElapsed
	}
	st.MovingTimeS = st.ElapsedTimeS
	if !math.IsNaN(sourceMoving) && sourceMoving > 0 {
		st.MovingTimeS = sourceMoving
	}

	if !streams.Empty() && len(streams.Distance) > 0 {
		st.DistanceM = streams.Distance[len(streams.Distance)-1]
	} else if !math.IsNaN(sourceDistance) && sourceDistance > 0 {
		st.DistanceM = sourceDistance
	}

	if !math.IsNaN(sourceAscent) && sourceAscent > 0 {
		st.ElevationGainM = sourceAscent
	} else if streams != nil {
		st.ElevationGainM = ascentFromAltitude(streams.Altitude)
	}

	if streams != nil && len(streams.Velocity) > 0 {
		var sum, max float64
		for _, v := range streams.Velocity {
			sum += v
			if v > max {
				max = v
			}
		}
		st.AvgSpeedMS = sum / float64(len(streams.Velocity))
		st.MaxSpeedMS = max
	} else if st.MovingTimeS > 0 {
		st.AvgSpeedMS = st.DistanceM / st.MovingTimeS
	}

	if streams != nil && len(streams.HeartRate) > 0 {
		var sum, max float64
		for _, hr := range streams.HeartRate {
			sum += hr
			if hr > max {
				max = hr
			}
		}
		st.AvgHR = sum / float64(len(streams.HeartRate))
		st.MaxHR = max
	}

	if snapshot != nil {
		settings := snapshot.Settings
		st.Scores.TRIMP = TRIMP(st.MovingTimeS, st.AvgHR, settings, snapshot.Gender)
		st.Scores.HRSS = HRSS(st.Scores.TRIMP, settings, snapshot.Gender)
		if bare.Type.IsRide(true) && settings.CyclingFTP > 0 {
			st.Scores.PSS = PSS(streams, st.MovingTimeS, settings.CyclingFTP)
		}
		if bare.Type.IsRun() && settings.RunningFTP > 0 {
			st.Scores.RSS = RSS(streams, st.MovingTimeS, settings.RunningFTP)
		}
		if bare.Type.IsSwim() && settings.SwimFTP > 0 {
			st.Scores.SSS = SSS(st.DistanceM, st.MovingTimeS, settings.SwimFTP)
		}
		st.HRZones = HRZoneDistribution(streams, settings.MaxHR)
	}

	return st
}

func ascentFromAltitude(altitude []float64) float64 {
	var ascent float64
	for i := 1; i < len(altitude); i++ {
		if d := altitude[i] - altitude[i-1]; d > 0 {
			ascent += d
		}
	}
	return ascent
}

// TRIMP is Banister's training impulse: minutes x heart-rate-reserve
// ratio x e^(b x ratio).
func TRIMP(movingTimeS, avgHR float64, s activity.AthleteSettings, gender string) float64 {
	if avgHR <= 0 || movingTimeS <= 0 {
		return 0
	}
	reserve := s.MaxHR - s.RestHR
	if reserve <= 0 {
		return 0
	}
	ratio := (avgHR - s.RestHR) / reserve
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	b := trimpCoeffMale
	if gender == "female" {
		b = trimpCoeffFemale
	}
	return (movingTimeS / 60) * ratio * math.Exp(b*ratio)
}

// HRSS normalizes TRIMP so one hour at lactate threshold scores 100.
func HRSS(trimp float64, s activity.AthleteSettings, gender string) float64 {
	if trimp <= 0 {
		return 0
	}
	reserve := s.MaxHR - s.RestHR
	if reserve <= 0 {
		return 0
	}
	lthrRatio := (s.EffectiveLTHR() - s.RestHR) / reserve
	if lthrRatio <= 0 {
		return 0
	}
	b := trimpCoeffMale
	if gender == "female" {
		b = trimpCoeffFemale
	}
	lthrHourTrimp := 60 * lthrRatio * math.Exp(b*lthrRatio)
	if lthrHourTrimp <= 0 {
		return 0
	}
	return trimp / lthrHourTrimp * 100
}

// normalizedPower applies the classic 30-sample rolling average to the
// watts stream and takes the fourth-power mean.
func normalizedPower(watts []float64) float64 {
	if len(watts) == 0 {
		return 0
	}
	const window = 30
	var sum4 float64
	var n int
	var rolling float64
	for i := range watts {
		rolling += watts[i]
		if i >= window {
			rolling -= watts[i-window]
		}
		count := float64(window)
		if i < window-1 {
			count = float64(i + 1)
		}
		avg := rolling / count
		sum4 += math.Pow(avg, 4)
		n++
	}
	return math.Pow(sum4/float64(n), 0.25)
}

// PSS is the power stress score: an hour at FTP scores 100.
func PSS(streams *activity.Streams, movingTimeS, cyclingFTP float64) float64 {
	if streams == nil || len(streams.Watts) == 0 || movingTimeS <= 0 {
		return 0
	}
	np := normalizedPower(streams.Watts)
	if np <= 0 {
		return 0
	}
	intensity := np / cyclingFTP
	return (movingTimeS * np * intensity) / (cyclingFTP * 3600) * 100
}

// RSS is the running stress score against the athlete's threshold
// running speed (m/s), grade-adjusted when that stream is present.
func RSS(streams *activity.Streams, movingTimeS, runningFTP float64) float64 {
	if streams == nil || movingTimeS <= 0 {
		return 0
	}
	speeds := streams.GradeAdjustedSpeed
	if len(speeds) == 0 {
		speeds = streams.Velocity
	}
	if len(speeds) == 0 {
		return 0
	}
	var sum float64
	for _, v := range speeds {
		sum += v
	}
	avg := sum / float64(len(speeds))
	if avg <= 0 {
		return 0
	}
	intensity := avg / runningFTP
	return (movingTimeS / 3600) * intensity * intensity * 100
}

// SSS is the swim stress score; swimFTP is the threshold pace in m/min.
func SSS(distanceM, movingTimeS, swimFTP float64) float64 {
	if distanceM <= 0 || movingTimeS <= 0 || swimFTP <= 0 {
		return 0
	}
	speedPerMin := distanceM / (movingTimeS / 60)
	intensity := speedPerMin / swimFTP
	return (movingTimeS / 3600) * math.Pow(intensity, 3) * 100
}

// HRZoneDistribution buckets time into the standard five zones at
// 50/60/70/80/90/100% of max heart rate.
func HRZoneDistribution(streams *activity.Streams, maxHR float64) []activity.HRZone {
	if streams == nil || maxHR <= 0 || len(streams.HeartRate) < 2 || len(streams.Time) != len(streams.HeartRate) {
		return nil
	}
	thresholds := []float64{maxHR * 0.50, maxHR * 0.60, maxHR * 0.70, maxHR * 0.80, maxHR * 0.90, maxHR}
	zoneTimes := make([]int, 5)
	for i := 0; i < len(streams.HeartRate)-1; i++ {
		hr := streams.HeartRate[i]
		duration := int(streams.Time[i+1] - streams.Time[i])
		for z := 0; z < 5; z++ {
			if hr >= thresholds[z] && hr < thresholds[z+1] {
				zoneTimes[z] += duration
				break
			}
		}
	}
	var zones []activity.HRZone
	for i, seconds := range zoneTimes {
		if seconds > 0 {
			zones = append(zones, activity.HRZone{Zone: i + 1, TimeSeconds: seconds})
		}
	}
	return zones
}
