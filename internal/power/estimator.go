// Package power estimates cycling power output from speed, grade and
// rider mass with a steady-state physical model: gravity along the
// slope, rolling resistance and aerodynamic drag, corrected for
// drivetrain loss. Used to synthesize a watts stream for rides recorded
// without a power meter.
package power

import (
	"errors"
	"math"
)

// Params tune the physical model. Zero values are replaced by defaults
// in Estimate; the defaults are calibration data matched against the
// original estimator's reference outputs, keep them as-is.
type Params struct {
	RiderWeightKg        float64
	BikeWeightKg         float64
	GradePercentage      float64
	HeadWindSpeedKph     float64
	WindDraftingFactor   float64
	RollingResistance    float64
	DragCoefficient      float64
	FrontalAreaM2        float64
	AirDensityKgM3       float64
	DrivetrainLossPct    float64
}

func defaults() Params {
	return Params{
		RiderWeightKg:      75,
		BikeWeightKg:       11,
		WindDraftingFactor: 1,
		RollingResistance:  0.005,
		DragCoefficient:    0.63,
		FrontalAreaM2:      0.509,
		AirDensityKgM3:     1.226,
		DrivetrainLossPct:  2,
	}
}

const gravity = 9.8067

// Estimate returns the estimated rider output in watts for a steady
// speed (kph) under the given params. Freewheeling (net negative force)
// yields 0, never negative power. The result is rounded to 2 decimals.
func Estimate(speedKph float64, p Params) float64 {
	d := defaults()
	if p.RiderWeightKg <= 0 {
		p.RiderWeightKg = d.RiderWeightKg
	}
	if p.BikeWeightKg <= 0 {
		p.BikeWeightKg = d.BikeWeightKg
	}
	if p.WindDraftingFactor <= 0 {
		p.WindDraftingFactor = d.WindDraftingFactor
	}
	if p.RollingResistance <= 0 {
		p.RollingResistance = d.RollingResistance
	}
	if p.DragCoefficient <= 0 {
		p.DragCoefficient = d.DragCoefficient
	}
	if p.FrontalAreaM2 <= 0 {
		p.FrontalAreaM2 = d.FrontalAreaM2
	}
	if p.AirDensityKgM3 <= 0 {
		p.AirDensityKgM3 = d.AirDensityKgM3
	}
	if p.DrivetrainLossPct <= 0 {
		p.DrivetrainLossPct = d.DrivetrainLossPct
	}

	totalWeight := p.RiderWeightKg + p.BikeWeightKg
	speedMS := speedKph / 3.6
	headWindMS := p.HeadWindSpeedKph / 3.6
	slope := math.Atan(p.GradePercentage / 100)

	forceGravity := gravity * math.Sin(slope) * totalWeight
	forceRolling := gravity * math.Cos(slope) * totalWeight * p.RollingResistance
	forceDrag := 0.5 * p.DragCoefficient * p.FrontalAreaM2 * p.AirDensityKgM3 *
		math.Pow(speedMS+headWindMS, 2) * p.WindDraftingFactor

	wheelPower := (forceGravity + forceRolling + forceDrag) * speedMS
	legPower := wheelPower / (1 - p.DrivetrainLossPct/100)
	if legPower <= 0 {
		return 0
	}
	return math.Round(legPower*100) / 100
}

// ErrMissingStreams is returned when the velocity and grade channels do
// not line up sample for sample.
var ErrMissingStreams = errors.New("velocity and grade streams required and must have equal length")

// EstimateStream synthesizes a watts stream from parallel velocity (m/s)
// and grade (%) streams for a rider of the given weight.
func EstimateStream(velocityMS, gradePct []float64, riderWeightKg float64) ([]float64, error) {
	if len(velocityMS) == 0 || len(velocityMS) != len(gradePct) {
		return nil, ErrMissingStreams
	}
	watts := make([]float64, len(velocityMS))
	for i, v := range velocityMS {
		watts[i] = Estimate(v*3.6, Params{
			RiderWeightKg:   riderWeightKg,
			GradePercentage: gradePct[i],
		})
	}
	return watts, nil
}
