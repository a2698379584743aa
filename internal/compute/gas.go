package compute

// GradeAdjustedSpeed approximates the flat-equivalent running speed for
// each sample: uphill effort counts as faster flat running, downhill as
// slower. The 1.5 factor matches the grade adjustment used by the sport
// detection heuristic.
func GradeAdjustedSpeed(velocity, grade []float64) []float64 {
	if len(velocity) == 0 || len(velocity) != len(grade) {
		return nil
	}
	out := make([]float64, len(velocity))
	for i, v := range velocity {
		adjusted := v * (1 + grade[i]/100*1.5)
		if adjusted < 0 {
			adjusted = 0
		}
		out[i] = adjusted
	}
	return out
}
