package activity

// Sport is the internal sport vocabulary. Source files carry whatever the
// parsing library exposes; internal/classify maps that onto this enum.
type Sport string

const (
	SportRide            Sport = "Ride"
	SportVirtualRide     Sport = "VirtualRide"
	SportEBikeRide       Sport = "EBikeRide"
	SportRun             Sport = "Run"
	SportVirtualRun      Sport = "VirtualRun"
	SportSwim            Sport = "Swim"
	SportWalk            Sport = "Walk"
	SportHike            Sport = "Hike"
	SportRowing          Sport = "Rowing"
	SportAlpineSki       Sport = "AlpineSki"
	SportNordicSki       Sport = "NordicSki"
	SportSnowboard       Sport = "Snowboard"
	SportIceSkate        Sport = "IceSkate"
	SportInlineSkate     Sport = "InlineSkate"
	SportKayaking        Sport = "Kayaking"
	SportCanoeing        Sport = "Canoeing"
	SportStandUpPaddling Sport = "StandUpPaddling"
	SportElliptical      Sport = "Elliptical"
	SportStairStepper    Sport = "StairStepper"
	SportWeightTraining  Sport = "WeightTraining"
	SportYoga            Sport = "Yoga"
	SportWorkout         Sport = "Workout"
	SportCardio          Sport = "Cardio"
	SportClimbing        Sport = "Climbing"
	SportGolf            Sport = "Golf"
	SportSailing         Sport = "Sailing"
	SportSurfing         Sport = "Surfing"
	SportWindsurf        Sport = "Windsurf"
	SportKitesurf        Sport = "Kitesurf"
	SportTriathlon       Sport = "Triathlon"
	SportOther           Sport = "Other"
)

// IsRide reports whether the sport belongs to the cycling family.
// allTypes widens the family to assisted/virtual rides.
func (s Sport) IsRide(allTypes bool) bool {
	if s == SportRide {
		return true
	}
	if allTypes {
		return s == SportVirtualRide || s == SportEBikeRide
	}
	return false
}

// IsRun reports whether the sport belongs to the running family.
func (s Sport) IsRun() bool {
	return s == SportRun || s == SportVirtualRun
}

// IsSwim reports whether the sport is swimming.
func (s Sport) IsSwim() bool {
	return s == SportSwim
}
