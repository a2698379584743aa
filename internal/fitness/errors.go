package fitness

// Stable error codes surfaced to API consumers. Callers switch on Code,
// not on the message text.
const (
	CodeNoActivities    = "no_activities"
	CodeAllFiltered     = "all_activities_filtered"
	CodeMissingSettings = "missing_athlete_settings"
)

// Error is a trend computation failure. All three causes abort the whole
// computation; there are no partial trend results.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func errNoActivities() *Error {
	return &Error{Code: CodeNoActivities, Message: "no activities available to compute a fitness trend"}
}

func errAllFiltered() *Error {
	return &Error{Code: CodeAllFiltered, Message: "all activities were excluded by the configured filters"}
}

func errMissingSettings(activityID string) *Error {
	return &Error{
		Code:    CodeMissingSettings,
		Message: "activity " + activityID + " carries no athlete settings snapshot",
	}
}
