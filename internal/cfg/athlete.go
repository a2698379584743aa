package cfg

import (
	"trena/internal/activity"
	"trena/internal/fitness"
)

// History builds the dated athlete settings resolver from the config.
func (c Config) History() activity.SettingsHistory {
	entries := make([]activity.DatedSettings, 0, len(c.AthleteSettings))
	for _, s := range c.AthleteSettings {
		entries = append(entries, activity.DatedSettings{
			Since:  ParseDate(s.Since),
			Gender: c.AthleteGender,
			Settings: activity.AthleteSettings{
				MaxHR:      s.MaxHR,
				RestHR:     s.RestHR,
				LTHR:       s.LTHR,
				CyclingFTP: s.CyclingFTP,
				RunningFTP: s.RunningFTP,
				SwimFTP:    s.SwimFTP,
				WeightKg:   s.WeightKg,
			},
		})
	}
	return activity.NewSettingsHistory(entries)
}

// FitnessConfig translates the fitness section into the trend engine
// configuration.
func (c Config) FitnessConfig() fitness.Config {
	f := c.Fitness
	mode := fitness.ImpulseHRSS
	if f.ImpulseMode == string(fitness.ImpulseTRIMP) {
		mode = fitness.ImpulseTRIMP
	}
	skip := make([]activity.Sport, 0, len(f.SkipTypes))
	for _, t := range f.SkipTypes {
		skip = append(skip, activity.Sport(t))
	}
	return fitness.Config{
		ImpulseMode:           mode,
		CyclingPowerEnabled:   f.CyclingPowerEnabled,
		AllowEstimatedPower:   f.AllowEstimatedPower,
		AllowEstimatedRunning: f.AllowEstimatedRunning,
		SwimEnabled:           f.SwimEnabled,
		IgnoreBefore:          ParseDate(f.IgnoreBefore),
		IgnoreNamePatterns:    f.IgnoreNamePatterns,
		SkipTypes:             skip,
	}
}
