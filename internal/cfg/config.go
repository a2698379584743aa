package cfg

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// AthleteSettings mirrors one dated settings period in the config file.
// Since is a "YYYY-MM-DD" date; empty means "forever" (the fallback
// period).
type AthleteSettings struct {
	Since      string   `json:"since"`
	MaxHR      float64  `json:"max_hr"`
	RestHR     float64  `json:"rest_hr"`
	LTHR       *float64 `json:"lthr"`
	CyclingFTP float64  `json:"cycling_ftp"`
	RunningFTP float64  `json:"running_ftp"`
	SwimFTP    float64  `json:"swim_ftp"`
	WeightKg   float64  `json:"weight_kg"`
}

// Fitness are the trend engine toggles.
type Fitness struct {
	ImpulseMode           string   `json:"impulse_mode"` // "hrss" or "trimp"
	CyclingPowerEnabled   bool     `json:"cycling_power_enabled"`
	AllowEstimatedPower   bool     `json:"allow_estimated_power"`
	AllowEstimatedRunning bool     `json:"allow_estimated_running"`
	SwimEnabled           bool     `json:"swim_enabled"`
	IgnoreBefore          string   `json:"ignore_before"` // "YYYY-MM-DD", empty = no cutoff
	IgnoreNamePatterns    []string `json:"ignore_name_patterns"`
	SkipTypes             []string `json:"skip_types"`
}

type Config struct {
	DBPath   string `json:"db_path"`
	HTTPAddr string `json:"http_addr"`
	PollMs   int    `json:"poll_ms"`

	SourceDir                  string `json:"source_dir"`
	ScanSubDirs                bool   `json:"scan_sub_dirs"`
	ExtractArchives            bool   `json:"extract_archives"`
	DeleteArchivesAfterExtract bool   `json:"delete_archives_after_extract"`
	DetectSportTypeWhenUnknown bool   `json:"detect_sport_type_when_unknown"`

	AthleteGender   string            `json:"athlete_gender"` // "male" or "female"
	AthleteSettings []AthleteSettings `json:"athlete_settings"`
	Fitness         Fitness           `json:"fitness"`

	AuthUser string `json:"auth_user"`
	AuthPass string `json:"auth_pass"`
}

func Default() Config {
	return Config{
		DBPath:                     "./data/trena.db",
		HTTPAddr:                   "127.0.0.1:8766",
		PollMs:                     0,
		SourceDir:                  "./data/activities",
		ScanSubDirs:                true,
		ExtractArchives:            true,
		DeleteArchivesAfterExtract: false,
		DetectSportTypeWhenUnknown: true,
		AthleteGender:              "male",
		Fitness: Fitness{
			ImpulseMode:           "hrss",
			CyclingPowerEnabled:   true,
			AllowEstimatedPower:   true,
			AllowEstimatedRunning: true,
			SwimEnabled:           true,
		},
		AuthUser: "",
		AuthPass: "",
	}
}

func Load(path string) Config {
	c := Default()
	f, err := os.Open(path)
	if err != nil {
		log.Printf("config: using defaults (%v)", err)
		return c
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		log.Printf("config decode: %v (using defaults)", err)
		return Default()
	}
	return c
}

// ParseDate parses the "YYYY-MM-DD" date fields; nil for empty/invalid.
func ParseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		log.Printf("config: bad date %q ignored", s)
		return nil
	}
	return &t
}
