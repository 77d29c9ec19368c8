package dial

import (
	"time"

	"github.com/rileyhilliard/adbdial/internal/config"
)

// Settings are the tunables of one dial session.
type Settings struct {
	SuccessMarker string

	AttemptTimeout time.Duration
	Pause          time.Duration
	WorkerBudget   time.Duration

	GovernorInterval time.Duration
	MaxWorkers       int
	SpawnBatch       int
	CPUThreshold     float64
	MemThreshold     float64

	ReportInterval time.Duration
	Deadline       time.Duration
	PollInterval   time.Duration
}

// SettingsFrom extracts session settings from a loaded config.
func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		SuccessMarker:    cfg.Bridge.SuccessMarker,
		AttemptTimeout:   cfg.Attempt.Timeout,
		Pause:            cfg.Attempt.Pause,
		WorkerBudget:     cfg.Attempt.WorkerBudget,
		GovernorInterval: cfg.Governor.Interval,
		MaxWorkers:       cfg.Governor.MaxWorkers,
		SpawnBatch:       cfg.Governor.SpawnBatch,
		CPUThreshold:     cfg.Governor.CPUThreshold,
		MemThreshold:     cfg.Governor.MemThreshold,
		ReportInterval:   cfg.Reporter.Interval,
		Deadline:         cfg.Session.Deadline,
		PollInterval:     cfg.Session.PollInterval,
	}
}

// DefaultSettings returns the settings of config.DefaultConfig.
func DefaultSettings() Settings {
	return SettingsFrom(config.DefaultConfig())
}
