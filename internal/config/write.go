package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rileyhilliard/adbdial/internal/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with durations as strings, since yaml.v3 would
// otherwise write time.Duration as a bare nanosecond count.
type fileConfig struct {
	Version  int           `yaml:"version"`
	Port     int           `yaml:"port"`
	Bridge   fileBridge    `yaml:"bridge"`
	Attempt  fileAttempt   `yaml:"attempt"`
	Governor fileGovernor  `yaml:"governor"`
	Reporter fileReporter  `yaml:"reporter"`
	Session  fileSession   `yaml:"session"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

type fileBridge struct {
	Binary        string `yaml:"binary"`
	Relay         string `yaml:"relay"`
	SuccessMarker string `yaml:"success_marker"`
	ProbeTimeout  string `yaml:"probe_timeout"`
}

type fileAttempt struct {
	Timeout      string `yaml:"timeout"`
	Pause        string `yaml:"pause"`
	WorkerBudget string `yaml:"worker_budget"`
}

type fileGovernor struct {
	Interval     string  `yaml:"interval"`
	MaxWorkers   int     `yaml:"max_workers"`
	SpawnBatch   int     `yaml:"spawn_batch"`
	CPUThreshold float64 `yaml:"cpu_threshold"`
	MemThreshold float64 `yaml:"mem_threshold"`
}

type fileReporter struct {
	Interval string `yaml:"interval"`
	Output   string `yaml:"output"`
}

type fileSession struct {
	Deadline     string `yaml:"deadline"`
	PollInterval string `yaml:"poll_interval"`
}

func dur(d time.Duration) string {
	return d.String()
}

// Marshal renders cfg as YAML in the same shape Load reads.
func Marshal(cfg *Config) ([]byte, error) {
	fc := fileConfig{
		Version: cfg.Version,
		Port:    cfg.Port,
		Bridge: fileBridge{
			Binary:        cfg.Bridge.Binary,
			Relay:         cfg.Bridge.Relay,
			SuccessMarker: cfg.Bridge.SuccessMarker,
			ProbeTimeout:  dur(cfg.Bridge.ProbeTimeout),
		},
		Attempt: fileAttempt{
			Timeout:      dur(cfg.Attempt.Timeout),
			Pause:        dur(cfg.Attempt.Pause),
			WorkerBudget: dur(cfg.Attempt.WorkerBudget),
		},
		Governor: fileGovernor{
			Interval:     dur(cfg.Governor.Interval),
			MaxWorkers:   cfg.Governor.MaxWorkers,
			SpawnBatch:   cfg.Governor.SpawnBatch,
			CPUThreshold: cfg.Governor.CPUThreshold,
			MemThreshold: cfg.Governor.MemThreshold,
		},
		Reporter: fileReporter{
			Interval: dur(cfg.Reporter.Interval),
			Output:   cfg.Reporter.Output,
		},
		Session: fileSession{
			Deadline:     dur(cfg.Session.Deadline),
			PollInterval: dur(cfg.Session.PollInterval),
		},
		Metrics: cfg.Metrics,
	}

	out, err := yaml.Marshal(&fc)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't render config as YAML",
			"This is a bug, please report it")
	}
	return out, nil
}

// WriteDefault writes DefaultConfig to path. An existing file is only
// replaced when force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrConfig,
			"Config already exists: "+path,
			"Use --force to overwrite it")
	}

	data, err := Marshal(DefaultConfig())
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't create config directory",
				"Check permissions on "+dir)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write config file",
			"Check permissions on "+path)
	}
	return nil
}
