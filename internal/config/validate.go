package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/rileyhilliard/adbdial/internal/util"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but adbdial only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade adbdial or lower the version field.")
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Port %d is out of range", cfg.Port),
			"Use a TCP port between 1 and 65535 (adb tcpip defaults to 5555).")
	}

	if err := validateBridge(cfg.Bridge); err != nil {
		return errors.New(errors.ErrConfig, err.Error(), "Check the 'bridge' section in your .adbdial.yaml.")
	}
	if err := validateAttempt(cfg.Attempt); err != nil {
		return errors.New(errors.ErrConfig, err.Error(), "Check the 'attempt' section in your .adbdial.yaml.")
	}
	if err := validateGovernor(cfg.Governor); err != nil {
		return errors.New(errors.ErrConfig, err.Error(), "Check the 'governor' section in your .adbdial.yaml.")
	}
	if err := validateReporter(cfg.Reporter); err != nil {
		return errors.New(errors.ErrConfig, err.Error(), "Check the 'reporter' section in your .adbdial.yaml.")
	}
	if err := validateSession(cfg.Session); err != nil {
		return errors.New(errors.ErrConfig, err.Error(), "Check the 'session' section in your .adbdial.yaml.")
	}
	if err := validateMetrics(cfg.Metrics); err != nil {
		return errors.New(errors.ErrConfig, err.Error(), "Check the 'metrics' section in your .adbdial.yaml.")
	}

	return nil
}

func validateBridge(b BridgeConfig) error {
	if b.Binary == "" {
		return fmt.Errorf("bridge.binary can't be empty")
	}
	if b.SuccessMarker == "" {
		return fmt.Errorf("bridge.success_marker can't be empty")
	}
	if b.Relay != "" {
		if err := positive("bridge.probe_timeout", b.ProbeTimeout); err != nil {
			return err
		}
	}
	return nil
}

func validateAttempt(a AttemptConfig) error {
	if err := positive("attempt.timeout", a.Timeout); err != nil {
		return err
	}
	if a.Pause < 0 {
		return fmt.Errorf("attempt.pause can't be negative (got %s)", a.Pause)
	}
	return positive("attempt.worker_budget", a.WorkerBudget)
}

func validateGovernor(g GovernorConfig) error {
	if err := positive("governor.interval", g.Interval); err != nil {
		return err
	}
	if g.MaxWorkers < 1 {
		return fmt.Errorf("governor.max_workers must be at least 1 (got %d)", g.MaxWorkers)
	}
	if g.SpawnBatch < 1 {
		return fmt.Errorf("governor.spawn_batch must be at least 1 (got %d)", g.SpawnBatch)
	}
	if err := percent("governor.cpu_threshold", g.CPUThreshold); err != nil {
		return err
	}
	return percent("governor.mem_threshold", g.MemThreshold)
}

func validateReporter(r ReporterConfig) error {
	if err := positive("reporter.interval", r.Interval); err != nil {
		return err
	}
	if !slices.Contains(OutputModes, r.Output) {
		if near := util.SuggestSimilar(r.Output, OutputModes, 1); len(near) > 0 {
			return fmt.Errorf("reporter.output %q isn't one of %v, did you mean %q?", r.Output, OutputModes, near[0])
		}
		return fmt.Errorf("reporter.output %q isn't one of %v", r.Output, OutputModes)
	}
	return nil
}

func validateSession(s SessionConfig) error {
	if err := positive("session.deadline", s.Deadline); err != nil {
		return err
	}
	return positive("session.poll_interval", s.PollInterval)
}

func validateMetrics(m MetricsConfig) error {
	if m.Prometheus.Enabled {
		if m.Prometheus.Listen == "" {
			return fmt.Errorf("metrics.prometheus.listen is required when prometheus is enabled")
		}
		if m.Prometheus.Path == "" || m.Prometheus.Path[0] != '/' {
			return fmt.Errorf("metrics.prometheus.path must start with '/' (got %q)", m.Prometheus.Path)
		}
	}
	if m.InfluxDB.Enabled {
		if m.InfluxDB.URL == "" {
			return fmt.Errorf("metrics.influxdb.url is required when influxdb is enabled")
		}
		if m.InfluxDB.Bucket == "" {
			return fmt.Errorf("metrics.influxdb.bucket is required when influxdb is enabled")
		}
	}
	return nil
}

func positive(field string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive (got %s)", field, d)
	}
	return nil
}

func percent(field string, v float64) error {
	if v <= 0 || v > 100 {
		return fmt.Errorf("%s must be in (0, 100] (got %g)", field, v)
	}
	return nil
}
