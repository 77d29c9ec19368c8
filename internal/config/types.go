package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// DefaultPort is the port adbd listens on after `adb tcpip 5555`.
const DefaultPort = 5555

// Output modes for the live status display.
const (
	OutputAuto      = "auto"
	OutputDashboard = "dashboard"
	OutputScreen    = "screen"
	OutputPlain     = "plain"
	OutputQuiet     = "quiet"
)

// OutputModes lists every accepted reporter.output value.
var OutputModes = []string{OutputAuto, OutputDashboard, OutputScreen, OutputPlain, OutputQuiet}

// Config represents the complete .adbdial.yaml configuration file.
type Config struct {
	Version  int            `yaml:"version" mapstructure:"version"`
	Port     int            `yaml:"port" mapstructure:"port"`
	Bridge   BridgeConfig   `yaml:"bridge" mapstructure:"bridge"`
	Attempt  AttemptConfig  `yaml:"attempt" mapstructure:"attempt"`
	Governor GovernorConfig `yaml:"governor" mapstructure:"governor"`
	Reporter ReporterConfig `yaml:"reporter" mapstructure:"reporter"`
	Session  SessionConfig  `yaml:"session" mapstructure:"session"`
	Metrics  MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// BridgeConfig controls how the adb binary is invoked.
type BridgeConfig struct {
	// Binary is the adb executable name or path.
	Binary string `yaml:"binary" mapstructure:"binary"`

	// Relay is an optional SSH host (alias, host, user@host:port) that runs
	// adb on our behalf. Empty means run adb locally.
	Relay string `yaml:"relay" mapstructure:"relay"`

	// SuccessMarker is matched case-insensitively against `adb connect` output.
	SuccessMarker string `yaml:"success_marker" mapstructure:"success_marker"`

	// ProbeTimeout bounds the SSH dial to the relay host.
	ProbeTimeout time.Duration `yaml:"probe_timeout" mapstructure:"probe_timeout"`
}

// AttemptConfig controls each worker's attempt loop.
type AttemptConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Pause        time.Duration `yaml:"pause" mapstructure:"pause"`
	WorkerBudget time.Duration `yaml:"worker_budget" mapstructure:"worker_budget"`
}

// GovernorConfig controls how fast the worker pool grows.
type GovernorConfig struct {
	Interval     time.Duration `yaml:"interval" mapstructure:"interval"`
	MaxWorkers   int           `yaml:"max_workers" mapstructure:"max_workers"`
	SpawnBatch   int           `yaml:"spawn_batch" mapstructure:"spawn_batch"`
	CPUThreshold float64       `yaml:"cpu_threshold" mapstructure:"cpu_threshold"`
	MemThreshold float64       `yaml:"mem_threshold" mapstructure:"mem_threshold"`
}

// ReporterConfig controls the live status display.
type ReporterConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Output is one of OutputModes. "auto" picks the dashboard on a TTY
	// and plain lines otherwise.
	Output string `yaml:"output" mapstructure:"output"`
}

// SessionConfig controls the overall dial session.
type SessionConfig struct {
	Deadline     time.Duration `yaml:"deadline" mapstructure:"deadline"`
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
}

// MetricsConfig holds the optional live metric exporters.
type MetricsConfig struct {
	Prometheus PrometheusConfig `yaml:"prometheus" mapstructure:"prometheus"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb" mapstructure:"influxdb"`
}

// PrometheusConfig contains Prometheus exporter settings.
type PrometheusConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Listen  string `yaml:"listen" mapstructure:"listen"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	URL     string `yaml:"url" mapstructure:"url"`
	Token   string `yaml:"token" mapstructure:"token"`
	Org     string `yaml:"org" mapstructure:"org"`
	Bucket  string `yaml:"bucket" mapstructure:"bucket"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Port:    DefaultPort,
		Bridge: BridgeConfig{
			Binary:        "adb",
			SuccessMarker: "connected",
			ProbeTimeout:  10 * time.Second,
		},
		Attempt: AttemptConfig{
			Timeout:      2 * time.Second,
			Pause:        100 * time.Millisecond,
			WorkerBudget: 30 * time.Second,
		},
		Governor: GovernorConfig{
			Interval:     10 * time.Millisecond,
			MaxWorkers:   10_000_000,
			SpawnBatch:   5,
			CPUThreshold: 80,
			MemThreshold: 90,
		},
		Reporter: ReporterConfig{
			Interval: time.Second,
			Output:   OutputAuto,
		},
		Session: SessionConfig{
			Deadline:     30 * time.Second,
			PollInterval: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Prometheus: PrometheusConfig{
				Listen: ":9464",
				Path:   "/metrics",
			},
		},
	}
}
