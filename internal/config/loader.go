package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".adbdial.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/adbdial"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. ADBDIAL_SESSION_DEADLINE.
	EnvPrefix = "ADBDIAL"
)

// Load reads config from the specified path. An empty path loads defaults
// plus environment overrides.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Run 'adbdial config init' to create one, or point --config at an existing file")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// LoadOrDefault finds the config file (see Find) and loads it, falling back
// to defaults when none exists.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .adbdial.yaml in current directory
// 3. .adbdial.yaml in parent directories (stops at git root or home)
// 4. ~/.config/adbdial/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && parent == home {
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// newViper returns a viper instance with every key defaulted, so that
// ADBDIAL_* environment variables are picked up by Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return v
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("port", d.Port)

	v.SetDefault("bridge.binary", d.Bridge.Binary)
	v.SetDefault("bridge.relay", d.Bridge.Relay)
	v.SetDefault("bridge.success_marker", d.Bridge.SuccessMarker)
	v.SetDefault("bridge.probe_timeout", d.Bridge.ProbeTimeout)

	v.SetDefault("attempt.timeout", d.Attempt.Timeout)
	v.SetDefault("attempt.pause", d.Attempt.Pause)
	v.SetDefault("attempt.worker_budget", d.Attempt.WorkerBudget)

	v.SetDefault("governor.interval", d.Governor.Interval)
	v.SetDefault("governor.max_workers", d.Governor.MaxWorkers)
	v.SetDefault("governor.spawn_batch", d.Governor.SpawnBatch)
	v.SetDefault("governor.cpu_threshold", d.Governor.CPUThreshold)
	v.SetDefault("governor.mem_threshold", d.Governor.MemThreshold)

	v.SetDefault("reporter.interval", d.Reporter.Interval)
	v.SetDefault("reporter.output", d.Reporter.Output)

	v.SetDefault("session.deadline", d.Session.Deadline)
	v.SetDefault("session.poll_interval", d.Session.PollInterval)

	v.SetDefault("metrics.prometheus.enabled", d.Metrics.Prometheus.Enabled)
	v.SetDefault("metrics.prometheus.listen", d.Metrics.Prometheus.Listen)
	v.SetDefault("metrics.prometheus.path", d.Metrics.Prometheus.Path)

	v.SetDefault("metrics.influxdb.enabled", d.Metrics.InfluxDB.Enabled)
	v.SetDefault("metrics.influxdb.url", d.Metrics.InfluxDB.URL)
	v.SetDefault("metrics.influxdb.token", d.Metrics.InfluxDB.Token)
	v.SetDefault("metrics.influxdb.org", d.Metrics.InfluxDB.Org)
	v.SetDefault("metrics.influxdb.bucket", d.Metrics.InfluxDB.Bucket)
}

// parseConfig converts viper config to our Config struct and validates it.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		where := "your environment overrides"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+where)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
