package doctor

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/adbdial/internal/config"
	"github.com/rileyhilliard/adbdial/internal/dial"
	"github.com/rileyhilliard/adbdial/internal/telemetry"
	"github.com/rileyhilliard/adbdial/pkg/sshutil"
)

// ConfigCheck reports which config file is in effect and that it validates.
type ConfigCheck struct {
	Path string // explicit --config path, or empty to search
}

func (c *ConfigCheck) Name() string     { return "config" }
func (c *ConfigCheck) Category() string { return CategoryConfig }

func (c *ConfigCheck) Run(ctx context.Context) CheckResult {
	_, path, err := config.LoadOrDefault(c.Path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Config doesn't load",
			Suggestion: "Run 'adbdial config show' for the full error",
		}
	}
	if path == "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No config file, using defaults",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Config file: " + path,
	}
}

// BridgeCheck runs the bridge preflight, the same one a dial session runs.
type BridgeCheck struct {
	Bridge   dial.Connector
	Describe string // e.g. "adb via lab-box"
}

func (c *BridgeCheck) Name() string     { return "adb" }
func (c *BridgeCheck) Category() string { return CategoryBridge }

func (c *BridgeCheck) Run(ctx context.Context) CheckResult {
	if err := c.Bridge.Check(ctx); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s isn't usable", c.Describe),
			Suggestion: "Install Android platform-tools, or set bridge.binary to the adb path",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: c.Describe + " runs",
	}
}

// LoadCheck samples local CPU and memory and warns when the governor would
// start out throttled.
type LoadCheck struct {
	Sampler      telemetry.Sampler
	CPUThreshold float64
	MemThreshold float64
}

func (c *LoadCheck) Name() string     { return "load" }
func (c *LoadCheck) Category() string { return CategorySystem }

func (c *LoadCheck) Run(ctx context.Context) CheckResult {
	s, err := c.Sampler.Sample(ctx)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't read CPU and memory usage: %v", err),
			Suggestion: "adbdial needs system telemetry to throttle its workers",
		}
	}

	msg := fmt.Sprintf("CPU %.0f%% (limit %.0f%%), memory %.0f%% (limit %.0f%%)",
		s.CPUPercent, c.CPUThreshold, s.MemPercent, c.MemThreshold)
	if s.Over(c.CPUThreshold, c.MemThreshold) {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    msg,
			Suggestion: "No workers start while load is over the limits; raise governor.cpu_threshold or governor.mem_threshold",
		}
	}
	return CheckResult{Name: c.Name(), Status: StatusPass, Message: msg}
}

// RelayHostCheck looks the relay up in ~/.ssh/config. Only added when a
// relay is configured.
type RelayHostCheck struct {
	Host  string
	Hosts func() ([]sshutil.HostEntry, error)
}

func (c *RelayHostCheck) Name() string     { return "relay_host" }
func (c *RelayHostCheck) Category() string { return CategoryRelay }

func (c *RelayHostCheck) Run(ctx context.Context) CheckResult {
	hosts, err := c.Hosts()
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Can't read ~/.ssh/config: %v", err),
			Suggestion: "Fix the ssh config syntax, or use user@host:port for bridge.relay",
		}
	}
	for _, h := range hosts {
		if h.Alias == c.Host {
			return CheckResult{
				Name:    c.Name(),
				Status:  StatusPass,
				Message: fmt.Sprintf("%s (%s)", c.Host, h.Description()),
			}
		}
	}
	return CheckResult{
		Name:       c.Name(),
		Status:     StatusWarn,
		Message:    fmt.Sprintf("%s isn't a Host in ~/.ssh/config, it will be dialed as given", c.Host),
		Suggestion: "Add a Host entry for it, or check the spelling",
	}
}

// RelayAuthCheck verifies some SSH credential is available for the relay.
type RelayAuthCheck struct {
	Getenv  func(string) string
	KeyPath func() (string, bool)
}

func (c *RelayAuthCheck) Name() string     { return "relay_auth" }
func (c *RelayAuthCheck) Category() string { return CategoryRelay }

func (c *RelayAuthCheck) Run(ctx context.Context) CheckResult {
	if c.Getenv("SSH_AUTH_SOCK") != "" {
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "SSH agent available"}
	}
	if path, ok := c.KeyPath(); ok {
		return CheckResult{Name: c.Name(), Status: StatusPass, Message: "SSH key found: " + path}
	}
	return CheckResult{
		Name:       c.Name(),
		Status:     StatusFail,
		Message:    "No SSH agent and no default key",
		Suggestion: "Start an agent (eval $(ssh-agent) && ssh-add) or create a key with ssh-keygen -t ed25519",
	}
}

// ListenCheck makes sure the Prometheus address is free.
type ListenCheck struct {
	Addr string
}

func (c *ListenCheck) Name() string     { return "prometheus_listen" }
func (c *ListenCheck) Category() string { return CategoryMetrics }

func (c *ListenCheck) Run(ctx context.Context) CheckResult {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", c.Addr)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't listen on %s: %v", c.Addr, err),
			Suggestion: "Pick a free address with --metrics-addr or metrics.prometheus.listen",
		}
	}
	ln.Close()
	return CheckResult{Name: c.Name(), Status: StatusPass, Message: "Prometheus can listen on " + c.Addr}
}

// Collect builds the checks for cfg.
func Collect(cfgPath string, cfg *config.Config, bridge dial.Connector, describe string, sampler telemetry.Sampler) []Check {
	checks := []Check{
		&ConfigCheck{Path: cfgPath},
		&BridgeCheck{Bridge: bridge, Describe: describe},
		&LoadCheck{Sampler: sampler, CPUThreshold: cfg.Governor.CPUThreshold, MemThreshold: cfg.Governor.MemThreshold},
	}
	if cfg.Bridge.Relay != "" {
		checks = append(checks,
			&RelayHostCheck{Host: cfg.Bridge.Relay, Hosts: sshutil.KnownHosts},
			&RelayAuthCheck{Getenv: os.Getenv, KeyPath: defaultKey},
		)
	}
	if cfg.Metrics.Prometheus.Enabled {
		checks = append(checks, &ListenCheck{Addr: cfg.Metrics.Prometheus.Listen})
	}
	return checks
}

func defaultKey() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	for _, name := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
		p := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(p); err == nil {
			return "~/.ssh/" + name, true
		}
	}
	return "", false
}
