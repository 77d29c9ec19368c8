package doctor

import (
	"context"
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	bridgetesting "github.com/rileyhilliard/adbdial/internal/bridge/testing"
	"github.com/rileyhilliard/adbdial/internal/config"
	telemetrytesting "github.com/rileyhilliard/adbdial/internal/telemetry/testing"
	"github.com/rileyhilliard/adbdial/pkg/sshutil"
)

func TestConfigCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(good, []byte("version: 1\nport: 5555\n"), 0644)
	os.WriteFile(bad, []byte("version: 1\nport: 0\n"), 0644)

	if r := (&ConfigCheck{Path: good}).Run(context.Background()); r.Status != StatusPass || !strings.Contains(r.Message, good) {
		t.Errorf("good config: %+v", r)
	}
	if r := (&ConfigCheck{Path: bad}).Run(context.Background()); r.Status != StatusFail {
		t.Errorf("invalid config should fail: %+v", r)
	}
	if r := (&ConfigCheck{Path: filepath.Join(dir, "missing.yaml")}).Run(context.Background()); r.Status != StatusFail {
		t.Errorf("missing explicit config should fail: %+v", r)
	}
}

func TestBridgeCheck(t *testing.T) {
	fake := bridgetesting.AlwaysFail()
	c := &BridgeCheck{Bridge: fake, Describe: "adb"}

	if r := c.Run(context.Background()); r.Status != StatusPass {
		t.Errorf("working bridge: %+v", r)
	}

	fake.CheckErr = stderrors.New("not found")
	r := c.Run(context.Background())
	if r.Status != StatusFail || r.Suggestion == "" {
		t.Errorf("broken bridge: %+v", r)
	}
}

func TestLoadCheck(t *testing.T) {
	tests := []struct {
		name     string
		cpu, mem float64
		want     CheckStatus
	}{
		{"idle", 10, 30, StatusPass},
		{"cpu over", 85, 30, StatusWarn},
		{"mem at limit", 10, 90, StatusWarn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &LoadCheck{Sampler: telemetrytesting.Loaded(tt.cpu, tt.mem), CPUThreshold: 80, MemThreshold: 90}
			if r := c.Run(context.Background()); r.Status != tt.want {
				t.Errorf("status = %v, want %v (%s)", r.Status, tt.want, r.Message)
			}
		})
	}

	broken := telemetrytesting.Idle()
	broken.SetError(stderrors.New("no /proc"))
	if r := (&LoadCheck{Sampler: broken, CPUThreshold: 80, MemThreshold: 90}).Run(context.Background()); r.Status != StatusFail {
		t.Errorf("sample error should fail: %+v", r)
	}
}

func TestRelayHostCheck(t *testing.T) {
	hosts := func() ([]sshutil.HostEntry, error) {
		return []sshutil.HostEntry{{Alias: "lab-box", Hostname: "10.1.0.9"}}, nil
	}

	if r := (&RelayHostCheck{Host: "lab-box", Hosts: hosts}).Run(context.Background()); r.Status != StatusPass {
		t.Errorf("known host: %+v", r)
	}
	if r := (&RelayHostCheck{Host: "lab-bx", Hosts: hosts}).Run(context.Background()); r.Status != StatusWarn {
		t.Errorf("unknown host should warn: %+v", r)
	}

	broken := func() ([]sshutil.HostEntry, error) { return nil, stderrors.New("bad syntax") }
	if r := (&RelayHostCheck{Host: "lab-box", Hosts: broken}).Run(context.Background()); r.Status != StatusWarn {
		t.Errorf("unreadable config should warn: %+v", r)
	}
}

func TestRelayAuthCheck(t *testing.T) {
	env := func(v string) func(string) string { return func(string) string { return v } }
	noKey := func() (string, bool) { return "", false }
	key := func() (string, bool) { return "~/.ssh/id_ed25519", true }

	if r := (&RelayAuthCheck{Getenv: env("/tmp/agent.sock"), KeyPath: noKey}).Run(context.Background()); r.Status != StatusPass {
		t.Errorf("agent: %+v", r)
	}
	if r := (&RelayAuthCheck{Getenv: env(""), KeyPath: key}).Run(context.Background()); r.Status != StatusPass {
		t.Errorf("key: %+v", r)
	}
	if r := (&RelayAuthCheck{Getenv: env(""), KeyPath: noKey}).Run(context.Background()); r.Status != StatusFail {
		t.Errorf("nothing: %+v", r)
	}
}

func TestListenCheck(t *testing.T) {
	if r := (&ListenCheck{Addr: "127.0.0.1:0"}).Run(context.Background()); r.Status != StatusPass {
		t.Errorf("free port: %+v", r)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	if r := (&ListenCheck{Addr: ln.Addr().String()}).Run(context.Background()); r.Status != StatusFail {
		t.Errorf("busy port should fail: %+v", r)
	}
}

func TestCollect(t *testing.T) {
	cfg := config.DefaultConfig()
	fake := bridgetesting.AlwaysFail()

	checks := Collect("", cfg, fake, "adb", telemetrytesting.Idle())
	if len(checks) != 3 {
		t.Fatalf("default config: got %d checks, want 3", len(checks))
	}

	cfg.Bridge.Relay = "lab-box"
	cfg.Metrics.Prometheus.Enabled = true
	checks = Collect("", cfg, fake, "adb via lab-box", telemetrytesting.Idle())

	grouped := GroupByCategory(checks)
	if len(grouped[CategoryRelay]) != 2 {
		t.Errorf("relay checks = %d, want 2", len(grouped[CategoryRelay]))
	}
	if len(grouped[CategoryMetrics]) != 1 {
		t.Errorf("metrics checks = %d, want 1", len(grouped[CategoryMetrics]))
	}
}
