package export

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rileyhilliard/adbdial/internal/config"
	"github.com/rileyhilliard/adbdial/internal/dial"
	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/rileyhilliard/adbdial/internal/logger"
)

func testFrame() dial.Frame {
	return dial.Frame{
		Target:       "10.0.0.2:5555",
		At:           time.Unix(1700000000, 0),
		Remaining:    12 * time.Second,
		Active:       7,
		Spawned:      20,
		Attempts:     40,
		Total:        140,
		RatePerSec:   40,
		AvgLatencyMS: 12.5,
		CPUPercent:   33,
		MemPercent:   61,
		SentKBps:     1.5,
		RecvKBps:     2.5,
		Throttled:    true,
	}
}

func newTestPrometheus() *Prometheus {
	return NewPrometheus(config.PrometheusConfig{Enabled: true, Listen: "127.0.0.1:0", Path: "/metrics"}, logger.Noop())
}

func TestPrometheus_Name(t *testing.T) {
	if got := newTestPrometheus().Name(); got != "prometheus" {
		t.Errorf("Name() = %v, want prometheus", got)
	}
}

func TestPrometheus_WriteUpdatesMetrics(t *testing.T) {
	p := newTestPrometheus()
	f := testFrame()

	if err := p.Write(context.Background(), f); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := p.Write(context.Background(), f); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	target := f.Target
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"active", testutil.ToFloat64(p.active.WithLabelValues(target)), 7},
		{"spawned", testutil.ToFloat64(p.spawned.WithLabelValues(target)), 20},
		{"attempts accumulate", testutil.ToFloat64(p.attempts.WithLabelValues(target)), 80},
		{"latency", testutil.ToFloat64(p.latency.WithLabelValues(target)), 12.5},
		{"throttled", testutil.ToFloat64(p.throttled.WithLabelValues(target)), 1},
		{"remaining", testutil.ToFloat64(p.remaining.WithLabelValues(target)), 12},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestPrometheus_Handler(t *testing.T) {
	p := newTestPrometheus()
	if err := p.Write(context.Background(), testFrame()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	for _, want := range []string{
		`adbdial_active_workers{target="10.0.0.2:5555"} 7`,
		`adbdial_attempts_total{target="10.0.0.2:5555"} 40`,
		`adbdial_cpu_percent{target="10.0.0.2:5555"} 33`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}

	resp, err = http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "OK" {
		t.Errorf("/health = %d %q, want 200 OK", resp.StatusCode, body)
	}
}

func TestPrometheus_InitializeAndClose(t *testing.T) {
	p := newTestPrometheus()
	if p.Addr() != nil {
		t.Errorf("Addr() before Initialize = %v, want nil", p.Addr())
	}

	if err := p.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	addr := p.Addr()
	if addr == nil {
		t.Fatal("Addr() = nil after Initialize")
	}

	resp, err := http.Get("http://" + addr.String() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health status = %d, want 200", resp.StatusCode)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestPrometheus_InitializeAddressInUse(t *testing.T) {
	first := newTestPrometheus()
	if err := first.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer first.Close()

	second := NewPrometheus(config.PrometheusConfig{Listen: first.Addr().String(), Path: "/metrics"}, logger.Noop())
	err := second.Initialize(context.Background())
	if err == nil {
		second.Close()
		t.Fatal("Initialize() on a busy address should fail")
	}
	if !errors.IsCode(err, errors.ErrExport) {
		t.Errorf("error %q should carry the EXPORT code", err)
	}
	if !strings.Contains(err.Error(), "Can't listen on") {
		t.Errorf("error %q should name the listen failure", err)
	}
}

func TestPrometheus_CloseWithoutInitialize(t *testing.T) {
	if err := newTestPrometheus().Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
