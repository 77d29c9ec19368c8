package export

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rileyhilliard/adbdial/internal/config"
	"github.com/rileyhilliard/adbdial/internal/dial"
	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/rileyhilliard/adbdial/internal/logger"
)

const namespace = "adbdial"

// Prometheus serves the latest frame on an HTTP endpoint for scraping.
// Metrics live in a private registry so repeated sessions in one process
// don't collide.
type Prometheus struct {
	cfg config.PrometheusConfig
	log logger.Logger

	registry  *prometheus.Registry
	active    *prometheus.GaugeVec
	spawned   *prometheus.GaugeVec
	attempts  *prometheus.CounterVec
	rate      *prometheus.GaugeVec
	latency   *prometheus.GaugeVec
	cpu       *prometheus.GaugeVec
	mem       *prometheus.GaugeVec
	sent      *prometheus.GaugeVec
	recv      *prometheus.GaugeVec
	throttled *prometheus.GaugeVec
	remaining *prometheus.GaugeVec

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewPrometheus creates the exporter. Nothing listens until Initialize.
func NewPrometheus(cfg config.PrometheusConfig, log logger.Logger) *Prometheus {
	gauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help}, []string{"target"})
	}

	p := &Prometheus{
		cfg:       cfg,
		log:       log,
		registry:  prometheus.NewRegistry(),
		active:    gauge("active_workers", "Workers currently dialing."),
		spawned:   gauge("spawned_workers", "Workers started since the session began."),
		rate:      gauge("attempt_rate", "Connection attempts per second over the last interval."),
		latency:   gauge("attempt_latency_ms", "Mean attempt latency over the last interval, in milliseconds."),
		cpu:       gauge("cpu_percent", "Local CPU utilization."),
		mem:       gauge("memory_percent", "Local memory utilization."),
		sent:      gauge("network_sent_kbps", "Local network send rate in KB/s."),
		recv:      gauge("network_recv_kbps", "Local network receive rate in KB/s."),
		throttled: gauge("throttled", "1 when the governor held back spawning on the last cycle."),
		remaining: gauge("deadline_remaining_seconds", "Time left before the session gives up."),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Connection attempts made.",
		}, []string{"target"}),
	}
	p.registry.MustRegister(p.active, p.spawned, p.attempts, p.rate, p.latency,
		p.cpu, p.mem, p.sent, p.recv, p.throttled, p.remaining)
	return p
}

func (p *Prometheus) Name() string {
	return "prometheus"
}

// Handler returns the HTTP handler serving the metrics path and /health.
func (p *Prometheus) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(p.cfg.Path, promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// Initialize starts listening on the configured address.
func (p *Prometheus) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", p.cfg.Listen)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Can't listen on %s for Prometheus", p.cfg.Listen),
			"Pick a free address with --metrics-addr or metrics.prometheus.listen")
	}
	p.listener = ln
	p.server = &http.Server{
		Handler:      p.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	srv := p.server
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			p.log.Error("Prometheus server error: %v", err)
		}
	}()
	p.log.Info("serving Prometheus metrics on http://%s%s", ln.Addr(), p.cfg.Path)
	return nil
}

// Addr returns the listening address, or nil before Initialize.
func (p *Prometheus) Addr() net.Addr {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener == nil {
		return nil
	}
	return p.listener.Addr()
}

// Write updates every metric from f.
func (p *Prometheus) Write(ctx context.Context, f dial.Frame) error {
	t := f.Target
	p.active.WithLabelValues(t).Set(float64(f.Active))
	p.spawned.WithLabelValues(t).Set(float64(f.Spawned))
	p.attempts.WithLabelValues(t).Add(float64(f.Attempts))
	p.rate.WithLabelValues(t).Set(f.RatePerSec)
	p.latency.WithLabelValues(t).Set(f.AvgLatencyMS)
	p.cpu.WithLabelValues(t).Set(f.CPUPercent)
	p.mem.WithLabelValues(t).Set(f.MemPercent)
	p.sent.WithLabelValues(t).Set(f.SentKBps)
	p.recv.WithLabelValues(t).Set(f.RecvKBps)
	p.throttled.WithLabelValues(t).Set(boolGauge(f.Throttled))
	p.remaining.WithLabelValues(t).Set(f.Remaining.Seconds())
	return nil
}

// Close shuts the HTTP server down.
func (p *Prometheus) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := p.server.Shutdown(ctx)
	p.server = nil
	p.listener = nil
	return err
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var _ Sink = (*Prometheus)(nil)
