package dial

import (
	"context"
	"time"

	"github.com/rileyhilliard/adbdial/internal/logger"
	"github.com/rileyhilliard/adbdial/internal/telemetry"
)

// Frame is one status snapshot, produced once per reporter interval.
type Frame struct {
	Target    string
	At        time.Time
	Elapsed   time.Duration
	Remaining time.Duration
	Deadline  time.Duration
	Interval  time.Duration

	Active    int
	Spawned   int
	Ceiling   int
	Throttled bool

	Total        int64
	Attempts     int64
	RatePerSec   float64
	AvgLatencyMS float64

	CPUPercent   float64
	MemPercent   float64
	CPUThreshold float64
	MemThreshold float64
	SentKBps     float64
	RecvKBps     float64

	// RateHistory holds recent attempts-per-second values, oldest first.
	RateHistory []float64
}

// Renderer displays frames. A Render error ends the reporter loop.
type Renderer interface {
	Render(Frame) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame) error

// Render implements Renderer.
func (f RendererFunc) Render(fr Frame) error { return f(fr) }

// FrameSink receives every frame for export. Write errors are logged and
// never stop the reporter.
type FrameSink interface {
	Name() string
	Write(ctx context.Context, f Frame) error
}

// Reporter periodically samples State and telemetry and renders a Frame.
// It only reads shared state, apart from the consume-on-read window.
type Reporter struct {
	state    *State
	sampler  telemetry.Sampler
	renderer Renderer
	sinks    []FrameSink
	target   Target
	start    time.Time
	deadline time.Duration
	interval time.Duration
	cpuMax   float64
	memMax   float64
	history  *telemetry.History
	log      logger.Logger

	prev telemetry.Sample
}

// NewReporter creates a reporter. start is the session start used for the
// elapsed and remaining fields.
func NewReporter(state *State, sampler telemetry.Sampler, r Renderer, sinks []FrameSink, target Target, start time.Time, s Settings, log logger.Logger) *Reporter {
	return &Reporter{
		state:    state,
		sampler:  sampler,
		renderer: r,
		sinks:    sinks,
		target:   target,
		start:    start,
		deadline: s.Deadline,
		interval: s.ReportInterval,
		cpuMax:   s.CPUThreshold,
		memMax:   s.MemThreshold,
		history:  telemetry.NewHistory(telemetry.DefaultHistorySize),
		log:      log,
	}
}

// Run renders a frame every interval until the session stops or the
// renderer fails.
func (r *Reporter) Run(ctx context.Context) {
	r.seed(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.state.Done():
			return
		case now := <-ticker.C:
			f := r.frame(ctx, now)
			if err := r.renderer.Render(f); err != nil {
				r.log.Debug("renderer closed, stopping status updates: %v", err)
				return
			}
			r.export(ctx, f)
		}
	}
}

// seed takes the baseline for byte-rate deltas so the first frame reports
// traffic since the session started rather than since boot.
func (r *Reporter) seed(ctx context.Context) {
	s, err := r.sampler.Sample(ctx)
	if err != nil {
		r.log.Debug("initial telemetry sample failed: %v", err)
		s = telemetry.Sample{}
	}
	s.At = r.start
	r.prev = s
}

func (r *Reporter) frame(ctx context.Context, now time.Time) Frame {
	w := r.state.TakeSample()

	s, err := r.sampler.Sample(ctx)
	if err != nil {
		r.log.Debug("telemetry sample failed: %v", err)
		s = telemetry.Sample{BytesSent: r.prev.BytesSent, BytesRecv: r.prev.BytesRecv}
	}
	s.At = now

	secs := now.Sub(r.prev.At).Seconds()
	if secs <= 0 {
		secs = r.interval.Seconds()
	}
	sent, recv := s.Delta(r.prev)
	r.prev = s

	rate := float64(w.Attempts) / secs
	r.history.Push(rate)

	elapsed := now.Sub(r.start)
	remaining := r.deadline - elapsed
	if remaining < 0 {
		remaining = 0
	}

	return Frame{
		Target:       r.target.Endpoint(),
		At:           now,
		Elapsed:      elapsed,
		Remaining:    remaining,
		Deadline:     r.deadline,
		Interval:     r.interval,
		Active:       w.Active,
		Spawned:      w.Spawned,
		Ceiling:      r.state.Ceiling(),
		Throttled:    w.Throttled,
		Total:        w.Total,
		Attempts:     w.Attempts,
		RatePerSec:   rate,
		AvgLatencyMS: w.AvgLatencyMS,
		CPUPercent:   s.CPUPercent,
		MemPercent:   s.MemPercent,
		CPUThreshold: r.cpuMax,
		MemThreshold: r.memMax,
		SentKBps:     float64(sent) / 1024 / secs,
		RecvKBps:     float64(recv) / 1024 / secs,
		RateHistory:  r.history.All(),
	}
}

func (r *Reporter) export(ctx context.Context, f Frame) {
	for _, sink := range r.sinks {
		if err := sink.Write(ctx, f); err != nil {
			r.log.Warn("%s export failed: %v", sink.Name(), err)
		}
	}
}
