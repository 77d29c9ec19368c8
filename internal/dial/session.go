package dial

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/rileyhilliard/adbdial/internal/logger"
	"github.com/rileyhilliard/adbdial/internal/telemetry"
)

// Outcome summarizes a finished session.
type Outcome struct {
	Phase    Phase
	Endpoint string
	Reason   StopReason
	Attempts int64
	Spawned  int
	Elapsed  time.Duration
	// Failures counts unsuccessful attempts by reason, when a classifier is set.
	Failures map[string]int64
}

// Succeeded reports whether a device connection was established.
func (o Outcome) Succeeded() bool {
	return o.Phase == Succeeded
}

// TopFailure returns the most frequent failure reason and its count. Ties
// go to the lexically smaller reason; an empty tally returns "", 0.
func (o Outcome) TopFailure() (string, int64) {
	var reason string
	var count int64
	for r, n := range o.Failures {
		if n <= 0 {
			continue
		}
		if n > count || (n == count && r < reason) {
			reason, count = r, n
		}
	}
	return reason, count
}

// Session drives one dial run from preflight to teardown.
type Session struct {
	target     Target
	bridge     Connector
	newSampler telemetry.Factory
	renderer   Renderer
	sinks      []FrameSink
	settings   Settings
	classify   Classifier
	log        logger.Logger
	injected   bool

	mu    sync.Mutex
	state *State
}

// Option configures a Session.
type Option func(*Session)

// WithRenderer sets where status frames go. The default discards them.
func WithRenderer(r Renderer) Option {
	return func(s *Session) { s.renderer = r }
}

// WithSinks adds metric sinks that receive every frame.
func WithSinks(sinks ...FrameSink) Option {
	return func(s *Session) { s.sinks = append(s.sinks, sinks...) }
}

// WithClassifier tallies failed attempts by the reason classify returns.
func WithClassifier(classify Classifier) Option {
	return func(s *Session) { s.classify = classify }
}

// WithLogger sets the logger for the session and its loops.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		s.log = l
		s.injected = true
	}
}

// NewSession creates a session. newSampler is called once per loop that
// needs telemetry.
func NewSession(target Target, bridge Connector, newSampler telemetry.Factory, settings Settings, opts ...Option) *Session {
	s := &Session{
		target:     target,
		bridge:     bridge,
		newSampler: newSampler,
		renderer:   RendererFunc(func(Frame) error { return nil }),
		settings:   settings,
		log:        logger.NewEnvLogger("[session]"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the live state of a running session, or nil before Run.
func (s *Session) State() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run dials until success, deadline, or cancellation of ctx, then joins
// every goroutine it started. Errors are only returned for preflight
// failures; running out of time or being interrupted is a normal Outcome.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	govSampler := s.newSampler()
	if _, err := govSampler.Sample(ctx); err != nil {
		return Outcome{}, errors.WrapWithCode(err, errors.ErrTelemetry,
			"Can't read CPU and memory usage",
			"adbdial throttles its workers on local load and needs system telemetry to start")
	}
	if err := s.bridge.Check(ctx); err != nil {
		var structured *errors.Error
		if stderrors.As(err, &structured) {
			return Outcome{}, err
		}
		return Outcome{}, errors.WrapWithCode(err, errors.ErrBridge,
			"adb isn't available",
			"Install Android platform-tools and make sure adb is on your PATH")
	}

	start := time.Now()
	state := NewState(s.settings.MaxWorkers)
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	exec := NewExecutor(s.bridge, s.target, s.settings.AttemptTimeout, state)
	race := NewRace(state, s.settings.SuccessMarker)
	workerLog := s.childLogger("[worker]")
	newWorker := func(id int) *Worker {
		return &Worker{
			id:       id,
			exec:     exec,
			race:     race,
			state:    state,
			budget:   s.settings.WorkerBudget,
			pause:    s.settings.Pause,
			classify: s.classify,
			log:      workerLog,
		}
	}

	var workers Pool
	gov := NewGovernor(state, govSampler, &workers, newWorker, s.settings, s.childLogger("[governor]"))
	rep := NewReporter(state, s.newSampler(), s.renderer, s.sinks, s.target, start, s.settings, s.childLogger("[reporter]"))

	var loops Pool
	loops.Go(func() { gov.Run(ctx) })
	loops.Go(func() { rep.Run(ctx) })

	s.log.Debug("dialing %s (deadline %s, batch %d, ceiling %d)",
		s.target, s.settings.Deadline, s.settings.SpawnBatch, s.settings.MaxWorkers)

	s.wait(ctx, state, start)

	loops.Wait()
	workers.Wait()

	out := Outcome{
		Phase:    state.Phase(),
		Endpoint: state.Endpoint(),
		Reason:   state.Reason(),
		Attempts: state.Total(),
		Spawned:  state.Spawned(),
		Elapsed:  time.Since(start),
		Failures: state.Failures(),
	}
	s.log.Debug("session finished: %s (%s) after %d attempts", out.Phase, out.Reason, out.Attempts)
	return out, nil
}

// wait blocks until the session stops, turning the deadline and ctx
// cancellation into stop reasons.
func (s *Session) wait(ctx context.Context, state *State, start time.Time) {
	deadline := time.NewTimer(s.settings.Deadline)
	defer deadline.Stop()
	poll := time.NewTicker(s.settings.PollInterval)
	defer poll.Stop()

	for {
		select {
		case <-state.Done():
			return
		case <-ctx.Done():
			state.Stop(ReasonInterrupt)
			return
		case <-deadline.C:
			state.Stop(ReasonDeadline)
			return
		case <-poll.C:
			s.log.Debug("still dialing %s: %d attempts, %d workers, %s elapsed",
				s.target, state.Total(), state.Active(), time.Since(start).Round(time.Second))
		}
	}
}

// childLogger returns the injected logger, or a fresh one with prefix.
func (s *Session) childLogger(prefix string) logger.Logger {
	if s.injected {
		return s.log
	}
	return logger.NewEnvLogger(prefix)
}
