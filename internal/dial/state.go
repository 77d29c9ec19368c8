package dial

import (
	"sync"
	"time"
)

// StopReason records why a session stopped.
type StopReason string

const (
	ReasonNone      StopReason = ""
	ReasonSuccess   StopReason = "success"
	ReasonDeadline  StopReason = "deadline"
	ReasonInterrupt StopReason = "interrupt"
)

// Phase is the externally visible session state.
type Phase int

const (
	Running Phase = iota
	Succeeded
	StoppedNoSuccess
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case StoppedNoSuccess:
		return "stopped"
	default:
		return "unknown"
	}
}

// Window is the consume-on-read attempt sample taken by the reporter.
type Window struct {
	// Attempts made since the previous TakeSample.
	Attempts int64
	// AvgLatencyMS is the mean latency of those attempts, 0 when there were none.
	AvgLatencyMS float64
	// Total attempts since the session started.
	Total int64
	// Active workers at the time of the sample.
	Active int
	// Spawned is the number of workers started so far.
	Spawned int
	// Throttled is true when the governor's last cycle was held back by load.
	Throttled bool
}

// State is the shared session state: attempt counters, race outcome, and
// worker pool accounting, all behind a single mutex.
//
// Invariants: success implies stopped; the winner is set at most once;
// 0 <= active <= ceiling.
type State struct {
	mu sync.Mutex

	ceiling int
	active  int
	spawned int

	total        int64
	window       int64
	latencySum   time.Duration
	latencyCount int64
	throttled    bool
	failures     map[string]int64

	succeeded bool
	endpoint  string
	reason    StopReason
	done      chan struct{}
}

// NewState creates state for a pool of at most ceiling concurrent workers.
func NewState(ceiling int) *State {
	if ceiling < 1 {
		ceiling = 1
	}
	return &State{
		ceiling:  ceiling,
		failures: make(map[string]int64),
		done:     make(chan struct{}),
	}
}

// RecordAttempt counts one finished attempt and its latency.
func (s *State) RecordAttempt(latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	s.window++
	s.latencySum += latency
	s.latencyCount++
}

// TakeSample returns the attempts and mean latency since the previous call
// and resets that window.
func (s *State) TakeSample() Window {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := Window{
		Attempts:  s.window,
		Total:     s.total,
		Active:    s.active,
		Spawned:   s.spawned,
		Throttled: s.throttled,
	}
	if s.latencyCount > 0 {
		w.AvgLatencyMS = float64(s.latencySum) / float64(s.latencyCount) / float64(time.Millisecond)
	}

	s.window = 0
	s.latencySum = 0
	s.latencyCount = 0
	return w
}

// RecordFailure tallies an unsuccessful attempt under reason.
func (s *State) RecordFailure(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[reason]++
}

// Failures returns a copy of the failure tally by reason.
func (s *State) Failures() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int64, len(s.failures))
	for k, v := range s.failures {
		out[k] = v
	}
	return out
}

// Total returns attempts made since the session started.
func (s *State) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Win atomically claims success for endpoint. Only the first caller wins,
// and only while the session is running; winning also stops the session.
func (s *State) Win(endpoint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reason != ReasonNone {
		return false
	}
	s.succeeded = true
	s.endpoint = endpoint
	s.stopLocked(ReasonSuccess)
	return true
}

// Stop stops the session. The first reason sticks; later calls are no-ops
// and return false.
func (s *State) Stop(reason StopReason) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked(reason)
}

func (s *State) stopLocked(reason StopReason) bool {
	if s.reason != ReasonNone {
		return false
	}
	s.reason = reason
	close(s.done)
	return true
}

// Done is closed once the session stops.
func (s *State) Done() <-chan struct{} {
	return s.done
}

// Stopped reports whether the session has stopped.
func (s *State) Stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Reason returns why the session stopped, or ReasonNone while running.
func (s *State) Reason() StopReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Endpoint returns the winning endpoint, empty until someone wins.
func (s *State) Endpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint
}

// Phase returns Running, Succeeded, or StoppedNoSuccess.
func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.succeeded:
		return Succeeded
	case s.reason != ReasonNone:
		return StoppedNoSuccess
	default:
		return Running
	}
}

// Acquire reserves up to n worker slots and returns how many it got: zero
// once stopped, otherwise min(n, ceiling-active).
func (s *State) Acquire(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reason != ReasonNone || n <= 0 {
		return 0
	}
	n = min(n, s.ceiling-s.active)
	if n <= 0 {
		return 0
	}
	s.active += n
	s.spawned += n
	return n
}

// Release returns one worker slot. It never drops below zero.
func (s *State) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active > 0 {
		s.active--
	}
}

// Active returns the number of live workers.
func (s *State) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Spawned returns the number of workers started so far.
func (s *State) Spawned() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawned
}

// Ceiling returns the maximum number of concurrent workers.
func (s *State) Ceiling() int {
	return s.ceiling
}

// SetThrottled records whether the governor's latest cycle was held back.
func (s *State) SetThrottled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.throttled = on
}
