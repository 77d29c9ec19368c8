package dial

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	bridgetest "github.com/rileyhilliard/adbdial/internal/bridge/testing"
	"github.com/rileyhilliard/adbdial/internal/logger"
	telemetrytest "github.com/rileyhilliard/adbdial/internal/telemetry/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.AttemptTimeout = time.Second
	s.Pause = time.Millisecond
	s.WorkerBudget = 5 * time.Second
	s.GovernorInterval = 5 * time.Millisecond
	s.MaxWorkers = 10
	s.SpawnBatch = 5
	s.ReportInterval = 10 * time.Millisecond
	s.Deadline = 5 * time.Second
	s.PollInterval = 50 * time.Millisecond
	return s
}

// newTestGovernor returns a governor whose workers keep failing until the
// session stops, so spawned workers stay active.
func newTestGovernor(t *testing.T, state *State, sampler *telemetrytest.FakeSampler, s Settings) (*Governor, *Pool) {
	b := bridgetest.AlwaysFail()
	b.Latency = 5 * time.Millisecond
	exec := NewExecutor(b, testTarget, time.Second, state)
	race := NewRace(state, s.SuccessMarker)
	pool := &Pool{}
	newWorker := func(id int) *Worker {
		return &Worker{id: id, exec: exec, race: race, state: state, budget: time.Minute, pause: time.Millisecond, log: logger.Noop()}
	}
	t.Cleanup(func() {
		state.Stop(ReasonInterrupt)
		pool.Wait()
	})
	return NewGovernor(state, sampler, pool, newWorker, s, logger.Noop()), pool
}

func TestGovernor_SpawnsInBatchesUpToCeiling(t *testing.T) {
	s := testSettings()
	s.MaxWorkers = 12
	state := NewState(s.MaxWorkers)
	gov, _ := newTestGovernor(t, state, telemetrytest.Idle(), s)

	assert.Equal(t, 5, gov.cycle(context.Background()))
	assert.Equal(t, 5, gov.cycle(context.Background()))
	assert.Equal(t, 2, gov.cycle(context.Background()))
	assert.Equal(t, 0, gov.cycle(context.Background()))
	assert.Equal(t, 12, state.Active())
	assert.False(t, state.TakeSample().Throttled)
}

func TestGovernor_NoSpawnOverThreshold(t *testing.T) {
	tests := []struct {
		name     string
		cpu, mem float64
	}{
		{"cpu", 85, 10},
		{"cpu at limit", 80, 10},
		{"memory", 10, 95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings()
			state := NewState(s.MaxWorkers)
			gov, _ := newTestGovernor(t, state, telemetrytest.Loaded(tt.cpu, tt.mem), s)

			for i := 0; i < 5; i++ {
				assert.Equal(t, 0, gov.cycle(context.Background()))
			}
			assert.Equal(t, 0, state.Spawned())
			assert.True(t, state.TakeSample().Throttled)
		})
	}
}

func TestGovernor_ResumesWhenLoadDrops(t *testing.T) {
	s := testSettings()
	state := NewState(s.MaxWorkers)
	sampler := telemetrytest.Loaded(95, 10)
	gov, _ := newTestGovernor(t, state, sampler, s)

	assert.Equal(t, 0, gov.cycle(context.Background()))
	sampler.SetLoad(20, 20)
	assert.Equal(t, 5, gov.cycle(context.Background()))
	assert.False(t, state.TakeSample().Throttled)
}

func TestGovernor_SampleErrorHoldsPool(t *testing.T) {
	s := testSettings()
	state := NewState(s.MaxWorkers)
	sampler := telemetrytest.Idle()
	sampler.SetError(stderrors.New("no /proc"))
	gov, _ := newTestGovernor(t, state, sampler, s)

	assert.Equal(t, 0, gov.cycle(context.Background()))
	assert.True(t, state.TakeSample().Throttled)
}

func TestGovernor_NoSpawnAfterStop(t *testing.T) {
	s := testSettings()
	state := NewState(s.MaxWorkers)
	sampler := telemetrytest.Idle()
	gov, pool := newTestGovernor(t, state, sampler, s)

	require.Equal(t, 5, gov.cycle(context.Background()))
	state.Stop(ReasonDeadline)
	calls := sampler.CallCount()

	assert.Equal(t, 0, gov.cycle(context.Background()))
	assert.Equal(t, 5, state.Spawned())
	assert.Equal(t, calls, sampler.CallCount(), "no sample taken once stopped")

	pool.Wait()
	assert.Equal(t, 0, state.Active())
}

func TestGovernor_RunExitsOnStop(t *testing.T) {
	s := testSettings()
	state := NewState(s.MaxWorkers)
	gov, pool := newTestGovernor(t, state, telemetrytest.Idle(), s)

	done := make(chan struct{})
	go func() {
		gov.Run(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return state.Active() == s.MaxWorkers }, time.Second, time.Millisecond)
	state.Stop(ReasonInterrupt)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("governor did not exit after stop")
	}
	assert.Equal(t, s.MaxWorkers, state.Spawned())
	pool.Wait()
}
