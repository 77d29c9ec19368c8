package dial

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/adbdial/internal/bridge"
	bridgetest "github.com/rileyhilliard/adbdial/internal/bridge/testing"
	"github.com/rileyhilliard/adbdial/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTarget = Target{Host: "10.0.0.2", Port: 5555}

func newTestWorker(state *State, c Connector, budget, pause time.Duration, log logger.Logger) *Worker {
	return &Worker{
		id:     1,
		exec:   NewExecutor(c, testTarget, time.Second, state),
		race:   NewRace(state, "connected to"),
		state:  state,
		budget: budget,
		pause:  pause,
		log:    log,
	}
}

func TestWorker_StopsOnSuccess(t *testing.T) {
	state := NewState(1)
	require.Equal(t, 1, state.Acquire(1))
	b := bridgetest.SucceedAfter(3)
	log := logger.NewBufferLogger()

	newTestWorker(state, b, 10*time.Second, time.Millisecond, log).Run(context.Background())

	assert.Equal(t, int64(3), b.Connects())
	assert.Equal(t, Succeeded, state.Phase())
	assert.Equal(t, "10.0.0.2:5555", state.Endpoint())
	assert.Equal(t, 0, state.Active())
	assert.True(t, log.HasLevel("info"))
}

func TestWorker_ExitsOnBudget(t *testing.T) {
	state := NewState(1)
	require.Equal(t, 1, state.Acquire(1))
	b := bridgetest.AlwaysFail()

	start := time.Now()
	newTestWorker(state, b, 50*time.Millisecond, 5*time.Millisecond, logger.Noop()).Run(context.Background())

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, Running, state.Phase(), "budget exhaustion doesn't stop the session")
	assert.Equal(t, 0, state.Active(), "slot released exactly once")
	assert.Greater(t, b.Connects(), int64(1))
	assert.Equal(t, b.Connects(), state.Total())
}

func TestWorker_ReleasesOnce(t *testing.T) {
	state := NewState(2)
	require.Equal(t, 2, state.Acquire(2))

	newTestWorker(state, bridgetest.AlwaysFail(), 0, 0, logger.Noop()).Run(context.Background())

	assert.Equal(t, 1, state.Active())
}

func TestWorker_ObservesStopDuringPause(t *testing.T) {
	state := NewState(1)
	require.Equal(t, 1, state.Acquire(1))
	b := bridgetest.AlwaysFail()

	done := make(chan struct{})
	go func() {
		newTestWorker(state, b, time.Minute, time.Hour, logger.Noop()).Run(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return b.Connects() == 1 }, time.Second, time.Millisecond)
	state.Stop(ReasonInterrupt)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not observe stop while pausing")
	}
	assert.Equal(t, int64(1), b.Connects())
}

func TestWorker_ClassifiesFailures(t *testing.T) {
	state := NewState(1)
	require.Equal(t, 1, state.Acquire(1))
	w := newTestWorker(state, bridgetest.SucceedAfter(4), time.Minute, 0, logger.Noop())
	w.classify = bridge.Classify

	w.Run(context.Background())

	assert.Equal(t, map[string]int64{"connection refused": 3}, state.Failures())
}

func TestWorker_LogsFailuresAtDebug(t *testing.T) {
	state := NewState(1)
	require.Equal(t, 1, state.Acquire(1))
	log := logger.NewBufferLogger()
	w := newTestWorker(state, bridgetest.SucceedAfter(2), time.Minute, 0, log)
	w.classify = bridge.Classify

	w.Run(context.Background())

	var found bool
	for _, m := range log.Messages() {
		if m.Level == "debug" && strings.Contains(m.Message, "connection refused") {
			found = true
		}
	}
	assert.True(t, found, "messages: %v", log.Messages())
}
