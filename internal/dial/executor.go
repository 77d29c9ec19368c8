package dial

import (
	"context"
	"time"
)

// Connector is the part of the adb bridge a session needs.
type Connector interface {
	// Check verifies the bridge is usable before any worker starts.
	Check(ctx context.Context) error
	// Connect runs `adb connect <endpoint>` and returns its trimmed output.
	Connect(ctx context.Context, endpoint string) (string, error)
}

// Executor performs single connection attempts against one target.
type Executor struct {
	bridge   Connector
	endpoint string
	timeout  time.Duration
	state    *State
}

// NewExecutor creates an executor whose attempts are bounded by timeout.
func NewExecutor(bridge Connector, target Target, timeout time.Duration, state *State) *Executor {
	return &Executor{
		bridge:   bridge,
		endpoint: target.Endpoint(),
		timeout:  timeout,
		state:    state,
	}
}

// Attempt runs one `adb connect`. It never fails outward: bridge errors end
// up in Result.Err. Exactly one attempt is recorded in State per call.
//
// The attempt ignores cancellation of ctx so an interrupted session lets
// in-flight attempts finish within their own timeout.
func (e *Executor) Attempt(ctx context.Context) Result {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	start := time.Now()
	out, err := e.bridge.Connect(actx, e.endpoint)
	latency := time.Since(start)

	e.state.RecordAttempt(latency)

	return Result{
		Endpoint: e.endpoint,
		Output:   out,
		Err:      err,
		Latency:  latency,
		At:       start,
	}
}
