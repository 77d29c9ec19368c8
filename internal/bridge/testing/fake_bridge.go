// Package testing provides test doubles for the bridge package.
package testing

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/adbdial/internal/bridge"
)

// RunCall records one FakeBridge.Run invocation.
type RunCall struct {
	Device string
	Args   []string
}

// FakeBridge is a scripted bridge.Bridge. Connect answers with ConnectFunc,
// after waiting Latency or until ctx is done, whichever is first.
type FakeBridge struct {
	// CheckErr is returned by Check.
	CheckErr error
	// Latency is how long each Connect takes.
	Latency time.Duration
	// ConnectFunc produces the answer for attempt n (1-based).
	ConnectFunc func(n int64, endpoint string) (string, error)
	// RunFunc answers Run. The default writes nothing and exits 0.
	RunFunc func(device string, args []string, stdout, stderr io.Writer) (int, error)

	connects atomic.Int64
	inFlight atomic.Int64
	peak     atomic.Int64

	mu     sync.Mutex
	runs   []RunCall
	closed bool
}

var _ bridge.Bridge = (*FakeBridge)(nil)

// AlwaysFail returns a bridge whose device refuses every connection.
func AlwaysFail() *FakeBridge {
	return &FakeBridge{
		ConnectFunc: func(_ int64, endpoint string) (string, error) {
			return fmt.Sprintf("failed to connect to '%s': Connection refused", endpoint), nil
		},
	}
}

// SucceedAfter returns a bridge that refuses the first n-1 attempts and
// reports success from attempt n onwards.
func SucceedAfter(n int64) *FakeBridge {
	return &FakeBridge{
		ConnectFunc: func(i int64, endpoint string) (string, error) {
			if i >= n {
				return "connected to " + endpoint, nil
			}
			return fmt.Sprintf("failed to connect to '%s': Connection refused", endpoint), nil
		},
	}
}

// Check implements bridge.Bridge.
func (f *FakeBridge) Check(ctx context.Context) error {
	return f.CheckErr
}

// Connect implements bridge.Bridge.
func (f *FakeBridge) Connect(ctx context.Context, endpoint string) (string, error) {
	n := f.connects.Add(1)
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if cur <= p || f.peak.CompareAndSwap(p, cur) {
			break
		}
	}

	if f.Latency > 0 {
		t := time.NewTimer(f.Latency)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", fmt.Errorf("adb connect %s timed out: %w", endpoint, ctx.Err())
		case <-t.C:
		}
	}
	if f.ConnectFunc == nil {
		return "", nil
	}
	return f.ConnectFunc(n, endpoint)
}

// Run implements bridge.Bridge.
func (f *FakeBridge) Run(ctx context.Context, device string, args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	f.mu.Lock()
	f.runs = append(f.runs, RunCall{Device: device, Args: append([]string(nil), args...)})
	fn := f.RunFunc
	f.mu.Unlock()

	if fn == nil {
		return 0, nil
	}
	return fn(device, args, stdout, stderr)
}

// Close implements bridge.Bridge.
func (f *FakeBridge) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Connects returns how many Connect calls were made.
func (f *FakeBridge) Connects() int64 {
	return f.connects.Load()
}

// PeakInFlight returns the most Connect calls that overlapped.
func (f *FakeBridge) PeakInFlight() int64 {
	return f.peak.Load()
}

// Runs returns the recorded Run calls.
func (f *FakeBridge) Runs() []RunCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RunCall(nil), f.runs...)
}

// Closed reports whether Close was called.
func (f *FakeBridge) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
