package bridge

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/rileyhilliard/adbdial/internal/util"
	"github.com/rileyhilliard/adbdial/pkg/sshutil"
)

// MaxRelaySessions caps concurrent commands on the relay connection.
// OpenSSH refuses more than MaxSessions (default 10) channels per connection.
const MaxRelaySessions = 8

// Dialer opens the SSH connection to the relay.
type Dialer func(ctx context.Context, host string, timeout time.Duration) (sshutil.Runner, error)

// DialSSH is the default Dialer.
func DialSSH(ctx context.Context, host string, timeout time.Duration) (sshutil.Runner, error) {
	return sshutil.Dial(ctx, host, timeout)
}

// Relay runs adb on another machine over SSH, for devices only reachable
// from that machine's network. One connection is dialed lazily and shared.
type Relay struct {
	host    string
	binary  string
	timeout time.Duration
	dial    Dialer

	mu     sync.Mutex
	runner sshutil.Runner
	slots  chan struct{}
}

// NewRelay creates a relay bridge. timeout bounds the SSH dial.
func NewRelay(host, binary string, timeout time.Duration) *Relay {
	return NewRelayWithDialer(host, binary, timeout, DialSSH)
}

// NewRelayWithDialer is NewRelay with a custom dialer.
func NewRelayWithDialer(host, binary string, timeout time.Duration, dial Dialer) *Relay {
	return &Relay{
		host:    host,
		binary:  binary,
		timeout: timeout,
		dial:    dial,
		slots:   make(chan struct{}, MaxRelaySessions),
	}
}

func (r *Relay) client(ctx context.Context) (sshutil.Runner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runner != nil {
		return r.runner, nil
	}
	runner, err := r.dial(ctx, r.host, r.timeout)
	if err != nil {
		return nil, err
	}
	log.Debug("connected to relay %s", r.host)
	r.runner = runner
	return runner, nil
}

// drop forgets runner after a transport failure so the next call redials.
// Only the cached runner is cleared; a newer connection is left alone.
func (r *Relay) drop(runner sshutil.Runner, err error) {
	if !errors.IsCode(err, errors.ErrSSH) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runner != runner {
		return
	}
	log.Debug("relay %s connection failed, will redial: %v", r.host, err)
	_ = r.runner.Close()
	r.runner = nil
}

// acquire waits for a free session slot on the relay connection.
func (r *Relay) acquire(ctx context.Context) (func(), error) {
	select {
	case r.slots <- struct{}{}:
		return func() { <-r.slots }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Check dials the relay and runs `adb version` there.
func (r *Relay) Check(ctx context.Context) error {
	c, err := r.client(ctx)
	if err != nil {
		return err
	}

	out, code, err := c.Output(ctx, util.ShellJoin(r.binary, "version"))
	if err != nil {
		r.drop(c, err)
		return errors.WrapWithCode(err, errors.ErrBridge,
			fmt.Sprintf("Couldn't run %s on relay %s", r.binary, r.host),
			"Check the relay connection: ssh "+r.host)
	}
	if code != 0 {
		return errors.New(errors.ErrBridge,
			fmt.Sprintf("'%s' isn't usable on relay %s (exit %d)", r.binary, r.host, code),
			"Install Android platform-tools on the relay, or set bridge.binary to its full path")
	}
	log.Debug("relay adb: %s", firstLine(trimOutput(out)))
	return nil
}

// Connect runs `adb connect endpoint` on the relay.
func (r *Relay) Connect(ctx context.Context, endpoint string) (string, error) {
	started := time.Now()

	c, err := r.client(ctx)
	if err != nil {
		return "", err
	}
	release, err := r.acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("adb connect %s timed out waiting for a relay session after %s: %w",
			endpoint, attemptTimeout(ctx, started), err)
	}
	defer release()

	out, code, err := c.Output(ctx, util.ShellJoin(r.binary, "connect", endpoint))
	text := trimOutput(out)
	switch {
	case err != nil && ctx.Err() != nil:
		return text, fmt.Errorf("adb connect %s timed out after %s: %w", endpoint, attemptTimeout(ctx, started), ctx.Err())
	case err != nil:
		r.drop(c, err)
		return text, err
	case code != 0:
		return text, errors.NewExitError(code)
	}
	return text, nil
}

// Run runs `adb -s device args...` on the relay.
func (r *Relay) Run(ctx context.Context, device string, args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	c, err := r.client(ctx)
	if err != nil {
		return -1, err
	}
	release, err := r.acquire(ctx)
	if err != nil {
		return -1, err
	}
	defer release()

	argv := append([]string{r.binary, "-s", device}, args...)
	code, err := c.Run(ctx, util.ShellJoin(argv...), stdin, stdout, stderr)
	if err != nil {
		r.drop(c, err)
		return -1, errors.WrapWithCode(err, errors.ErrBridge,
			fmt.Sprintf("Couldn't run adb on relay %s", r.host),
			"Check the relay connection: ssh "+r.host)
	}
	return code, nil
}

// Close closes the relay connection if one was opened.
func (r *Relay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runner == nil {
		return nil
	}
	err := r.runner.Close()
	r.runner = nil
	return err
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
