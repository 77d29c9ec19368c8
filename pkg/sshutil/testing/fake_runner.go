// Package testing provides test doubles for sshutil.
package testing

import (
	"context"
	"io"
	"strings"
	"sync"
)

// Response is what FakeRunner returns for a matching command.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// FakeRunner implements sshutil.Runner without a network. Responses are
// matched by command prefix; the longest matching prefix wins.
type FakeRunner struct {
	mu        sync.Mutex
	host      string
	responses map[string]Response
	commands  []string
	closed    bool

	// Default is returned for commands with no matching prefix.
	Default Response
}

// NewFakeRunner creates a fake connected to host.
func NewFakeRunner(host string) *FakeRunner {
	return &FakeRunner{host: host, responses: make(map[string]Response)}
}

// On registers the response for commands starting with prefix.
func (f *FakeRunner) On(prefix string, r Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[prefix] = r
	return f
}

// Commands returns every command run so far, in order.
func (f *FakeRunner) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

// Closed reports whether Close was called.
func (f *FakeRunner) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *FakeRunner) lookup(cmd string) Response {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, cmd)
	best, found := "", false
	for prefix := range f.responses {
		if strings.HasPrefix(cmd, prefix) && len(prefix) >= len(best) {
			best, found = prefix, true
		}
	}
	if !found {
		return f.Default
	}
	return f.responses[best]
}

// Output implements sshutil.Runner.
func (f *FakeRunner) Output(ctx context.Context, cmd string) ([]byte, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, -1, err
	}
	r := f.lookup(cmd)
	if r.Err != nil {
		return nil, -1, r.Err
	}
	return []byte(r.Stdout), r.ExitCode, nil
}

// Run implements sshutil.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	r := f.lookup(cmd)
	if r.Err != nil {
		return -1, r.Err
	}
	if stdout != nil {
		io.WriteString(stdout, r.Stdout)
	}
	if stderr != nil {
		io.WriteString(stderr, r.Stderr)
	}
	return r.ExitCode, nil
}

// GetHost implements sshutil.Runner.
func (f *FakeRunner) GetHost() string {
	return f.host
}

// Close implements sshutil.Runner.
func (f *FakeRunner) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
