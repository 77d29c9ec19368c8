// Package bridge runs the adb command line, either locally or on an SSH
// relay host, for the dial session and the interactive shell.
package bridge

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rileyhilliard/adbdial/internal/config"
	"github.com/rileyhilliard/adbdial/internal/logger"
)

// Bridge is the adb collaborator.
type Bridge interface {
	// Check verifies adb can be run at all.
	Check(ctx context.Context) error

	// Connect runs `adb connect <endpoint>` and returns its trimmed stdout.
	// ctx carries the attempt timeout.
	Connect(ctx context.Context, endpoint string) (string, error)

	// Run runs `adb -s <device> <args...>` with the given streams and
	// returns its exit code. A non-zero code with a nil error means adb ran
	// and reported failure.
	Run(ctx context.Context, device string, args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error)

	// Close releases any connection the bridge holds.
	Close() error
}

// New builds the bridge described by cfg: a Relay when bridge.relay is
// set, otherwise local adb.
func New(cfg config.BridgeConfig) Bridge {
	if cfg.Relay != "" {
		return NewRelay(cfg.Relay, cfg.Binary, cfg.ProbeTimeout)
	}
	return NewADB(cfg.Binary)
}

// Describe names where adb runs, for status lines.
func Describe(cfg config.BridgeConfig) string {
	if cfg.Relay != "" {
		return cfg.Binary + " via " + cfg.Relay
	}
	return cfg.Binary
}

var log = logger.NewEnvLogger("[bridge]")

func trimOutput(b []byte) string {
	return strings.TrimSpace(string(b))
}

// attemptTimeout returns the limit ctx put on an attempt begun at started.
func attemptTimeout(ctx context.Context, started time.Time) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		return dl.Sub(started).Round(time.Millisecond)
	}
	return time.Since(started).Round(time.Millisecond)
}
