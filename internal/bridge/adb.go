package bridge

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/rileyhilliard/adbdial/internal/errors"
)

// waitDelay bounds how long we wait for adb's output pipes after killing it.
// `adb connect` may fork the adb server, which inherits them.
const waitDelay = 500 * time.Millisecond

// ADB runs the local adb binary.
type ADB struct {
	binary string
}

// NewADB creates a bridge for the given adb executable name or path.
func NewADB(binary string) *ADB {
	return &ADB{binary: binary}
}

// Check verifies the binary is on PATH.
func (a *ADB) Check(ctx context.Context) error {
	path, err := exec.LookPath(a.binary)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrBridge,
			fmt.Sprintf("Can't find '%s'", a.binary),
			"Install Android platform-tools and add them to your PATH, or set bridge.binary in .adbdial.yaml")
	}
	log.Debug("using %s", path)
	return nil
}

// Connect runs `adb connect endpoint`, killed when ctx expires.
func (a *ADB) Connect(ctx context.Context, endpoint string) (string, error) {
	started := time.Now()

	cmd := exec.CommandContext(ctx, a.binary, "connect", endpoint)
	cmd.WaitDelay = waitDelay
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	out := trimOutput(stdout.Bytes())
	if err == nil {
		return out, nil
	}

	if ctx.Err() != nil {
		return out, fmt.Errorf("adb connect %s timed out after %s: %w", endpoint, attemptTimeout(ctx, started), ctx.Err())
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return out, errors.NewExitError(exitErr.ExitCode())
	}
	return out, fmt.Errorf("run %s: %w", a.binary, err)
}

// Run runs `adb -s device args...` streaming to the given writers.
func (a *ADB) Run(ctx context.Context, device string, args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	argv := append([]string{"-s", device}, args...)
	cmd := exec.CommandContext(ctx, a.binary, argv...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) && ctx.Err() == nil {
			return exitErr.ExitCode(), nil
		}
		return -1, errors.WrapWithCode(err, errors.ErrBridge,
			fmt.Sprintf("Couldn't run %s", a.binary),
			"Make sure adb is installed and the device is still connected: adb devices")
	}
	return 0, nil
}

// Close is a no-op for local adb.
func (a *ADB) Close() error {
	return nil
}
