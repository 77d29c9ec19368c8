// Package shell is the interactive prompt opened on a connected device.
// Each line is split on whitespace and run as `adb -s <device> <args...>`.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/rileyhilliard/adbdial/internal/logger"
)

// ExitCommand ends the shell. Matched case-insensitively.
const ExitCommand = "exit"

// Runner runs adb against a device. bridge.Bridge satisfies it.
type Runner interface {
	Run(ctx context.Context, device string, args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error)
}

var log = logger.NewEnvLogger("[shell]")

// Prompt returns the prompt shown for device.
func Prompt(device string) string {
	return fmt.Sprintf("adb@%s $ ", device)
}

// Run reads commands from in until `exit`, EOF, or cancellation of ctx, all
// of which end the shell cleanly. A command that exits non-zero, or that adb
// can't run, ends the shell with a SHELL error.
//
// Commands get no stdin; in belongs to the prompt.
func Run(ctx context.Context, r Runner, device string, in io.Reader, out, errOut io.Writer) error {
	lines, readErr := readLines(ctx, in)

	for {
		fmt.Fprint(out, Prompt(device))

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				if err := <-readErr; err != nil {
					return errors.WrapWithCode(err, errors.ErrShell,
						"Couldn't read from the terminal",
						"Run 'adbdial shell "+device+"' to reopen the shell")
				}
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if strings.EqualFold(line, ExitCommand) {
			return nil
		}

		args := strings.Fields(line)
		log.Debug("running adb -s %s %s", device, line)
		code, err := r.Run(ctx, device, args, nil, out, errOut)
		if ctx.Err() != nil {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrShell,
				fmt.Sprintf("'%s' failed", line),
				"Check the device is still connected: adb devices")
		}
		if code != 0 {
			return errors.WrapWithCode(errors.NewExitError(code), errors.ErrShell,
				fmt.Sprintf("'%s' exited with status %d", line, code),
				"Run 'adbdial shell "+device+"' to reopen the shell")
		}
	}
}

// readLines feeds lines from in to a channel, closed at EOF. The reader
// error, if any, is delivered after the close.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- sc.Err()
	}()
	return lines, errc
}
