package sshutil

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/rileyhilliard/adbdial/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Output runs cmd on the relay and returns its stdout and exit code.
// A non-zero exit code with a nil error means the command ran and failed.
func (c *Client) Output(ctx context.Context, cmd string) (stdout []byte, exitCode int, err error) {
	var buf bytes.Buffer
	code, err := c.Run(ctx, cmd, nil, &buf, io.Discard)
	if err != nil {
		return nil, code, err
	}
	return buf.Bytes(), code, nil
}

// Run executes cmd with the given streams. Cancelling ctx kills the remote
// command. The exit code is -1 when the command couldn't run at all.
func (c *Client) Run(ctx context.Context, cmd string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return -1, errors.WrapWithCode(err, errors.ErrSSH,
			"Couldn't open an SSH session on the relay",
			"The connection may have dropped. Run adbdial again to reconnect.")
	}
	defer session.Close()

	session.Stdin = stdin
	session.Stdout = stdout
	session.Stderr = stderr

	if err := session.Start(cmd); err != nil {
		return -1, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't start '%s' on the relay", cmd),
			"Check that adb is installed on the relay host.")
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	select {
	case err = <-done:
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		session.Close()
		<-done
		return -1, ctx.Err()
	}

	if err == nil {
		return 0, nil
	}
	var exitErr *ssh.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitStatus(), nil
	}
	return -1, errors.WrapWithCode(err, errors.ErrSSH,
		fmt.Sprintf("'%s' on the relay ended abnormally", cmd),
		"The relay connection may have dropped.")
}
