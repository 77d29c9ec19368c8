package sshutil

import (
	"context"
	"io"
)

// Runner runs commands on a remote host. Client implements it; tests use
// the fake in sshutil/testing.
type Runner interface {
	// Output runs cmd and returns stdout and the exit code.
	Output(ctx context.Context, cmd string) (stdout []byte, exitCode int, err error)

	// Run runs cmd with the given streams and returns the exit code.
	Run(ctx context.Context, cmd string, stdin io.Reader, stdout, stderr io.Writer) (exitCode int, err error)

	// GetHost returns the host as given to Dial.
	GetHost() string

	Close() error
}

var _ Runner = (*Client)(nil)
