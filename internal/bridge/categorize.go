package bridge

import (
	"context"
	stderrors "errors"
	"strings"
)

// Reason categorizes why a connection attempt failed.
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonTimeout
	ReasonRefused
	ReasonUnreachable
	ReasonUnauthorized
	ReasonNotFound
)

// String returns a human-readable description of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonTimeout:
		return "connection timed out"
	case ReasonRefused:
		return "connection refused"
	case ReasonUnreachable:
		return "host unreachable"
	case ReasonUnauthorized:
		return "device unauthorized"
	case ReasonNotFound:
		return "adb not found"
	default:
		return "unknown error"
	}
}

// Categorize classifies a failed attempt from adb's output and the bridge
// error. adb reports most failures on stdout with exit status 0, so the
// text is checked as well as err.
func Categorize(output string, err error) Reason {
	if err != nil && stderrors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}

	text := strings.ToLower(output)
	if err != nil {
		text += " " + strings.ToLower(err.Error())
	}

	switch {
	case strings.Contains(text, "timed out"), strings.Contains(text, "timeout"):
		return ReasonTimeout
	case strings.Contains(text, "connection refused"):
		return ReasonRefused
	case strings.Contains(text, "no route to host"),
		strings.Contains(text, "network is unreachable"),
		strings.Contains(text, "host is down"):
		return ReasonUnreachable
	case strings.Contains(text, "unauthorized"), strings.Contains(text, "failed to authenticate"):
		return ReasonUnauthorized
	case strings.Contains(text, "executable file not found"),
		strings.Contains(text, "no such file or directory"),
		strings.Contains(text, "command not found"):
		return ReasonNotFound
	default:
		return ReasonUnknown
	}
}

// Classify is Categorize as a dial.Classifier.
func Classify(output string, err error) string {
	return Categorize(output, err).String()
}
