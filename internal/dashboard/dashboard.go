// Package dashboard is the full-screen Bubble Tea view of a dial session.
// Frames from the session's reporter reach the program through Bridge,
// which implements dial.Renderer.
package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/adbdial/internal/dial"
)

// Dashboard runs the TUI in the background while the session dials on the
// caller's goroutine.
type Dashboard struct {
	program *tea.Program
	bridge  *Bridge
	done    chan struct{}
	err     error
}

// Start launches the dashboard. cancel is called when the user quits with
// q or ctrl+c; the session treats that as an interrupt. Extra program
// options are appended to the defaults.
func Start(target string, deadline time.Duration, cancel context.CancelFunc, opts ...tea.ProgramOption) *Dashboard {
	model := NewModel(target, deadline, cancel)
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	d := &Dashboard{
		program: program,
		done:    make(chan struct{}),
	}
	d.bridge = NewBridge(program, d.done)

	go func() {
		defer close(d.done)
		_, d.err = program.Run()
	}()
	return d
}

// Renderer returns the dial.Renderer feeding this dashboard.
func (d *Dashboard) Renderer() dial.Renderer {
	return d.bridge
}

// Close stops the program and waits until the terminal is restored.
func (d *Dashboard) Close() error {
	d.program.Quit()
	<-d.done
	return d.err
}
