package dashboard

import (
	stderrors "errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/adbdial/internal/dial"
)

// ErrClosed is returned by Render once the dashboard has exited.
var ErrClosed = stderrors.New("dashboard closed")

// Bridge forwards frames to the Bubble Tea program via program.Send().
// This is goroutine-safe.
type Bridge struct {
	program *tea.Program
	done    <-chan struct{}
}

// NewBridge creates a bridge to program. done is closed when the program exits.
func NewBridge(program *tea.Program, done <-chan struct{}) *Bridge {
	return &Bridge{program: program, done: done}
}

// Render implements dial.Renderer. It fails once the program has exited,
// which ends the reporter's loop.
func (b *Bridge) Render(f dial.Frame) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}
	b.program.Send(FrameMsg(f))
	return nil
}
