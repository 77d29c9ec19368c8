package ui

import (
	"fmt"
	"io"

	"github.com/rileyhilliard/adbdial/internal/dial"
)

// clearScreen homes the cursor and clears the terminal.
const clearScreen = "\033[H\033[2J"

// Screen redraws the full status panel on every frame.
type Screen struct {
	w io.Writer
}

// NewScreen creates a Screen renderer writing to w.
func NewScreen(w io.Writer) *Screen {
	return &Screen{w: w}
}

// Render implements dial.Renderer.
func (s *Screen) Render(f dial.Frame) error {
	_, err := fmt.Fprint(s.w, clearScreen+FormatFrame(f))
	return err
}

// Plain writes one line per frame, for logs and pipes.
type Plain struct {
	w io.Writer
}

// NewPlain creates a Plain renderer writing to w.
func NewPlain(w io.Writer) *Plain {
	return &Plain{w: w}
}

// Render implements dial.Renderer.
func (p *Plain) Render(f dial.Frame) error {
	_, err := fmt.Fprintln(p.w, FormatFrameLine(f))
	return err
}

// Quiet discards frames.
type Quiet struct{}

// Render implements dial.Renderer.
func (Quiet) Render(dial.Frame) error { return nil }

var (
	_ dial.Renderer = (*Screen)(nil)
	_ dial.Renderer = (*Plain)(nil)
	_ dial.Renderer = Quiet{}
)
