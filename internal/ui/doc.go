// Package ui renders adbdial's terminal output: the status panel redrawn
// on every frame, its one-line plain variant, and the banners printed when
// a session connects or gives up.
//
// Colors come from a small lipgloss palette. DisableColors switches to
// plain ASCII for --no-color.
//
// # Renderers
//
//	Screen - clears the terminal and redraws the panel (FormatFrame)
//	Plain  - one key=value line per frame (FormatFrameLine)
//	Quiet  - discards frames
//
// The full-screen bubbletea dashboard lives in package dashboard.
package ui
