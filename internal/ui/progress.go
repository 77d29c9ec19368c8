package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	progressFilled = '█'
	progressEmpty  = '░'
)

// Bar draws fraction (0..1, clamped) of a width-cell bar, e.g. [████░░░░].
func Bar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	fraction = min(max(fraction, 0), 1)

	filled := int(fraction * float64(width))
	var sb strings.Builder
	sb.Grow(width*3 + 2)
	sb.WriteRune('[')
	sb.WriteString(strings.Repeat(string(progressFilled), filled))
	sb.WriteString(strings.Repeat(string(progressEmpty), width-filled))
	sb.WriteRune(']')
	return sb.String()
}

// RenderCountdown draws the time left before the deadline as a shrinking
// bar, amber in the last quarter and red in the last tenth.
func RenderCountdown(remaining, total float64, width int) string {
	var fraction float64
	if total > 0 {
		fraction = remaining / total
	}
	color := ColorInfo
	switch {
	case fraction <= 0.1:
		color = ColorError
	case fraction <= 0.25:
		color = ColorWarning
	}
	return lipgloss.NewStyle().Foreground(color).Render(Bar(fraction, width))
}
