package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "#39FF14" // neon green
	ColorError   lipgloss.Color = "#FF0055" // hot red-pink
	ColorWarning lipgloss.Color = "#FFAA00" // amber
	ColorInfo    lipgloss.Color = "#00FFFF" // cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "#F0F0F0"
	ColorSecondary lipgloss.Color = "#B48EFF"
	ColorMuted     lipgloss.Color = "#6C6C80"
	ColorBorder    lipgloss.Color = "#3A3A50"
)

// Styles for the semantic colors.
func SuccessStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorSuccess) }
func ErrorStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorError) }
func WarningStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorWarning) }
func InfoStyle() lipgloss.Style    { return lipgloss.NewStyle().Foreground(ColorInfo) }
func MutedStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorMuted) }

// LabelStyle is used for the left column of metric panels.
func LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorSecondary).Width(10)
}

// DisableColors switches lipgloss to plain ASCII output (--no-color, NO_COLOR).
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// PrintWarning prints a warning line to stderr.
func PrintWarning(msg string) {
	fmt.Fprintln(os.Stderr, WarningStyle().Render(SymbolWarning+" "+msg))
}

// LoadColor colors a utilization reading against the limit the governor
// throttles at: green well below it, amber when close, red at or above.
func LoadColor(percent, limit float64) lipgloss.Color {
	switch {
	case limit > 0 && percent >= limit:
		return ColorError
	case limit > 0 && percent >= limit*0.75:
		return ColorWarning
	default:
		return ColorSuccess
	}
}
