package dashboard

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/adbdial/internal/ui"
)

// Layout bounds for the panel and countdown bar.
const (
	minBarWidth = 20
	maxBarWidth = 60
	panelMargin = 4
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(ui.ColorSecondary).
			Bold(true)

	targetStyle = lipgloss.NewStyle().
			Foreground(ui.ColorInfo)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorBorder).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(ui.ColorSecondary)
)
