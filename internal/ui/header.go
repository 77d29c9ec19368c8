package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo describes the session shown above plain and quiet output.
type HeaderInfo struct {
	Version  string
	Target   string
	Bridge   string // where adb runs, e.g. "adb via lab-box"
	Deadline time.Duration
}

// HeaderWidth is the width of the header divider.
const HeaderWidth = 50

// RenderHeader renders the banner printed before dialing starts.
func RenderHeader(info HeaderInfo) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true).Render("adbdial"))
	if info.Version != "" {
		b.WriteString(" " + MutedStyle().Render(info.Version))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "dialing %s with %s for up to %s\n",
		InfoStyle().Render(info.Target), info.Bridge, info.Deadline)
	b.WriteString(MutedStyle().Render("workers grow while CPU and memory stay under their limits"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(ColorBorder).Render(strings.Repeat("━", HeaderWidth)))
	b.WriteString("\n")
	return b.String()
}
