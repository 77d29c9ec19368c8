package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/adbdial/internal/dial"
)

// CountdownWidth is the width of the deadline bar in the screen panel.
const CountdownWidth = 40

// FormatClock renders d as mm:ss, rounding up so a countdown only reads
// 00:00 once time is actually out.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// FormatKBps renders a byte rate given in KB/s.
func FormatKBps(kbps float64) string {
	if kbps >= 1024 {
		return fmt.Sprintf("%.1f MB/s", kbps/1024)
	}
	return fmt.Sprintf("%.1f KB/s", kbps)
}

// FormatFrame renders the multi-line status panel redrawn on every frame.
func FormatFrame(f dial.Frame) string {
	var b strings.Builder

	title := lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true).Render("adbdial")
	fmt.Fprintf(&b, "%s %s %s   %s %s\n",
		title, SymbolArrow, InfoStyle().Render(f.Target),
		MutedStyle().Render("remaining"), FormatClock(f.Remaining))
	b.WriteString(RenderCountdown(f.Remaining.Seconds(), f.Deadline.Seconds(), CountdownWidth))
	b.WriteString("\n\n")
	b.WriteString(FormatMetrics(f))
	return b.String()
}

// FormatMetrics renders the labelled metric rows of a frame.
func FormatMetrics(f dial.Frame) string {
	label := LabelStyle()
	muted := MutedStyle()
	var b strings.Builder

	workers := fmt.Sprintf("%d active  %s", f.Active, muted.Render(fmt.Sprintf("%d spawned", f.Spawned)))
	if f.Throttled {
		workers += "  " + WarningStyle().Render(SymbolThrottled+" throttled")
	}
	fmt.Fprintf(&b, "%s%s\n", label.Render("workers"), workers)

	fmt.Fprintf(&b, "%s%d total  %d in %s  %.1f/s  %s\n", label.Render("attempts"),
		f.Total, f.Attempts, f.Interval, f.RatePerSec,
		muted.Render(fmt.Sprintf("avg %.1f ms", f.AvgLatencyMS)))

	cpu := lipgloss.NewStyle().Foreground(LoadColor(f.CPUPercent, f.CPUThreshold)).Render(fmt.Sprintf("%.1f%%", f.CPUPercent))
	mem := lipgloss.NewStyle().Foreground(LoadColor(f.MemPercent, f.MemThreshold)).Render(fmt.Sprintf("%.1f%%", f.MemPercent))
	fmt.Fprintf(&b, "%scpu %s  mem %s\n", label.Render("load"), cpu, mem)

	fmt.Fprintf(&b, "%s%s %s  %s %s\n", label.Render("network"),
		SymbolUp, FormatKBps(f.SentKBps), SymbolDown, FormatKBps(f.RecvKBps))

	if spark := RenderSparkline(f.RateHistory, DefaultSparkWidth); spark != "" {
		fmt.Fprintf(&b, "%s%s\n", label.Render("rate"), spark)
	}
	return b.String()
}

// FormatFrameLine renders a frame as one uncolored key=value line.
func FormatFrameLine(f dial.Frame) string {
	line := fmt.Sprintf("[%s] %s remaining=%s active=%d total=%d attempts=%d rate=%.1f/s avg=%.1fms cpu=%.1f%% mem=%.1f%% up=%.1fKB/s down=%.1fKB/s",
		FormatClock(f.Elapsed), f.Target, FormatClock(f.Remaining),
		f.Active, f.Total, f.Attempts, f.RatePerSec, f.AvgLatencyMS,
		f.CPUPercent, f.MemPercent, f.SentKBps, f.RecvKBps)
	if f.Throttled {
		line += " throttled"
	}
	return line
}
