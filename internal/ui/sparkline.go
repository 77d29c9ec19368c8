package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

var sparklineBlockRunes = []rune(sparklineBlocks)

// DefaultSparkWidth is how many recent samples a sparkline shows.
const DefaultSparkWidth = 30

// Sparkline renders the most recent width values as block characters,
// scaled from zero to the largest value shown. Rates are never negative, so
// zero is the floor and an idle period reads as a flat bottom line.
func Sparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	var maxVal float64
	for _, v := range data {
		maxVal = max(maxVal, v)
	}

	top := len(sparklineBlockRunes) - 1
	var sb strings.Builder
	sb.Grow(len(data) * 3)
	for _, v := range data {
		level := 0
		if maxVal > 0 && v > 0 {
			level = int(v / maxVal * float64(top))
			level = min(max(level, 0), top)
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}
	return sb.String()
}

// RenderSparkline is Sparkline in the info color.
func RenderSparkline(data []float64, width int) string {
	s := Sparkline(data, width)
	if s == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(ColorInfo).Render(s)
}
