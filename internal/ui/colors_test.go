package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestColorValues(t *testing.T) {
	colors := []lipgloss.Color{
		ColorSuccess, ColorError, ColorWarning, ColorInfo,
		ColorPrimary, ColorSecondary, ColorMuted, ColorBorder,
	}
	for _, c := range colors {
		s := string(c)
		assert.Len(t, s, 7, "color should be #RRGGBB: %s", s)
		assert.Equal(t, byte('#'), s[0])
	}
}

func TestStylesAreFunctional(t *testing.T) {
	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Success", SuccessStyle()},
		{"Error", ErrorStyle()},
		{"Warning", WarningStyle()},
		{"Info", InfoStyle()},
		{"Muted", MutedStyle()},
		{"Label", LabelStyle()},
	}
	for _, tt := range styles {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.style.Render("test text"), "test text")
		})
	}
}

func TestDisableColors(t *testing.T) {
	assert.NotPanics(t, DisableColors)
	assert.Equal(t, "plain", SuccessStyle().Render("plain"))
}

func TestLoadColor(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		limit   float64
		want    lipgloss.Color
	}{
		{"idle", 10, 80, ColorSuccess},
		{"close to limit", 65, 80, ColorWarning},
		{"at limit", 80, 80, ColorError},
		{"over limit", 97, 90, ColorError},
		{"no limit", 99, 0, ColorSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LoadColor(tt.percent, tt.limit))
		})
	}
}
