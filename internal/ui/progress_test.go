package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBar(t *testing.T) {
	tests := []struct {
		fraction float64
		width    int
		want     string
	}{
		{0, 4, "[░░░░]"},
		{0.5, 4, "[██░░]"},
		{1, 4, "[████]"},
		{1.7, 4, "[████]"},
		{-1, 4, "[░░░░]"},
		{0.5, 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Bar(tt.fraction, tt.width), "Bar(%v, %d)", tt.fraction, tt.width)
	}
}

func TestRenderCountdown(t *testing.T) {
	assert.Contains(t, RenderCountdown(15, 30, 4), "[██░░]")
	assert.Contains(t, RenderCountdown(0, 0, 4), "[░░░░]")
}
