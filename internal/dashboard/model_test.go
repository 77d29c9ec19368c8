package dashboard

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/adbdial/internal/dial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame() dial.Frame {
	return dial.Frame{
		Target:       "10.0.0.2:5555",
		Remaining:    15 * time.Second,
		Deadline:     30 * time.Second,
		Interval:     time.Second,
		Active:       7,
		Spawned:      20,
		Total:        300,
		Attempts:     42,
		RatePerSec:   42,
		AvgLatencyMS: 120,
		CPUPercent:   12,
		MemPercent:   50,
		CPUThreshold: 80,
		MemThreshold: 90,
		RateHistory:  []float64{10, 42},
	}
}

func TestModel_ViewBeforeFirstFrame(t *testing.T) {
	m := NewModel("10.0.0.2:5555", 30*time.Second, nil)

	view := m.View()
	assert.Contains(t, view, "10.0.0.2:5555")
	assert.Contains(t, view, "00:30")
	assert.Contains(t, view, "checking adb")
	assert.Equal(t, 1.0, m.remaining())
}

func TestModel_FrameUpdatesView(t *testing.T) {
	m := NewModel("10.0.0.2:5555", 30*time.Second, nil)

	updated, cmd := m.Update(FrameMsg(testFrame()))
	assert.Nil(t, cmd)
	m = updated.(Model)

	assert.InDelta(t, 0.5, m.remaining(), 0.0001)
	view := m.View()
	assert.Contains(t, view, "00:15")
	assert.Contains(t, view, "7 active")
	assert.Contains(t, view, "300 total")
	assert.Contains(t, view, "q quit")
	assert.NotContains(t, view, "checking adb")
}

func TestModel_RemainingClamped(t *testing.T) {
	m := NewModel("x", 0, nil)
	updated, _ := m.Update(FrameMsg(testFrame()))
	assert.Zero(t, updated.(Model).remaining())
}

func TestModel_WindowSize(t *testing.T) {
	m := NewModel("x", time.Second, nil)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 40})
	assert.Equal(t, maxBarWidth, updated.(Model).progress.Width)

	updated, _ = m.Update(tea.WindowSizeMsg{Width: 10, Height: 40})
	assert.Equal(t, minBarWidth, updated.(Model).progress.Width)
}

func TestModel_QuitCancelsSession(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		t.Run(key.String(), func(t *testing.T) {
			cancelled := false
			m := NewModel("x", time.Second, func() { cancelled = true })

			updated, cmd := m.Update(key)
			require.NotNil(t, cmd)
			assert.Equal(t, tea.QuitMsg{}, cmd())
			assert.True(t, cancelled)
			assert.Empty(t, updated.(Model).View())
		})
	}
}

func TestModel_OtherKeysIgnored(t *testing.T) {
	cancelled := false
	m := NewModel("x", time.Second, func() { cancelled = true })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
	assert.False(t, cancelled)
}
