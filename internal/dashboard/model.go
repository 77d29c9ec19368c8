package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/adbdial/internal/dial"
	"github.com/rileyhilliard/adbdial/internal/ui"
)

// Model is the Bubble Tea model for the dial dashboard.
type Model struct {
	target   string
	deadline time.Duration
	cancel   context.CancelFunc

	frame    dial.Frame
	hasFrame bool

	spinner  spinner.Model
	progress progress.Model
	width    int
	quitting bool
}

// NewModel creates a dashboard model for target. cancel may be nil.
func NewModel(target string, deadline time.Duration, cancel context.CancelFunc) Model {
	return Model{
		target:   target,
		deadline: deadline,
		cancel:   cancel,
		spinner:  spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(spinnerStyle)),
		progress: progress.New(
			progress.WithSolidFill(string(ui.ColorInfo)),
			progress.WithoutPercentage(),
			progress.WithWidth(ui.CountdownWidth),
		),
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-panelMargin, minBarWidth), maxBarWidth)
		return m, nil

	case FrameMsg:
		m.frame = dial.Frame(msg)
		m.hasFrame = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if m.cancel != nil {
			m.cancel()
		}
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// remaining returns the fraction of the deadline left.
func (m Model) remaining() float64 {
	if !m.hasFrame {
		return 1
	}
	if m.deadline <= 0 {
		return 0
	}
	return min(max(m.frame.Remaining.Seconds()/m.deadline.Seconds(), 0), 1)
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s %s\n\n",
		m.spinner.View(), titleStyle.Render("adbdial"), ui.SymbolArrow, targetStyle.Render(m.target))

	remaining := m.deadline
	if m.hasFrame {
		remaining = m.frame.Remaining
	}
	fmt.Fprintf(&sb, "%s %s\n\n", m.progress.ViewAs(m.remaining()), ui.FormatClock(remaining))

	if m.hasFrame {
		sb.WriteString(panelStyle.Render(strings.TrimRight(ui.FormatMetrics(m.frame), "\n")))
	} else {
		sb.WriteString(footerStyle.Render("checking adb and system load..."))
	}
	sb.WriteString("\n\n")
	sb.WriteString(footerStyle.Render("q quit"))
	sb.WriteString("\n")
	return sb.String()
}
