package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("#6C63FF")
	colorDim     = lipgloss.Color("#666666")
	colorText    = lipgloss.Color("#C0CAF5")
	colorBorder  = lipgloss.Color("#414868")
	colorLink    = lipgloss.Color("#7AA2F7")
	colorWorking = lipgloss.Color("#2ECC71")
	colorBreak   = lipgloss.Color("#F39C12")
	colorFailed  = lipgloss.Color("#E74C3C")
)

// phase is where the tracked day stands; it decides the clock colour and
// the badge in the dashboard and footer.
type phase int

const (
	phaseOff phase = iota
	phaseWorking
	phaseBreak
)

func (d dashboardModel) phase() phase {
	switch {
	case d.timer.onBreak():
		return phaseBreak
	case d.timer.running():
		return phaseWorking
	default:
		return phaseOff
	}
}

func phaseColor(p phase) lipgloss.Color {
	switch p {
	case phaseWorking:
		return colorWorking
	case phaseBreak:
		return colorBreak
	}
	return colorDim
}

// clockStyle renders the big elapsed-time readout.
func clockStyle(p phase) lipgloss.Style {
	return clockBase.Foreground(phaseColor(p))
}

// badgeStyle renders short phase markers such as "● WORKING".
func badgeStyle(p phase) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(phaseColor(p))
}

var (
	clockBase = lipgloss.NewStyle().
			Bold(true).
			Align(lipgloss.Center)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorAccent).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	// A running shift and open pickers get the accent border.
	activePanelStyle = panelStyle.BorderForeground(colorAccent)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorDim)
	highlightStyle = lipgloss.NewStyle().Foreground(colorLink)

	// Status bar: sync failures and destructive prompts in red.
	errorStyle = lipgloss.NewStyle().Foreground(colorFailed)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = mutedStyle.Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	rowStyle         = lipgloss.NewStyle().Foreground(colorText)
)
