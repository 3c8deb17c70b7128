package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/shiftr/internal/store"
	"github.com/sadopc/shiftr/internal/tracker"
)

type editField int

const (
	editNone editField = iota
	editStartTitle
	editStartDistance
	editTitle
	editDistance
)

type dashboardModel struct {
	tracker *tracker.Tracker
	timer   timerModel
	width   int
	height  int

	// done totals today's finished shifts; the running one is added at
	// the timer's clock by today.
	done        store.Summary
	activeToday bool
	recent      []store.Shift

	// Inline prompt state. Starting a shift asks for the title and then
	// the distance; editing asks for a single field.
	editing    editField
	input      textinput.Model
	startTitle string
}

func newDashboardModel(tr *tracker.Tracker) dashboardModel {
	ti := textinput.New()
	ti.CharLimit = 120
	d := dashboardModel{
		tracker: tr,
		input:   ti,
	}
	d.reload()
	return d
}

func (d dashboardModel) Init() tea.Cmd {
	return nil
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.input.Width = max(w-20, 10)
}

func (d dashboardModel) isRunning() bool        { return d.timer.running() }
func (d dashboardModel) elapsed() time.Duration { return d.timer.worked() }
func (d dashboardModel) isEditing() bool        { return d.editing != editNone }

// reload pulls the current state from the tracker.
func (d *dashboardModel) reload() {
	st := d.tracker.State()
	now := d.tracker.Now()
	d.timer = newTimerModel(st.Active, now)

	today := store.TodayFilter(now)
	today.Enabled = true
	d.done = store.Summarize(today.Apply(st.History), now)
	d.activeToday = st.Active != nil && len(today.Apply([]store.Shift{*st.Active})) > 0

	n := min(len(st.History), 5)
	d.recent = st.History[:n]
}

// today is the running total for the summary panel as of the last tick.
func (d dashboardModel) today() store.Summary {
	sum := d.done
	if d.activeToday && d.timer.shift != nil {
		active := store.Summarize([]store.Shift{*d.timer.shift}, d.timer.now)
		sum.Count += active.Count
		sum.Worked += active.Worked
		sum.Paused += active.Paused
		sum.Distance += active.Distance
	}
	return sum
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case shiftChangedMsg:
		d.reload()
		return d, nil

	case tickMsg:
		d.timer.tick(time.Time(msg))
		return d, nil

	case tea.KeyMsg:
		if d.editing != editNone {
			return d.updateInput(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, errorStatus(tracker.ErrShiftActive)
			}
			return d.prompt(editStartTitle, "Title: ", "", store.DefaultTitle(d.tracker.Now()))

		case key.Matches(msg, keys.Break):
			sh, ch, err := d.tracker.ToggleBreak()
			if err != nil {
				return d, errorStatus(err)
			}
			verb := "Break ended"
			if sh.OnBreak() {
				verb = "Break started"
			}
			return d, changed(sh, verb, ch)

		case key.Matches(msg, keys.Stop):
			sh, ch, err := d.tracker.Stop()
			if err != nil {
				return d, errorStatus(err)
			}
			return d, changed(sh, "Shift stopped", ch)

		case key.Matches(msg, keys.EditTitle):
			if !d.timer.running() {
				return d, errorStatus(tracker.ErrNoActiveShift)
			}
			return d.prompt(editTitle, "Title: ", d.timer.shift.Title, "")

		case key.Matches(msg, keys.EditDistance):
			if !d.timer.running() {
				return d, errorStatus(tracker.ErrNoActiveShift)
			}
			return d.prompt(editDistance, "Distance: ", fmt.Sprint(d.timer.shift.Distance), "0")
		}
	}
	return d, nil
}

func (d dashboardModel) prompt(field editField, label, value, placeholder string) (dashboardModel, tea.Cmd) {
	d.editing = field
	d.input.Prompt = label
	d.input.Placeholder = placeholder
	d.input.SetValue(value)
	d.input.CursorEnd()
	return d, d.input.Focus()
}

func (d dashboardModel) updateInput(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		d.editing = editNone
		d.input.Blur()
		return d, nil

	case key.Matches(msg, keys.Enter):
		value := d.input.Value()
		field := d.editing
		d.editing = editNone
		d.input.Blur()

		switch field {
		case editStartTitle:
			d.startTitle = value
			return d.prompt(editStartDistance, "Distance: ", "", "0")
		case editStartDistance:
			sh, ch, err := d.tracker.Start(d.startTitle, tracker.ParseDistance(value))
			d.startTitle = ""
			if err != nil {
				return d, errorStatus(err)
			}
			return d, changed(sh, "Shift started", ch)
		case editTitle:
			sh, ch, err := d.tracker.EditTitle(value)
			if err != nil {
				return d, errorStatus(err)
			}
			return d, changed(sh, "Title saved", ch)
		case editDistance:
			sh, ch, err := d.tracker.EditDistance(tracker.ParseDistance(value))
			if err != nil {
				return d, errorStatus(err)
			}
			return d, changed(sh, "Distance saved", ch)
		}
		return d, nil
	}

	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderTimerPanel(contentWidth),
		d.renderSummaryPanel(contentWidth),
		d.renderRecentPanel(contentWidth),
	)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	var rows []string

	if d.timer.running() {
		sh := d.timer.shift
		timeStr := formatDuration(d.timer.worked())

		p := d.phase()
		timeDisplay := clockStyle(p).Width(w - 6).Render(timeStr)
		indicator := badgeStyle(p).Render("●  WORKING")
		if p == phaseBreak {
			indicator = badgeStyle(p).Render("⏸  ON BREAK " + formatDuration(d.timer.currentBreak()))
		}

		details := mutedStyle.Render(fmt.Sprintf("since %s  ·  pause %s  ·  distance %d",
			store.FormatStamp(&sh.StartTime),
			store.FormatHHMM(d.timer.paused()),
			sh.Distance,
		))
		rows = append(rows, timeDisplay, indicator, highlightStyle.Render(sh.Title), details)
	} else {
		rows = append(rows,
			clockStyle(phaseOff).Width(w-6).Render("00:00:00"),
			badgeStyle(phaseOff).Render("■  OFF SHIFT"),
			mutedStyle.Render("Press s to start a shift"),
		)
	}

	if d.editing != editNone {
		rows = append(rows, "", d.input.View(), mutedStyle.Render("enter: save  esc: cancel"))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, rows...)
	if d.timer.running() {
		return activePanelStyle.Width(w).Render(content)
	}
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	today := d.today()
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(store.FormatHHMM(today.Worked))
	header := fmt.Sprintf("%s  %s", title, total)

	if today.Count == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("No shifts today"),
		))
	}

	line := fmt.Sprintf("  %d shift(s)  ·  pause %s  ·  distance %d",
		today.Count, store.FormatHHMM(today.Paused), today.Distance)
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, line))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Shifts")
	if len(d.recent) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No shifts yet"),
		))
	}

	rows := []string{title}
	for _, sh := range d.recent {
		row := fmt.Sprintf("  ✓ %s  %-24s %6s  %4d",
			store.FormatStamp(&sh.StartTime),
			truncate(sh.DisplayTitle(), 24),
			store.FormatHHMM(sh.Worked(sh.EffectiveEnd(d.timer.now))),
			sh.Distance,
		)
		rows = append(rows, row)
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
