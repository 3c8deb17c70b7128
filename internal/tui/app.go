package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/shiftr/internal/client"
	"github.com/sadopc/shiftr/internal/export"
	"github.com/sadopc/shiftr/internal/store"
	"github.com/sadopc/shiftr/internal/tracker"
)

const refreshTimeout = 30 * time.Second

// App is the root Bubble Tea model.
type App struct {
	store   *store.Store
	tracker *tracker.Tracker
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	refreshing    bool

	dashboard dashboardModel
	history   historyModel
	reports   reportsModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool

	// exportDir is where reports are written; the home directory by default.
	exportDir string
}

func NewApp(s *store.Store, tr *tracker.Tracker) App {
	h := help.New()
	h.ShowAll = false

	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}

	return App{
		store:      s,
		tracker:    tr,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(tr),
		history:    newHistoryModel(tr),
		reports:    newReportsModel(tr),
		settings:   newSettingsModel(s, tr),
		help:       h,
		exportDir:  dir,
	}
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.dashboard.Init(), tickCmd()}
	if a.store.Endpoint() != "" {
		cmds = append(cmds, a.refreshCmd())
	}
	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.reports.reload()
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Refresh):
			if a.refreshing {
				return a, nil
			}
			a.refreshing = true
			a.status = "Refreshing…"
			a.statusErr = false
			return a, a.refreshCmd()
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewHistory
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			a.reports.reload()
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		// Ticks only redraw; the dashboard recomputes from timestamps.
		a.dashboard, _ = a.dashboard.update(msg)
		return a, tickCmd()

	case shiftChangedMsg:
		a.dashboard, _ = a.dashboard.update(msg)
		a.history, _ = a.history.update(msg)
		a.reports, _ = a.reports.update(msg)
		if msg.verb != "" {
			a.status = msg.verb
			a.statusErr = false
		}
		return a, nil

	case syncResultMsg:
		if msg.result.Err != nil {
			a.status = "Saved locally; sync failed: " + syncError(msg.result.Err)
			a.statusErr = true
		}
		return a, nil

	case refreshDoneMsg:
		a.refreshing = false
		if msg.err != nil {
			a.status = "Refresh failed: " + syncError(msg.err)
			a.statusErr = true
			return a, nil
		}
		a.status = refreshSummary(msg.report)
		a.statusErr = len(msg.report.Discarded) > 0
		return a, func() tea.Msg { return shiftChangedMsg{} }

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.isEditing()
	case viewHistory:
		return a.history.formActive || a.history.confirmDelete
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewReports:
		return func() tea.Msg { return shiftChangedMsg{} }
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

// refreshCmd replaces local state with the remote store's contents. With
// sync switched off it does nothing.
func (a App) refreshCmd() tea.Cmd {
	tr, s := a.tracker, a.store
	return func() tea.Msg {
		if s.Endpoint() == "" {
			return refreshDoneMsg{err: client.ErrInvalidEndpoint}
		}
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		report, err := tr.Refresh(ctx)
		return refreshDoneMsg{report: report, err: err}
	}
}

func refreshSummary(r tracker.RefreshReport) string {
	parts := []string{fmt.Sprintf("Refreshed: %d shift(s)", r.History)}
	if r.Active != "" {
		parts = append(parts, "1 running")
	}
	if r.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d unreadable row(s) skipped", r.Skipped))
	}
	if len(r.Discarded) > 0 {
		parts = append(parts, fmt.Sprintf("%d extra running shift(s) ignored", len(r.Discarded)))
	}
	return strings.Join(parts, ", ")
}

func syncError(err error) string {
	switch {
	case errors.Is(err, client.ErrInvalidEndpoint):
		return "no valid endpoint set (Settings)"
	case errors.Is(err, client.ErrMissingToken):
		return "no token set (Settings)"
	}
	return err.Error()
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewHistory:
		content = a.history.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("shiftr")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	timerInfo := ""
	switch p := a.dashboard.phase(); p {
	case phaseWorking:
		timerInfo = badgeStyle(p).Render(" ● " + formatDuration(a.dashboard.elapsed()))
	case phaseBreak:
		timerInfo = badgeStyle(p).Render(" ⏸ " + formatDuration(a.dashboard.elapsed()))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	rows := []string{
		titleStyle.Render("Export Format"),
		mutedStyle.Render(fmt.Sprintf("%s, %d shift(s)", a.history.filter.Label(), len(a.history.selection()))),
		"",
	}
	for i, f := range exportFormats {
		cursor := "  "
		style := rowStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedRowStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the history selection currently shown in the History view.
func (a App) doExport(format int) tea.Cmd {
	shifts := a.history.selection()
	prefix := a.store.ReportPrefix()
	dir := a.exportDir
	now := a.tracker.Now()

	return func() tea.Msg {
		if format == 0 {
			path := filepath.Join(dir, export.ReportFileName(prefix, now, "csv"))
			if err := export.ToCSV(shifts, path, now); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
			return exportDoneMsg{path: path}
		}
		path := filepath.Join(dir, export.ReportFileName(prefix, now, "json"))
		if err := export.ToJSON(shifts, path, now); err != nil {
			return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
