package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/shiftr/internal/store"
	"github.com/sadopc/shiftr/internal/tracker"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewHistory
	viewReports
	viewSettings
)

var viewNames = []string{"Dashboard", "History", "Reports", "Settings"}

// --- Messages ---

// shiftChangedMsg is sent after a local commit; views reload from the
// tracker when they see it.
type shiftChangedMsg struct {
	shift store.Shift
	verb  string
}

type syncResultMsg struct {
	result tracker.Result
}

type refreshDoneMsg struct {
	report tracker.RefreshReport
	err    error
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Commands ---

// waitSync turns a background sync channel into a message.
func waitSync(ch <-chan tracker.Result) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return syncResultMsg{result: r}
	}
}

func changed(sh store.Shift, verb string, ch <-chan tracker.Result) tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return shiftChangedMsg{shift: sh, verb: verb} },
		waitSync(ch),
	)
}

func errorStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: describeError(err), isError: true}
	}
}

func describeError(err error) string {
	switch {
	case errors.Is(err, tracker.ErrShiftActive):
		return "A shift is already running. Stop it first."
	case errors.Is(err, tracker.ErrNoActiveShift):
		return "No shift running. Press s to start one."
	}
	return fmt.Sprintf("Error: %v", err)
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatHours(d time.Duration) string {
	return fmt.Sprintf("%.1fh", d.Hours())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
