package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/shiftr/internal/store"
	"github.com/sadopc/shiftr/internal/tracker"
)

type historyModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	filter  store.Filter
	all     []store.Shift
	shown   []store.Shift
	summary store.Summary
	cursor  int

	confirmDelete bool

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formEnabled *bool
	formFrom    *string
	formTo      *string
}

func newHistoryModel(tr *tracker.Tracker) historyModel {
	enabled, from, to := false, "", ""
	h := historyModel{
		tracker:     tr,
		filter:      store.TodayFilter(tr.Now()),
		formEnabled: &enabled,
		formFrom:    &from,
		formTo:      &to,
	}
	h.reload()
	return h
}

func (h *historyModel) setSize(w, hgt int) {
	h.width = w
	h.height = hgt
}

// selection is the filtered history, newest first.
func (h historyModel) selection() []store.Shift {
	return h.shown
}

func (h *historyModel) reload() {
	st := h.tracker.State()
	h.all = st.History
	h.shown = h.filter.Apply(h.all)
	h.summary = store.Summarize(h.shown, h.tracker.Now())
	if h.cursor >= len(h.shown) {
		h.cursor = max(0, len(h.shown)-1)
	}
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	if h.formActive && h.form != nil {
		return h.updateForm(msg)
	}

	switch msg := msg.(type) {
	case shiftChangedMsg:
		h.reload()
		return h, nil

	case tea.KeyMsg:
		if h.confirmDelete {
			h.confirmDelete = false
			if key.Matches(msg, keys.Confirm) && h.cursor < len(h.shown) {
				id := h.shown[h.cursor].ID
				ch, err := h.tracker.Delete(id)
				if err != nil {
					return h, errorStatus(err)
				}
				return h, changed(h.shown[h.cursor], "Shift deleted", ch)
			}
			return h, nil
		}

		switch {
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(h.shown)-1 {
				h.cursor++
			}
		case key.Matches(msg, keys.Delete):
			if len(h.shown) > 0 {
				h.confirmDelete = true
			}
		case key.Matches(msg, keys.Filter):
			return h.showFilterForm()
		}
	}
	return h, nil
}

func (h historyModel) showFilterForm() (historyModel, tea.Cmd) {
	*h.formEnabled = h.filter.Enabled
	*h.formFrom = store.FormatDate(h.filter.From)
	*h.formTo = store.FormatDate(h.filter.To)

	h.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Filter by date").
				Affirmative("On").Negative("Off").
				Value(h.formEnabled),
			huh.NewInput().Title("From (YYYY-MM-DD)").Value(h.formFrom).Validate(validDate),
			huh.NewInput().Title("To (YYYY-MM-DD)").Value(h.formTo).Validate(validDate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	h.formActive = true
	return h, h.form.Init()
}

// validDate accepts a blank field, which leaves the filter incomplete.
func validDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := store.ParseDate(s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func (h historyModel) updateForm(msg tea.Msg) (historyModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			h.formActive = false
			h.form = nil
			return h, nil
		}
	}

	form, cmd := h.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.form = f
	}

	if h.form.State == huh.StateCompleted {
		h.formActive = false
		h.filter = filterFromForm(*h.formEnabled, *h.formFrom, *h.formTo)
		h.cursor = 0
		h.reload()
		return h, nil
	}

	return h, cmd
}

func filterFromForm(enabled bool, from, to string) store.Filter {
	f := store.Filter{Enabled: enabled}
	if t, err := store.ParseDate(from); err == nil {
		f.From = t
	}
	if t, err := store.ParseDate(to); err == nil {
		f.To = t
	}
	return f
}

func (h historyModel) view() string {
	w := h.width - 4

	if h.formActive && h.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Filter History"), "", h.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("History") + "  " + mutedStyle.Render(h.filter.Label())
	totals := highlightStyle.Render(fmt.Sprintf("  %d shift(s)  ·  net %s  ·  pause %s  ·  distance %d",
		h.summary.Count,
		store.FormatHHMM(h.summary.Worked),
		store.FormatHHMM(h.summary.Paused),
		h.summary.Distance,
	))

	if len(h.shown) == 0 {
		msg := "No shifts yet."
		if h.filter.Complete() {
			msg = "No shifts in this range. Press f to change the filter."
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, totals, "", mutedStyle.Render(msg),
		))
	}

	rows := []string{title, totals, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-16s %-16s %-24s %6s %6s %5s",
		"Start", "End", "Title", "Pause", "Net", "Dist")))

	// Keep the cursor on screen.
	visible := max(h.height-12, 3)
	first := 0
	if h.cursor >= visible {
		first = h.cursor - visible + 1
	}
	last := min(len(h.shown), first+visible)

	for i := first; i < last; i++ {
		sh := h.shown[i]
		at := sh.EffectiveEnd(h.tracker.Now())
		cursor := "  "
		style := rowStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedRowStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-16s %-16s %-24s %6s %6s %5d",
			cursor,
			store.FormatStamp(&sh.StartTime),
			store.FormatStamp(sh.EndTime),
			truncate(sh.DisplayTitle(), 24),
			store.FormatHHMM(sh.Paused(at)),
			store.FormatHHMM(sh.Worked(at)),
			sh.Distance,
		)))
	}

	rows = append(rows, "")
	if h.confirmDelete {
		rows = append(rows, errorStyle.Render(fmt.Sprintf("  Delete %q? y: yes  any other key: no", h.shown[h.cursor].DisplayTitle())))
	} else {
		rows = append(rows, mutedStyle.Render("  f: filter  d: delete  e: export selection  r: refresh"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
