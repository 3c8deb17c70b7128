package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/shiftr/internal/store"
	"github.com/sadopc/shiftr/internal/tracker"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

// daySummary is one day of the chart.
type daySummary struct {
	day time.Time
	store.Summary
}

type reportsModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	mode   reportMode
	days   []daySummary
	offset int // weeks or 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newReportsModel(tr *tracker.Tracker) reportsModel {
	return reportsModel{
		tracker: tr,
		chart:   barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r reportsModel) dateRange() (time.Time, time.Time) {
	now := r.tracker.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch r.mode {
	case reportWeekly:
		// Start of current week (Monday)
		weekday := today.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		startOfWeek := today.AddDate(0, 0, -int(weekday-time.Monday))
		startOfWeek = startOfWeek.AddDate(0, 0, -7*r.offset)
		return startOfWeek, startOfWeek.AddDate(0, 0, 7)
	default:
		// Daily: last 7 days
		end := today.AddDate(0, 0, 1-7*r.offset)
		start := end.AddDate(0, 0, -7)
		return start, end
	}
}

// reload buckets shifts by local start day over the current range. The
// running shift counts toward its day as of now.
func (r *reportsModel) reload() {
	st := r.tracker.State()
	now := r.tracker.Now()
	shifts := st.History
	if st.Active != nil {
		shifts = append([]store.Shift{*st.Active}, shifts...)
	}

	from, to := r.dateRange()
	r.days = nil
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		f := store.Filter{Enabled: true, From: d, To: d}
		r.days = append(r.days, daySummary{day: d, Summary: store.Summarize(f.Apply(shifts), now)})
	}
	r.buildChart()
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case shiftChangedMsg:
		r.reload()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			r.reload()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			r.reload()
		case key.Matches(msg, keys.Enter):
			if r.mode == reportDaily {
				r.mode = reportWeekly
			} else {
				r.mode = reportDaily
			}
			r.offset = 0
			r.reload()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, d := range r.days {
		style := lipgloss.NewStyle().Foreground(colorAccent)
		if d.Count == 0 {
			style = lipgloss.NewStyle().Foreground(colorBorder)
		}
		bars = append(bars, barchart.BarData{
			Label: d.day.Format("Mon 02"),
			Values: []barchart.BarValue{{
				Name:  "net",
				Value: d.Worked.Hours(),
				Style: style,
			}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) total() store.Summary {
	var sum store.Summary
	for _, d := range r.days {
		sum.Count += d.Count
		sum.Worked += d.Worked
		sum.Paused += d.Paused
		sum.Distance += d.Distance
	}
	return sum
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Last 7 days")
	weeklyTab := inactiveTabStyle.Render("Week")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Last 7 days")
	} else {
		weeklyTab = activeTabStyle.Render("Week")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s → %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate  enter: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderSummaryTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	sum := r.total()
	if sum.Count == 0 {
		return mutedStyle.Render("  No shifts in this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %6s %8s %8s %8s", "Date", "Shifts", "Net", "Pause", "Distance")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 46))))

	for _, d := range r.days {
		if d.Count == 0 {
			continue
		}
		rows = append(rows, fmt.Sprintf("  %-12s %6d %8s %8s %8d",
			store.FormatDate(d.day), d.Count,
			store.FormatHHMM(d.Worked), store.FormatHHMM(d.Paused), d.Distance,
		))
	}
	rows = append(rows, highlightStyle.Render(fmt.Sprintf("  %-12s %6d %8s %8s %8d",
		"Total", sum.Count, store.FormatHHMM(sum.Worked), store.FormatHHMM(sum.Paused), sum.Distance,
	)))
	rows = append(rows, mutedStyle.Render("  "+formatHours(sum.Worked)+" net in this period"))

	return strings.Join(rows, "\n")
}
