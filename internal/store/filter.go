package store

import "time"

const dateLayout = "2006-01-02"

// Filter selects history by the calendar day of StartTime. From and To are
// inclusive days; a zero value means the bound is unset.
type Filter struct {
	Enabled bool
	From    time.Time
	To      time.Time
}

// TodayFilter returns a disabled filter preset to today..today.
func TodayFilter(now time.Time) Filter {
	d := startOfDay(now.Local())
	return Filter{From: d, To: d}
}

// ParseDate parses YYYY-MM-DD as a local calendar day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.Local)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// Complete reports whether the filter restricts anything.
func (f Filter) Complete() bool {
	return f.Enabled && !f.From.IsZero() && !f.To.IsZero()
}

// Bounds returns From at 00:00:00 and To at 23:59:59.
func (f Filter) Bounds() (time.Time, time.Time) {
	from := startOfDay(f.From)
	y, m, d := f.To.Date()
	to := time.Date(y, m, d, 23, 59, 59, 0, f.To.Location())
	return from, to
}

// Apply returns shifts unchanged when the filter is incomplete, otherwise
// the subsequence starting within Bounds, in the same order.
func (f Filter) Apply(shifts []Shift) []Shift {
	if !f.Complete() {
		return shifts
	}
	from, to := f.Bounds()
	var out []Shift
	for _, sh := range shifts {
		if sh.StartTime.Before(from) || sh.StartTime.After(to) {
			continue
		}
		out = append(out, sh)
	}
	return out
}

// Label describes the selection for display.
func (f Filter) Label() string {
	if !f.Complete() {
		return "History: all"
	}
	return "Range: " + FormatDate(f.From) + " → " + FormatDate(f.To)
}

// Summarize totals shifts, evaluating each at its own end time, or at now
// while still active.
func Summarize(shifts []Shift, now time.Time) Summary {
	var sum Summary
	for _, sh := range shifts {
		at := sh.EffectiveEnd(now)
		sum.Count++
		sum.Worked += sh.Worked(at)
		sum.Paused += sh.Paused(at)
		sum.Distance += max(sh.Distance, 0)
	}
	return sum
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
