package store

import (
	"fmt"
	"strings"
	"time"
)

// Paused returns the accumulated break time of s, including the break in
// progress up to now. It is never negative.
func (s Shift) Paused(now time.Time) time.Duration {
	p := time.Duration(max(s.PauseMinutes, 0)) * time.Minute
	if s.BreakStartTime != nil {
		if d := now.Sub(*s.BreakStartTime); d > 0 {
			p += d
		}
	}
	return p
}

// Worked returns the net work time of s: elapsed time from start to the end
// (or now, while active) minus Paused. Both terms clamp at zero.
func (s Shift) Worked(now time.Time) time.Duration {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	total := end.Sub(s.StartTime)
	if total < 0 {
		total = 0
	}
	w := total - s.Paused(now)
	if w < 0 {
		return 0
	}
	return w
}

// EffectiveEnd is EndTime for stopped shifts and now for active ones.
func (s Shift) EffectiveEnd(now time.Time) time.Time {
	if s.EndTime != nil {
		return *s.EndTime
	}
	return now
}

func (s Shift) Active() bool  { return s.EndTime == nil }
func (s Shift) OnBreak() bool { return s.EndTime == nil && s.BreakStartTime != nil }

// ToggleBreak starts a break on a running shift, or closes the current one
// and folds its whole minutes into PauseMinutes. Stopped shifts are left
// untouched and false is returned.
func (s *Shift) ToggleBreak(now time.Time) bool {
	if s.EndTime != nil {
		return false
	}
	if s.BreakStartTime == nil {
		t := now
		s.BreakStartTime = &t
		return true
	}
	s.closeBreak(now)
	return true
}

func (s *Shift) closeBreak(now time.Time) {
	if s.BreakStartTime == nil {
		return
	}
	s.PauseMinutes = max(s.PauseMinutes, 0) + FloorMinutes(now.Sub(*s.BreakStartTime))
	s.BreakStartTime = nil
}

// Stop closes any break in progress, then sets EndTime and the cached
// WorkMinutes, all at the same instant. Stopping twice is a no-op.
func (s *Shift) Stop(now time.Time) bool {
	if s.EndTime != nil {
		return false
	}
	s.closeBreak(now)
	end := now
	s.EndTime = &end
	s.WorkMinutes = FloorMinutes(s.Worked(now))
	return true
}

// FloorMinutes converts d to whole minutes, clamping negatives to zero.
func FloorMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// FormatHHMM renders d as H:MM with floored minutes; hours are not padded.
func FormatHHMM(d time.Duration) string {
	m := FloorMinutes(d)
	return fmt.Sprintf("%d:%02d", m/60, m%60)
}

// FormatStamp renders t as YYYY/MM/DD HH:MM in local time; nil renders empty.
func FormatStamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Local().Format("2006/01/02 15:04")
}

// DefaultTitle is used when a shift is started or renamed with a blank title.
func DefaultTitle(start time.Time) string {
	return "Shift " + start.Local().Format("2006/01/02")
}

// DisplayTitle is the title for lists; records from elsewhere may have none.
func (s Shift) DisplayTitle() string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	return "Untitled"
}
