package tui

import (
	"time"

	"github.com/sadopc/shiftr/internal/store"
)

// timerModel derives the live clock from the active shift. Every reading
// is recomputed from the shift's timestamps at the last tick.
type timerModel struct {
	shift *store.Shift
	now   time.Time
}

func newTimerModel(active *store.Shift, now time.Time) timerModel {
	t := timerModel{now: now}
	t.set(active)
	return t
}

func (t *timerModel) set(active *store.Shift) {
	if active == nil {
		t.shift = nil
		return
	}
	sh := *active
	t.shift = &sh
}

func (t *timerModel) tick(now time.Time) {
	t.now = now
}

func (t timerModel) running() bool {
	return t.shift != nil && t.shift.Active()
}

func (t timerModel) onBreak() bool {
	return t.shift != nil && t.shift.OnBreak()
}

// worked is the net time so far; it stands still while on break.
func (t timerModel) worked() time.Duration {
	if t.shift == nil {
		return 0
	}
	return t.shift.Worked(t.now)
}

func (t timerModel) paused() time.Duration {
	if t.shift == nil {
		return 0
	}
	return t.shift.Paused(t.now)
}

// currentBreak is the length of the break in progress.
func (t timerModel) currentBreak() time.Duration {
	if !t.onBreak() {
		return 0
	}
	d := t.now.Sub(*t.shift.BreakStartTime)
	if d < 0 {
		return 0
	}
	return d
}
