package store

import "time"

// Shift is a tracked span of work, possibly containing breaks.
type Shift struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        *time.Time `json:"endTime,omitempty"`
	PauseMinutes   int        `json:"pauseMinutes"`
	BreakStartTime *time.Time `json:"breakStartTime,omitempty"`
	Distance       int        `json:"distance"`

	// WorkMinutes caches Worked(EndTime) in whole minutes. It is written once,
	// by Stop, and is never read back as a source of truth.
	WorkMinutes int `json:"workMinutes"`
}

// State is everything persisted about shifts: the single in-progress shift
// and the completed ones.
type State struct {
	Active  *Shift  `json:"active"`
	History []Shift `json:"history"`
}

type Setting struct {
	Key   string
	Value string
}

// Summary aggregates a slice of shifts.
type Summary struct {
	Count    int
	Worked   time.Duration
	Paused   time.Duration
	Distance int
}
