package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Load reads the persisted state. Missing or corrupt data yields an empty
// state; the failure is logged and never returned.
func (s *Store) Load() State {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, stateKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}
	}
	if err != nil {
		s.logger.Warn("read local state", "error", err)
		return State{}
	}

	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.logger.Warn("discard corrupt local state", "error", err)
		return State{}
	}
	if st.Active != nil && st.Active.EndTime != nil {
		// A stopped record can never sit in the active slot.
		st.Upsert(*st.Active)
		st.Active = nil
	}
	return st
}

// Persist writes the whole state blob.
func (s *Store) Persist(st State) error {
	if st.History == nil {
		st.History = []Shift{}
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal local state: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		stateKey, string(data), now,
	)
	if err != nil {
		return fmt.Errorf("persist local state: %w", err)
	}
	return nil
}

// Upsert replaces the history entry with the same ID, or appends sh.
// The active slot is not touched.
func (st *State) Upsert(sh Shift) {
	for i := range st.History {
		if st.History[i].ID == sh.ID {
			st.History[i] = sh
			return
		}
	}
	st.History = append(st.History, sh)
}

// Remove deletes the history entry with the given ID.
func (st *State) Remove(id string) bool {
	for i := range st.History {
		if st.History[i].ID == id {
			st.History = append(st.History[:i], st.History[i+1:]...)
			return true
		}
	}
	return false
}

func (st State) Find(id string) (Shift, bool) {
	if st.Active != nil && st.Active.ID == id {
		return *st.Active, true
	}
	for _, sh := range st.History {
		if sh.ID == id {
			return sh, true
		}
	}
	return Shift{}, false
}

// SortHistory orders history newest start first.
func (st *State) SortHistory() {
	sort.SliceStable(st.History, func(i, j int) bool {
		return st.History[i].StartTime.After(st.History[j].StartTime)
	})
}

// Clone returns a deep copy so callers can read it without sharing memory
// with the owner.
func (st State) Clone() State {
	out := State{History: make([]Shift, len(st.History))}
	for i, sh := range st.History {
		out.History[i] = sh.clone()
	}
	if st.Active != nil {
		a := st.Active.clone()
		out.Active = &a
	}
	return out
}

func (s Shift) clone() Shift {
	c := s
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	if s.BreakStartTime != nil {
		t := *s.BreakStartTime
		c.BreakStartTime = &t
	}
	return c
}
