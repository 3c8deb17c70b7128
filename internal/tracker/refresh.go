package tracker

import (
	"context"
	"fmt"

	"github.com/sadopc/shiftr/internal/client"
	"github.com/sadopc/shiftr/internal/store"
)

// RefreshReport describes what a refresh did with the remote rows.
type RefreshReport struct {
	Rows    int
	History int
	Active  string
	// Discarded lists ids of extra open rows that lost the active slot.
	Discarded []string
	// Skipped counts rows that could not be decoded.
	Skipped int
}

// Refresh replaces local state with the remote listing. Rows without an
// end time are active candidates; when there are several, the most recent
// start wins and the others are dropped. On any remote error local state
// is left untouched. The listing waits for pending syncs so it sees them.
func (t *Tracker) Refresh(ctx context.Context) (RefreshReport, error) {
	var rows []client.Row
	done := t.enqueue(ctx, client.ActionList, "", func(ctx context.Context, r Remote) error {
		var err error
		rows, err = r.List(ctx)
		return err
	})
	var res Result
	select {
	case res = <-done:
	case <-ctx.Done():
		return RefreshReport{}, fmt.Errorf("refresh: %w", ctx.Err())
	}
	if res.Err != nil {
		return RefreshReport{}, fmt.Errorf("refresh: %w", res.Err)
	}

	rep := RefreshReport{Rows: len(rows)}
	next := store.State{History: []store.Shift{}}
	var candidates []store.Shift
	for _, r := range rows {
		sh, err := r.Shift()
		if err != nil {
			rep.Skipped++
			t.logger.Warn("skip remote row", "error", err)
			continue
		}
		if sh.EndTime == nil {
			candidates = append(candidates, sh)
			continue
		}
		next.Upsert(sh)
	}
	next.SortHistory()

	if len(candidates) > 0 {
		winner := 0
		for i, c := range candidates {
			if c.StartTime.After(candidates[winner].StartTime) {
				winner = i
			}
		}
		a := candidates[winner]
		next.Active = &a
		rep.Active = a.ID
		for i, c := range candidates {
			if i != winner {
				rep.Discarded = append(rep.Discarded, c.ID)
			}
		}
		if len(rep.Discarded) > 0 {
			t.logger.Warn("remote has several open shifts", "kept", a.ID, "discarded", rep.Discarded)
		}
	}
	rep.History = len(next.History)

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.commit(func(st *store.State) error {
		*st = next
		return nil
	}); err != nil {
		return RefreshReport{}, err
	}
	t.logger.Info("refreshed from remote", "rows", rep.Rows, "history", rep.History, "active", rep.Active)
	return rep, nil
}
