// Package tracker owns the shift lifecycle. Every mutating operation
// commits locally first (mutate, then persist) and only afterwards hands
// the change to the remote store in the background. The returned channel
// reports that background outcome; a failure there never undoes the local
// commit.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/shiftr/internal/client"
	"github.com/sadopc/shiftr/internal/store"
)

// syncTimeout bounds one queued remote call so a stalled remote cannot
// hold up the calls behind it.
const syncTimeout = 30 * time.Second

var (
	ErrShiftActive   = errors.New("a shift is already in progress")
	ErrNoActiveShift = errors.New("no shift in progress")
	ErrShiftNotFound = errors.New("shift not found")
)

// Remote is the subset of the sync client the tracker needs.
type Remote interface {
	List(ctx context.Context) ([]client.Row, error)
	Upsert(ctx context.Context, r client.Row) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// RemoteFunc builds a Remote for one call, so settings edits take effect
// without restarting.
type RemoteFunc func() Remote

// Result is the outcome of one background sync call.
type Result struct {
	Action client.Action
	ID     string
	Err    error
}

type Tracker struct {
	mu     sync.Mutex
	store  *store.Store
	state  store.State
	remote RemoteFunc
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	// Remote calls run one at a time, in commit order.
	qmu      sync.Mutex
	queue    []job
	draining bool
}

type job struct {
	ctx    context.Context
	action client.Action
	id     string
	remote Remote
	call   func(context.Context, Remote) error
	done   chan Result
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithIDGenerator(f func() string) Option {
	return func(t *Tracker) { t.newID = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a tracker over s and loads its persisted state.
func New(s *store.Store, remote RemoteFunc, opts ...Option) *Tracker {
	t := &Tracker{
		store:  s,
		remote: remote,
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(t)
	}
	if t.remote == nil {
		t.remote = FromSettings(s, t.logger)
	}
	t.Load()
	return t
}

// FromSettings builds clients from the endpoint and token stored in s.
func FromSettings(s *store.Store, logger *slog.Logger) RemoteFunc {
	return func() Remote {
		return client.New(s.Endpoint(), s.Token(), client.WithLogger(logger))
	}
}

// Load replaces in-memory state with what is persisted.
func (t *Tracker) Load() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = t.store.Load()
	t.state.SortHistory()
}

// State returns a copy of the current state.
func (t *Tracker) State() store.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// Now is the tracker's clock.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// commit applies fn to a copy of the state, persists the copy and only
// then makes it current. On any error the current state is unchanged.
func (t *Tracker) commit(fn func(st *store.State) error) (store.State, error) {
	next := t.state.Clone()
	if err := fn(&next); err != nil {
		return store.State{}, err
	}
	if err := t.store.Persist(next); err != nil {
		return store.State{}, err
	}
	t.state = next
	return next.Clone(), nil
}

// Start opens a new active shift. A blank title gets the default one.
func (t *Tracker) Start(title string, distance int) (store.Shift, <-chan Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	st, err := t.commit(func(st *store.State) error {
		if st.Active != nil {
			return ErrShiftActive
		}
		title = strings.TrimSpace(title)
		if title == "" {
			title = store.DefaultTitle(now)
		}
		st.Active = &store.Shift{
			ID:        t.newID(),
			Title:     title,
			StartTime: now,
			Distance:  max(distance, 0),
		}
		return nil
	})
	if err != nil {
		return store.Shift{}, nil, err
	}
	t.logger.Info("shift started", "id", st.Active.ID, "title", st.Active.Title)
	return *st.Active, t.upsertAsync(*st.Active, now), nil
}

// ToggleBreak starts or ends a break on the active shift.
func (t *Tracker) ToggleBreak() (store.Shift, <-chan Result, error) {
	return t.mutateActive(func(sh *store.Shift, now time.Time) {
		sh.ToggleBreak(now)
	})
}

// EditTitle renames the active shift; a blank title restores the default.
func (t *Tracker) EditTitle(title string) (store.Shift, <-chan Result, error) {
	return t.mutateActive(func(sh *store.Shift, _ time.Time) {
		title = strings.TrimSpace(title)
		if title == "" {
			title = store.DefaultTitle(sh.StartTime)
		}
		sh.Title = title
	})
}

// EditDistance sets the distance of the active shift, clamped at zero.
func (t *Tracker) EditDistance(distance int) (store.Shift, <-chan Result, error) {
	return t.mutateActive(func(sh *store.Shift, _ time.Time) {
		sh.Distance = max(distance, 0)
	})
}

func (t *Tracker) mutateActive(fn func(sh *store.Shift, now time.Time)) (store.Shift, <-chan Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	st, err := t.commit(func(st *store.State) error {
		if st.Active == nil {
			return ErrNoActiveShift
		}
		fn(st.Active, now)
		return nil
	})
	if err != nil {
		return store.Shift{}, nil, err
	}
	return *st.Active, t.upsertAsync(*st.Active, now), nil
}

// Stop closes any open break, ends the active shift and moves it to
// history, as one transition.
func (t *Tracker) Stop() (store.Shift, <-chan Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	var stopped store.Shift
	_, err := t.commit(func(st *store.State) error {
		if st.Active == nil {
			return ErrNoActiveShift
		}
		sh := *st.Active
		sh.Stop(now)
		st.Upsert(sh)
		st.SortHistory()
		st.Active = nil
		stopped = sh
		return nil
	})
	if err != nil {
		return store.Shift{}, nil, err
	}
	t.logger.Info("shift stopped", "id", stopped.ID, "work_minutes", stopped.WorkMinutes, "pause_minutes", stopped.PauseMinutes)
	return stopped, t.upsertAsync(stopped, now), nil
}

// Delete removes a completed shift locally, then asks the remote to drop
// it. The remote outcome is logged; callers normally ignore the channel.
func (t *Tracker) Delete(id string) (<-chan Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.commit(func(st *store.State) error {
		if !st.Remove(id) {
			return ErrShiftNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.logger.Info("shift deleted", "id", id)
	return t.async(client.ActionDelete, id, func(ctx context.Context, r Remote) error {
		return r.Delete(ctx, id)
	}), nil
}

// Ping checks the configured endpoint.
func (t *Tracker) Ping(ctx context.Context) error {
	return t.remote().Ping(ctx)
}

func (t *Tracker) upsertAsync(sh store.Shift, now time.Time) <-chan Result {
	row := client.RowFromShift(sh, now)
	return t.async(client.ActionUpsert, sh.ID, func(ctx context.Context, r Remote) error {
		return r.Upsert(ctx, row)
	})
}

// async queues call behind every earlier one. The returned channel
// receives exactly one Result and is then closed.
func (t *Tracker) async(action client.Action, id string, call func(context.Context, Remote) error) <-chan Result {
	return t.enqueue(context.Background(), action, id, call)
}

func (t *Tracker) enqueue(ctx context.Context, action client.Action, id string, call func(context.Context, Remote) error) <-chan Result {
	j := job{
		ctx:    ctx,
		action: action,
		id:     id,
		remote: t.remote(),
		call:   call,
		done:   make(chan Result, 1),
	}
	t.qmu.Lock()
	t.queue = append(t.queue, j)
	start := !t.draining
	t.draining = true
	t.qmu.Unlock()
	if start {
		go t.drain()
	}
	return j.done
}

// drain runs queued jobs until the queue is empty. At most one drain
// goroutine exists at a time.
func (t *Tracker) drain() {
	for {
		t.qmu.Lock()
		if len(t.queue) == 0 {
			t.draining = false
			t.qmu.Unlock()
			return
		}
		j := t.queue[0]
		t.queue[0] = job{}
		t.queue = t.queue[1:]
		t.qmu.Unlock()

		ctx, cancel := context.WithTimeout(j.ctx, syncTimeout)
		err := j.call(ctx, j.remote)
		cancel()
		if err != nil {
			t.logger.Warn("sync failed", "action", j.action, "id", j.id, "error", err)
		} else {
			t.logger.Debug("synced", "action", j.action, "id", j.id)
		}
		j.done <- Result{Action: j.action, ID: j.id, Err: err}
		close(j.done)
	}
}

// ParseDistance reads a user-entered distance. Fractions are truncated;
// anything unparseable or negative is 0.
func ParseDistance(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return max(n, 0)
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return int(f)
}

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s %s: %v", r.Action, r.ID, r.Err)
	}
	return fmt.Sprintf("%s %s: ok", r.Action, r.ID)
}
