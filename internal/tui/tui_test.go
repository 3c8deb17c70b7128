package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/shiftr/internal/client"
	"github.com/sadopc/shiftr/internal/logging"
	"github.com/sadopc/shiftr/internal/store"
	"github.com/sadopc/shiftr/internal/tracker"
)

var errOffline = errors.New("offline")

// fakeRemote fails every call unless rows are set for List.
type fakeRemote struct {
	rows []client.Row
}

func (f *fakeRemote) List(context.Context) ([]client.Row, error) {
	if f.rows == nil {
		return nil, errOffline
	}
	return f.rows, nil
}
func (f *fakeRemote) Upsert(context.Context, client.Row) error { return errOffline }
func (f *fakeRemote) Delete(context.Context, string) error     { return errOffline }
func (f *fakeRemote) Ping(context.Context) error               { return errOffline }

type fixture struct {
	store   *store.Store
	tracker *tracker.Tracker
	remote  *fakeRemote
	now     time.Time
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	f := &fixture{
		store:  s,
		remote: &fakeRemote{},
		now:    time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local),
	}
	n := 0
	f.tracker = tracker.New(s,
		func() tracker.Remote { return f.remote },
		tracker.WithClock(func() time.Time { return f.now }),
		tracker.WithIDGenerator(func() string { n++; return "id-" + string(rune('0'+n)) }),
		tracker.WithLogger(logging.Discard()),
	)
	return f
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keySpace = tea.KeyMsg{Type: tea.KeySpace}
)

func typeText(d dashboardModel, s string) dashboardModel {
	for _, r := range s {
		d, _ = d.update(keyRunes(string(r)))
	}
	return d
}

// drain runs cmd and any batched commands it produces, collecting messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// ============================================================
// Timer model
// ============================================================

func TestTimerNoShift(t *testing.T) {
	tm := newTimerModel(nil, time.Now())
	if tm.running() || tm.onBreak() {
		t.Fatal("empty timer should be idle")
	}
	if tm.worked() != 0 || tm.paused() != 0 || tm.currentBreak() != 0 {
		t.Fatal("empty timer should read zero")
	}
}

func TestTimerReadsFromShift(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	sh := store.Shift{ID: "a", StartTime: start, PauseMinutes: 10}
	tm := newTimerModel(&sh, start.Add(time.Hour))

	if !tm.running() || tm.onBreak() {
		t.Fatal("timer should be running")
	}
	if tm.worked() != 50*time.Minute {
		t.Fatalf("worked = %v, want 50m", tm.worked())
	}

	tm.tick(start.Add(2 * time.Hour))
	if tm.worked() != 110*time.Minute {
		t.Fatalf("worked after tick = %v, want 1h50m", tm.worked())
	}
}

func TestTimerStandsStillOnBreak(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	breakAt := start.Add(time.Hour)
	sh := store.Shift{ID: "a", StartTime: start, BreakStartTime: &breakAt}
	tm := newTimerModel(&sh, breakAt.Add(5*time.Minute))

	if !tm.onBreak() {
		t.Fatal("timer should be on break")
	}
	before := tm.worked()
	tm.tick(breakAt.Add(20 * time.Minute))
	if tm.worked() != before {
		t.Fatalf("worked moved during break: %v -> %v", before, tm.worked())
	}
	if tm.currentBreak() != 20*time.Minute {
		t.Fatalf("current break = %v", tm.currentBreak())
	}
}

func TestTimerCopiesShift(t *testing.T) {
	sh := store.Shift{ID: "a", Title: "before", StartTime: time.Now()}
	tm := newTimerModel(&sh, time.Now())
	sh.Title = "after"
	if tm.shift.Title != "before" {
		t.Fatal("timer should hold its own copy of the shift")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Minute, "00:00:00"},
		{90 * time.Second, "00:01:30"},
		{7*time.Hour + 15*time.Minute, "07:15:00"},
		{26 * time.Hour, "26:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatHours(t *testing.T) {
	if got := formatHours(90 * time.Minute); got != "1.5h" {
		t.Fatalf("formatHours = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if truncate("short", 10) != "short" {
		t.Fatal("short strings pass through")
	}
	if got := truncate("Morning delivery run", 8); got != "Morning…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("äöüäöü", 4); got != "äöü…" {
		t.Fatalf("truncate should count runes, got %q", got)
	}
}

func TestDescribeError(t *testing.T) {
	if !strings.Contains(describeError(tracker.ErrShiftActive), "already running") {
		t.Fatal("active shift error not described")
	}
	if !strings.Contains(describeError(tracker.ErrNoActiveShift), "No shift running") {
		t.Fatal("no shift error not described")
	}
	if describeError(errOffline) != "Error: offline" {
		t.Fatal("generic errors are prefixed")
	}
}

func TestWaitSync(t *testing.T) {
	if waitSync(nil) != nil {
		t.Fatal("nil channel should give no command")
	}
	ch := make(chan tracker.Result, 1)
	ch <- tracker.Result{Action: client.ActionUpsert, ID: "a", Err: errOffline}
	close(ch)
	msg, ok := waitSync(ch)().(syncResultMsg)
	if !ok || msg.result.ID != "a" || msg.result.Err == nil {
		t.Fatalf("unexpected message %#v", msg)
	}
}

// ============================================================
// Dashboard
// ============================================================

func TestDashboardStartFlow(t *testing.T) {
	f := newFixture(t)
	d := newDashboardModel(f.tracker)
	d.setSize(100, 40)

	d, _ = d.update(keyRunes("s"))
	if d.editing != editStartTitle {
		t.Fatal("s should prompt for a title")
	}
	d = typeText(d, "Delivery")
	d, _ = d.update(keyEnter)
	if d.editing != editStartDistance {
		t.Fatal("enter should move on to the distance")
	}
	d = typeText(d, "12")
	d, cmd := d.update(keyEnter)
	if d.isEditing() {
		t.Fatal("prompt should close after starting")
	}

	st := f.tracker.State()
	if st.Active == nil || st.Active.Title != "Delivery" || st.Active.Distance != 12 {
		t.Fatalf("active = %+v", st.Active)
	}

	var sawChange, sawSync bool
	for _, msg := range drain(cmd) {
		switch m := msg.(type) {
		case shiftChangedMsg:
			sawChange = m.verb == "Shift started"
		case syncResultMsg:
			sawSync = m.result.Err != nil
		}
	}
	if !sawChange || !sawSync {
		t.Fatalf("expected change and failed sync messages (change=%v sync=%v)", sawChange, sawSync)
	}
}

func TestDashboardStartBlankTitle(t *testing.T) {
	f := newFixture(t)
	d := newDashboardModel(f.tracker)

	d, _ = d.update(keyRunes("s"))
	d, _ = d.update(keyEnter)
	d, _ = d.update(keyEnter)

	st := f.tracker.State()
	if st.Active == nil || st.Active.Title != store.DefaultTitle(f.now) {
		t.Fatalf("blank title should use default, got %+v", st.Active)
	}
}

func TestDashboardPromptCancel(t *testing.T) {
	f := newFixture(t)
	d := newDashboardModel(f.tracker)

	d, _ = d.update(keyRunes("s"))
	d, _ = d.update(keyEsc)
	if d.isEditing() {
		t.Fatal("esc should close the prompt")
	}
	if f.tracker.State().Active != nil {
		t.Fatal("cancelled start must not create a shift")
	}
}

func TestDashboardStartWhileRunning(t *testing.T) {
	f := newFixture(t)
	f.tracker.Start("one", 0)
	d := newDashboardModel(f.tracker)

	d, cmd := d.update(keyRunes("s"))
	if d.isEditing() {
		t.Fatal("no prompt while a shift runs")
	}
	msg, ok := cmd().(statusMsg)
	if !ok || !msg.isError {
		t.Fatalf("expected error status, got %#v", msg)
	}
}

func TestDashboardBreakAndStop(t *testing.T) {
	f := newFixture(t)
	f.tracker.Start("Delivery", 0)
	d := newDashboardModel(f.tracker)

	f.advance(time.Hour)
	d, _ = d.update(keySpace)
	if !f.tracker.State().Active.OnBreak() {
		t.Fatal("space should start a break")
	}

	f.advance(15 * time.Minute)
	d, _ = d.update(keySpace)
	if f.tracker.State().Active.OnBreak() {
		t.Fatal("space should end the break")
	}

	f.advance(45 * time.Minute)
	d, _ = d.update(keyRunes("x"))
	st := f.tracker.State()
	if st.Active != nil || len(st.History) != 1 {
		t.Fatal("x should stop the shift")
	}
	if st.History[0].PauseMinutes != 15 || st.History[0].WorkMinutes != 105 {
		t.Fatalf("stopped shift = %+v", st.History[0])
	}
}

func TestDashboardKeysWithoutShift(t *testing.T) {
	f := newFixture(t)
	d := newDashboardModel(f.tracker)

	for _, k := range []tea.KeyMsg{keySpace, keyRunes("x"), keyRunes("t"), keyRunes("m")} {
		_, cmd := d.update(k)
		if cmd == nil {
			t.Fatalf("%q should report an error", k.String())
		}
		if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
			t.Fatalf("%q: expected error status", k.String())
		}
	}
}

func TestDashboardEditTitleAndDistance(t *testing.T) {
	f := newFixture(t)
	f.tracker.Start("Old", 3)
	d := newDashboardModel(f.tracker)

	d, _ = d.update(keyRunes("t"))
	if d.input.Value() != "Old" {
		t.Fatalf("title prompt should be prefilled, got %q", d.input.Value())
	}
	d.input.SetValue("New")
	d, _ = d.update(keyEnter)

	d, _ = d.update(keyRunes("m"))
	d.input.SetValue("42.9")
	d, _ = d.update(keyEnter)

	a := f.tracker.State().Active
	if a.Title != "New" || a.Distance != 42 {
		t.Fatalf("active = %+v", a)
	}
}

func TestDashboardReloadOnChange(t *testing.T) {
	f := newFixture(t)
	d := newDashboardModel(f.tracker)
	if d.isRunning() {
		t.Fatal("nothing running yet")
	}

	sh, _, _ := f.tracker.Start("x", 0)
	d, _ = d.update(shiftChangedMsg{shift: sh})
	if !d.isRunning() {
		t.Fatal("dashboard should pick up the new shift")
	}
	if d.today().Count != 1 {
		t.Fatalf("today count = %d", d.today().Count)
	}
}

func TestDashboardTodayFollowsTicks(t *testing.T) {
	f := newFixture(t)
	sh, _, _ := f.tracker.Start("x", 0)
	d := newDashboardModel(f.tracker)
	d, _ = d.update(shiftChangedMsg{shift: sh})
	before := d.today().Worked

	d, _ = d.update(tickMsg(sh.StartTime.Add(90 * time.Minute)))
	if got := d.today().Worked; got != 90*time.Minute || got <= before {
		t.Fatalf("today worked after tick = %v (before %v)", got, before)
	}
	if !strings.Contains(d.renderSummaryPanel(60), "01:30") {
		t.Fatal("summary panel should show the ticked total")
	}
}

func TestDashboardView(t *testing.T) {
	f := newFixture(t)
	d := newDashboardModel(f.tracker)
	d.setSize(100, 40)
	if !strings.Contains(d.view(), "OFF SHIFT") {
		t.Fatal("idle view should say off shift")
	}

	f.tracker.Start("Delivery", 7)
	d.reload()
	out := d.view()
	if !strings.Contains(out, "Delivery") || !strings.Contains(out, "WORKING") {
		t.Fatalf("running view missing details:\n%s", out)
	}

	d.setSize(10, 10)
	if d.view() != "Terminal too small" {
		t.Fatal("tiny terminals get a notice")
	}
}

// ============================================================
// History
// ============================================================

func stopShift(t *testing.T, f *fixture, title string, d time.Duration) {
	t.Helper()
	if _, _, err := f.tracker.Start(title, 1); err != nil {
		t.Fatal(err)
	}
	f.advance(d)
	if _, _, err := f.tracker.Stop(); err != nil {
		t.Fatal(err)
	}
}

func TestHistoryDefaultFilterShowsAll(t *testing.T) {
	f := newFixture(t)
	stopShift(t, f, "a", time.Hour)
	f.advance(48 * time.Hour)
	stopShift(t, f, "b", time.Hour)

	h := newHistoryModel(f.tracker)
	if h.filter.Enabled {
		t.Fatal("filter starts disabled")
	}
	if len(h.selection()) != 2 || h.summary.Count != 2 {
		t.Fatalf("selection = %d", len(h.selection()))
	}
	if h.selection()[0].Title != "b" {
		t.Fatal("newest first")
	}
}

func TestHistoryFilter(t *testing.T) {
	f := newFixture(t)
	stopShift(t, f, "a", time.Hour)
	f.advance(48 * time.Hour)
	stopShift(t, f, "b", time.Hour)

	h := newHistoryModel(f.tracker)
	h.filter = filterFromForm(true, "2026-03-10", "2026-03-10")
	h.reload()
	if len(h.selection()) != 1 || h.selection()[0].Title != "a" {
		t.Fatalf("filtered selection = %+v", h.selection())
	}
	if !strings.Contains(h.view(), "Range: 2026-03-10") {
		t.Fatal("view should show the range label")
	}

	// Incomplete filter shows everything.
	h.filter = filterFromForm(true, "2026-03-10", "")
	h.reload()
	if len(h.selection()) != 2 {
		t.Fatal("incomplete filter should not restrict")
	}
}

func TestHistoryDeleteNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	stopShift(t, f, "a", time.Hour)
	stopShift(t, f, "b", time.Hour)
	h := newHistoryModel(f.tracker)

	h, _ = h.update(keyRunes("d"))
	if !h.confirmDelete {
		t.Fatal("d should ask for confirmation")
	}
	h, _ = h.update(keyRunes("n"))
	if h.confirmDelete || len(f.tracker.State().History) != 2 {
		t.Fatal("any key but y cancels")
	}

	h, _ = h.update(keyRunes("d"))
	h, cmd := h.update(keyRunes("y"))
	if len(f.tracker.State().History) != 1 {
		t.Fatal("y should delete the selected shift")
	}
	for _, msg := range drain(cmd) {
		h, _ = h.update(msg)
	}
	if len(h.selection()) != 1 || h.selection()[0].Title != "a" {
		t.Fatalf("remaining = %+v", h.selection())
	}
}

func TestHistoryCursor(t *testing.T) {
	f := newFixture(t)
	stopShift(t, f, "a", time.Hour)
	stopShift(t, f, "b", time.Hour)
	h := newHistoryModel(f.tracker)

	h, _ = h.update(keyRunes("k"))
	if h.cursor != 0 {
		t.Fatal("cursor stops at the top")
	}
	h, _ = h.update(keyRunes("j"))
	h, _ = h.update(keyRunes("j"))
	if h.cursor != 1 {
		t.Fatalf("cursor = %d, should stop at the bottom", h.cursor)
	}
}

func TestValidDate(t *testing.T) {
	if validDate("") != nil || validDate("2026-03-10") != nil {
		t.Fatal("blank and valid dates pass")
	}
	if validDate("10.03.2026") == nil {
		t.Fatal("other formats are rejected")
	}
}

// ============================================================
// Reports
// ============================================================

func TestReportsBucketsByDay(t *testing.T) {
	f := newFixture(t)
	stopShift(t, f, "a", 2*time.Hour)
	f.advance(24 * time.Hour)
	stopShift(t, f, "b", time.Hour)
	f.tracker.Start("running", 0)
	f.advance(30 * time.Minute)

	r := newReportsModel(f.tracker)
	r.setSize(100, 40)
	r.reload()

	if len(r.days) != 7 {
		t.Fatalf("days = %d, want 7", len(r.days))
	}
	last := r.days[6]
	if last.Count != 2 || last.Worked != 90*time.Minute {
		t.Fatalf("today = %+v", last.Summary)
	}
	if r.days[5].Worked != 2*time.Hour {
		t.Fatalf("yesterday = %+v", r.days[5].Summary)
	}
	if tot := r.total(); tot.Count != 3 || tot.Distance != 2 {
		t.Fatalf("total = %+v", tot)
	}
	if !strings.Contains(r.view(), "Total") {
		t.Fatal("view should include the totals row")
	}
}

func TestReportsNavigation(t *testing.T) {
	f := newFixture(t)
	r := newReportsModel(f.tracker)
	r.setSize(100, 40)

	r, _ = r.update(keyRunes("h"))
	if r.offset != 1 {
		t.Fatal("left goes back in time")
	}
	r, _ = r.update(keyRunes("l"))
	r, _ = r.update(keyRunes("l"))
	if r.offset != 0 {
		t.Fatal("right stops at the present")
	}
	r, _ = r.update(keyEnter)
	if r.mode != reportWeekly {
		t.Fatal("enter switches mode")
	}
	from, to := r.dateRange()
	if from.Weekday() != time.Monday || to.Sub(from) < 6*24*time.Hour {
		t.Fatalf("week range = %v..%v", from, to)
	}
}

// ============================================================
// Settings
// ============================================================

func TestValidEndpoint(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"", true},
		{"https://script.example.com/macros/s/abc/exec", true},
		{"https://script.example.com/macros/s/abc", false},
		{"  https://x.test/exec  ", true},
	}
	for _, tt := range tests {
		if err := validEndpoint(tt.in); (err == nil) != tt.ok {
			t.Errorf("validEndpoint(%q) = %v", tt.in, err)
		}
	}
}

func TestFormatSettingValue(t *testing.T) {
	if formatSettingValue(store.KeyToken, "secret") != "••••••" {
		t.Fatal("token should be masked")
	}
	if formatSettingValue(store.KeyToken, "") != "(not set)" {
		t.Fatal("missing token")
	}
	if formatSettingValue(store.KeyEndpoint, "") != "(sync off)" {
		t.Fatal("missing endpoint")
	}
	if formatSettingValue(store.KeyReportPrefix, " ") != store.DefaultReportPrefix {
		t.Fatal("blank prefix shows the default")
	}
}

func TestSettingsSave(t *testing.T) {
	f := newFixture(t)
	s := newSettingsModel(f.store, f.tracker)
	*s.endpoint = " https://x.test/exec "
	*s.token = "tok"
	*s.reportPrefix = "hours"
	if err := s.saveSettings(); err != nil {
		t.Fatal(err)
	}
	if f.store.Endpoint() != "https://x.test/exec" || f.store.Token() != "tok" || f.store.ReportPrefix() != "hours" {
		t.Fatal("settings not saved")
	}
}

func TestSettingsPing(t *testing.T) {
	f := newFixture(t)
	s := newSettingsModel(f.store, f.tracker)
	_, cmd := s.update(keyRunes("p"))
	msg, ok := cmd().(statusMsg)
	if !ok || !msg.isError || !strings.Contains(msg.text, "offline") {
		t.Fatalf("ping status = %#v", msg)
	}
}

// ============================================================
// App
// ============================================================

func newTestApp(t *testing.T) (App, *fixture) {
	t.Helper()
	f := newFixture(t)
	app := NewApp(f.store, f.tracker)
	app.exportDir = t.TempDir()
	app.width = 120
	app.height = 40
	return app, f
}

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)
	if app.activeView != viewDashboard {
		t.Fatal("default view should be dashboard")
	}
	if app.showHelp || app.exportPicking || app.isFormActive() {
		t.Fatal("nothing should be open initially")
	}
}

func TestAppViewStates(t *testing.T) {
	app, _ := newTestApp(t)
	for v := range viewNames {
		app.activeView = viewState(v)
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppTabCycles(t *testing.T) {
	app, _ := newTestApp(t)
	for range viewNames {
		m, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
		app = m.(App)
	}
	if app.activeView != viewDashboard {
		t.Fatalf("tab should cycle back to dashboard, got %d", app.activeView)
	}
}

func TestAppLoadingState(t *testing.T) {
	f := newFixture(t)
	app := NewApp(f.store, f.tracker)
	if app.View() != "Loading..." {
		t.Fatal("unsized app shows loading")
	}
}

func TestAppHeaderAndFooter(t *testing.T) {
	app, _ := newTestApp(t)
	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}

	app.status = "test status"
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppDashboardPromptBlocksGlobalKeys(t *testing.T) {
	app, _ := newTestApp(t)
	m, _ := app.Update(keyRunes("s"))
	app = m.(App)
	if !app.isFormActive() {
		t.Fatal("start prompt should capture keys")
	}
	m, _ = app.Update(keyRunes("q"))
	app = m.(App)
	if app.dashboard.input.Value() != "q" {
		t.Fatalf("prompt should receive the key, got %q", app.dashboard.input.Value())
	}
}

func TestAppSyncFailureStatus(t *testing.T) {
	app, _ := newTestApp(t)
	m, _ := app.Update(syncResultMsg{result: tracker.Result{Action: client.ActionUpsert, ID: "a", Err: client.ErrMissingToken}})
	app = m.(App)
	if !app.statusErr || !strings.Contains(app.status, "no token set") {
		t.Fatalf("status = %q", app.status)
	}

	m, _ = app.Update(syncResultMsg{result: tracker.Result{Action: client.ActionUpsert, ID: "a"}})
	app = m.(App)
	if !strings.Contains(app.status, "no token set") {
		t.Fatal("a successful sync leaves the status alone")
	}
}

func TestAppRefresh(t *testing.T) {
	app, f := newTestApp(t)

	msg := app.refreshCmd()().(refreshDoneMsg)
	if !errors.Is(msg.err, client.ErrInvalidEndpoint) {
		t.Fatalf("refresh without endpoint should fail, got %v", msg.err)
	}

	f.store.SetSetting(store.KeyEndpoint, "https://x.test/exec")
	end := f.now.Add(time.Hour)
	f.remote.rows = []client.Row{
		client.RowFromShift(store.Shift{ID: "r1", Title: "remote", StartTime: f.now, EndTime: &end}, f.now),
	}
	msg = app.refreshCmd()().(refreshDoneMsg)
	if msg.err != nil || msg.report.History != 1 {
		t.Fatalf("refresh = %+v", msg)
	}

	m, cmd := app.Update(msg)
	app = m.(App)
	if app.statusErr || !strings.Contains(app.status, "Refreshed: 1 shift(s)") {
		t.Fatalf("status = %q", app.status)
	}
	m, _ = app.Update(cmd())
	app = m.(App)
	if len(app.history.selection()) != 1 {
		t.Fatal("history should reload after refresh")
	}
}

func TestRefreshSummary(t *testing.T) {
	got := refreshSummary(tracker.RefreshReport{History: 3, Active: "a", Skipped: 1, Discarded: []string{"b"}})
	for _, want := range []string{"3 shift(s)", "1 running", "1 unreadable", "1 extra running"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary %q missing %q", got, want)
		}
	}
}

func TestAppExport(t *testing.T) {
	app, f := newTestApp(t)
	stopShift(t, f, "a", time.Hour)
	m, _ := app.Update(shiftChangedMsg{})
	app = m.(App)

	m, _ = app.Update(keyRunes("e"))
	app = m.(App)
	if !app.exportPicking {
		t.Fatal("e opens the export picker")
	}
	m, cmd := app.Update(keyEnter)
	app = m.(App)
	done, ok := cmd().(exportDoneMsg)
	if !ok {
		t.Fatal("export should succeed")
	}
	if filepath.Dir(done.path) != app.exportDir || !strings.HasPrefix(filepath.Base(done.path), "shift-report-") {
		t.Fatalf("export path = %q", done.path)
	}
	data, err := os.ReadFile(done.path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "SELECTION TOTAL") {
		t.Fatal("csv report incomplete")
	}

	m, _ = app.Update(done)
	app = m.(App)
	if !strings.Contains(app.status, "Exported to") {
		t.Fatalf("status = %q", app.status)
	}
}

func TestAppExportJSONUsesPrefix(t *testing.T) {
	app, f := newTestApp(t)
	f.store.SetSetting(store.KeyReportPrefix, "my hours")
	app.exportPicking = true
	m, _ := app.Update(keyRunes("j"))
	app = m.(App)
	_, cmd := app.Update(keyEnter)
	done := cmd().(exportDoneMsg)
	if !strings.HasPrefix(filepath.Base(done.path), "my-hours-") || filepath.Ext(done.path) != ".json" {
		t.Fatalf("export path = %q", done.path)
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := map[string]lipgloss.Style{
		"activeTab":   activeTabStyle,
		"inactiveTab": inactiveTabStyle,
		"panel":       panelStyle,
		"activePanel": activePanelStyle,
		"title":       titleStyle,
		"error":       errorStyle,
		"muted":       mutedStyle,
		"highlight":   highlightStyle,
		"header":      headerStyle,
		"footer":      footerStyle,
		"selectedRow": selectedRowStyle,
		"row":         rowStyle,
		"clock":       clockStyle(phaseWorking),
		"badge":       badgeStyle(phaseBreak),
	}
	for name, st := range styles {
		if st.Render("test") == "" {
			t.Fatalf("style %q rendered empty", name)
		}
	}
}

func TestPhaseFollowsTimer(t *testing.T) {
	f := newFixture(t)
	d := newDashboardModel(f.tracker)
	if d.phase() != phaseOff {
		t.Fatalf("phase = %v, want off", d.phase())
	}
	sh, _, _ := f.tracker.Start("x", 0)
	d, _ = d.update(shiftChangedMsg{shift: sh})
	if d.phase() != phaseWorking {
		t.Fatalf("phase = %v, want working", d.phase())
	}
	sh, _, _ = f.tracker.ToggleBreak()
	d, _ = d.update(shiftChangedMsg{shift: sh})
	if d.phase() != phaseBreak {
		t.Fatalf("phase = %v, want break", d.phase())
	}
	if phaseColor(phaseWorking) == phaseColor(phaseBreak) || phaseColor(phaseOff) != colorDim {
		t.Fatal("each phase needs its own colour")
	}
}
