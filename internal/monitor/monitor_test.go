package monitor

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/watchfire-io/studiobar/internal/metrics"
	"github.com/watchfire-io/studiobar/internal/studio"
)

// fakeAPI is a scriptable API. Fields are guarded by mu.
type fakeAPI struct {
	mu sync.Mutex

	status     studio.Status
	statusErr  error
	machine    studio.Machine
	machineErr error
	resolveErr error
	startErr   error
	stopErr    error
	switchErr  error

	// statusAfterStart, when set, becomes the status once Start succeeds.
	statusAfterStart studio.Status

	// gate, when set, holds the next GetStatus call until closed. entered is
	// closed once that call is waiting.
	gate    chan struct{}
	entered chan struct{}

	calls    map[string]int
	started  []studio.Machine
	switched []studio.Machine
}

func newFakeAPI(status studio.Status, machine studio.Machine) *fakeAPI {
	return &fakeAPI{status: status, machine: machine, calls: make(map[string]int)}
}

func (f *fakeAPI) set(fn func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) ResolveTarget(_ context.Context, name string) (studio.Target, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["resolve"]++
	if f.resolveErr != nil {
		return studio.Target{}, f.resolveErr
	}
	return studio.Target{ID: "cs-" + name, Name: name}, nil
}

func (f *fakeAPI) GetStatus(_ context.Context, _ studio.Target) (studio.Status, error) {
	f.mu.Lock()
	f.calls["status"]++
	status, err := f.status, f.statusErr
	gate, entered := f.gate, f.entered
	f.gate, f.entered = nil, nil
	f.mu.Unlock()

	if gate != nil {
		close(entered)
		<-gate
	}
	return status, err
}

func (f *fakeAPI) GetMachine(_ context.Context, _ studio.Target) (studio.Machine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["machine"]++
	return f.machine, f.machineErr
}

func (f *fakeAPI) SwitchMachine(_ context.Context, _ studio.Target, machine studio.Machine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["switch"]++
	if f.switchErr != nil {
		return f.switchErr
	}
	f.switched = append(f.switched, machine)
	f.machine = machine
	return nil
}

func (f *fakeAPI) Start(_ context.Context, _ studio.Target, machine studio.Machine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["start"]++
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, machine)
	if f.statusAfterStart != "" {
		f.status = f.statusAfterStart
	}
	return nil
}

func (f *fakeAPI) Stop(_ context.Context, _ studio.Target) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["stop"]++
	return f.stopErr
}

type recordingSink struct {
	mu     sync.Mutex
	titles []string
	bodies []string
}

func (r *recordingSink) Notify(title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	r.bodies = append(r.bodies, body)
	return nil
}

func (r *recordingSink) received() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.titles...)
}

type harness struct {
	m     *Monitor
	api   *fakeAPI
	clock clockwork.FakeClock
	sink  *recordingSink
	stats *metrics.Metrics
}

func newHarness(t *testing.T, api *fakeAPI) *harness {
	t.Helper()
	h := &harness{
		api:   api,
		clock: clockwork.NewFakeClock(),
		sink:  &recordingSink{},
		stats: metrics.New(),
	}
	h.m = New(Options{
		API:            api,
		Notifier:       h.sink,
		Clock:          h.clock,
		DefaultMachine: "cpu-4",
		Metrics:        h.stats,
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.m.Run(ctx)
	return h
}

// waitFor polls the monitor snapshot until cond holds.
func waitFor(t *testing.T, m *Monitor, what string, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s := m.Snapshot()
		if cond(s) {
			return s
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; last snapshot: %+v", what, s)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func refreshed(n uint64) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.Refreshes >= n }
}

// advance fires the armed poll timer.
func (h *harness) advance(d time.Duration) {
	h.clock.BlockUntil(1)
	h.clock.Advance(d)
}

func TestSelectTargetRefreshesImmediately(t *testing.T) {
	h := newHarness(t, newFakeAPI(studio.StatusRunning, "lit-a10g-1"))

	h.m.SelectTarget("my-studio")
	s := waitFor(t, h.m, "first refresh", refreshed(1))

	if s.Status != studio.StatusRunning {
		t.Errorf("Status = %s, want RUNNING", s.Status)
	}
	if s.Machine != "lit-a10g-1" {
		t.Errorf("Machine = %q, want lit-a10g-1", s.Machine)
	}
	if s.TargetID != "cs-my-studio" {
		t.Errorf("TargetID = %q", s.TargetID)
	}
	if s.FastPolling {
		t.Error("FastPolling = true for a running studio")
	}
	if s.Interval != DefaultRefreshPeriod {
		t.Errorf("Interval = %v, want %v", s.Interval, DefaultRefreshPeriod)
	}
	if s.Notifications != 1 {
		t.Errorf("Notifications = %d, want 1 (UNKNOWN → RUNNING)", s.Notifications)
	}
}

func TestRefreshWithoutTargetIsNoop(t *testing.T) {
	api := newFakeAPI(studio.StatusRunning, "cpu-4")
	h := newHarness(t, api)

	h.m.Refresh()
	h.m.Refresh()
	time.Sleep(20 * time.Millisecond)

	if n := api.count("status"); n != 0 {
		t.Errorf("GetStatus called %d times without a target", n)
	}
	if s := h.m.Snapshot(); s.Status != studio.StatusUnknown || s.FastPolling {
		t.Errorf("snapshot = %+v, want UNKNOWN without fast polling", s)
	}
}

func TestFastPollingFollowsTransientStatus(t *testing.T) {
	api := newFakeAPI(studio.StatusPending, "cpu-4")
	h := newHarness(t, api)

	h.m.SelectTarget("my-studio")
	s := waitFor(t, h.m, "pending", refreshed(1))
	if !s.FastPolling || s.Interval != DefaultFastRefreshPeriod {
		t.Fatalf("pending: FastPolling=%v Interval=%v, want fast at %v", s.FastPolling, s.Interval, DefaultFastRefreshPeriod)
	}
	if s.Notifications != 0 {
		t.Errorf("Notifications = %d after PENDING, want 0", s.Notifications)
	}

	// Each transient status keeps the fast cadence.
	transient := []studio.Status{studio.StatusInitializing, studio.StatusStopping, studio.StatusFailed, studio.StatusUnknown}
	for i, status := range transient {
		api.set(func(f *fakeAPI) { f.status = status })
		h.advance(DefaultFastRefreshPeriod)
		s = waitFor(t, h.m, string(status), refreshed(uint64(i+2)))
		if s.Status != status || !s.FastPolling {
			t.Fatalf("%s: Status=%s FastPolling=%v, want fast polling", status, s.Status, s.FastPolling)
		}
	}

	// Settling cancels the fast cadence and notifies once.
	api.set(func(f *fakeAPI) { f.status = studio.StatusRunning })
	h.advance(DefaultFastRefreshPeriod)
	s = waitFor(t, h.m, "running", refreshed(6))
	if s.Status != studio.StatusRunning || s.FastPolling || s.Interval != DefaultRefreshPeriod {
		t.Fatalf("running: %+v", s)
	}
	if s.Notifications != 1 {
		t.Errorf("Notifications = %d, want 1", s.Notifications)
	}

	// A fast interval no longer triggers a poll.
	h.advance(DefaultFastRefreshPeriod)
	time.Sleep(20 * time.Millisecond)
	if got := h.m.Snapshot().Refreshes; got != 6 {
		t.Fatalf("Refreshes = %d after fast interval while settled, want 6", got)
	}

	// The base interval does, and the same settled status does not notify again.
	h.clock.Advance(DefaultRefreshPeriod - DefaultFastRefreshPeriod)
	s = waitFor(t, h.m, "base poll", refreshed(7))
	if s.Notifications != 1 {
		t.Errorf("Notifications = %d after repeated RUNNING, want 1", s.Notifications)
	}

	waitForTitles(t, h.sink, []string{"Studio running"})
}

func waitForTitles(t *testing.T, sink *recordingSink, want []string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		got := sink.received()
		if strings.Join(got, "|") == strings.Join(want, "|") {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("notifications = %v, want %v", got, want)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestStopTransitionNotifies(t *testing.T) {
	api := newFakeAPI(studio.StatusRunning, "cpu-4")
	h := newHarness(t, api)

	h.m.SelectTarget("my-studio")
	waitFor(t, h.m, "running", refreshed(1))

	h.m.Stop()
	s := waitFor(t, h.m, "refresh after stop", refreshed(2))
	if api.count("stop") != 1 {
		t.Fatalf("Stop called %d times, want 1", api.count("stop"))
	}
	if s.Status != studio.StatusRunning {
		t.Fatalf("Status = %s; a successful stop must not change status by itself", s.Status)
	}

	api.set(func(f *fakeAPI) { f.status = studio.StatusStopping })
	h.m.Refresh()
	waitFor(t, h.m, "stopping", refreshed(3))

	api.set(func(f *fakeAPI) { f.status = studio.StatusStopped })
	h.advance(DefaultFastRefreshPeriod)
	s = waitFor(t, h.m, "stopped", refreshed(4))
	if s.Status != studio.StatusStopped || s.Notifications != 2 {
		t.Fatalf("snapshot = %+v, want STOPPED with 2 notifications", s)
	}
	waitForTitles(t, h.sink, []string{"Studio running", "Studio stopped"})
}

func TestMutationFailureRecordsError(t *testing.T) {
	boom := errors.New("quota exceeded")
	tests := []struct {
		name    string
		setup   func(f *fakeAPI)
		act     func(m *Monitor)
		wantErr string
	}{
		{
			name:    "Start",
			setup:   func(f *fakeAPI) { f.startErr = boom },
			act:     func(m *Monitor) { m.Start("lit-t4-1") },
			wantErr: "failed to start studio: quota exceeded",
		},
		{
			name:    "Stop",
			setup:   func(f *fakeAPI) { f.stopErr = boom },
			act:     func(m *Monitor) { m.Stop() },
			wantErr: "failed to stop studio: quota exceeded",
		},
		{
			name:    "Switch machine",
			setup:   func(f *fakeAPI) { f.switchErr = boom },
			act:     func(m *Monitor) { m.SwitchMachine("lit-t4-1") },
			wantErr: "failed to switch machine: quota exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(studio.StatusStopped, "cpu-4")
			h := newHarness(t, api)

			h.m.SelectTarget("my-studio")
			before := waitFor(t, h.m, "stopped", refreshed(1))

			api.set(tt.setup)
			tt.act(h.m)
			s := waitFor(t, h.m, "error", func(s Snapshot) bool { return s.LastError != "" && !s.Busy })

			if s.LastError != tt.wantErr {
				t.Errorf("LastError = %q, want %q", s.LastError, tt.wantErr)
			}
			if s.Status != before.Status || s.Machine != before.Machine {
				t.Errorf("state changed after failure: %s/%s, was %s/%s", s.Status, s.Machine, before.Status, before.Machine)
			}
			if s.Refreshes != 1 || api.count("status") != 1 {
				t.Errorf("refresh ran after failed mutation (Refreshes=%d, GetStatus=%d)", s.Refreshes, api.count("status"))
			}
		})
	}
}

func TestStartRefreshesAndUsesObservedMachine(t *testing.T) {
	api := newFakeAPI(studio.StatusStopped, "lit-t4-1")
	api.statusAfterStart = studio.StatusPending
	h := newHarness(t, api)

	h.m.SelectTarget("my-studio")
	waitFor(t, h.m, "stopped", refreshed(1))

	h.m.Start("")
	s := waitFor(t, h.m, "refresh after start", refreshed(2))

	if s.Status != studio.StatusPending || !s.FastPolling {
		t.Errorf("snapshot = %+v, want PENDING with fast polling", s)
	}
	api.mu.Lock()
	started := append([]studio.Machine(nil), api.started...)
	api.mu.Unlock()
	if len(started) != 1 || started[0] != "lit-t4-1" {
		t.Errorf("started = %v, want [lit-t4-1]", started)
	}
}

func TestStartFallsBackToDefaultMachine(t *testing.T) {
	api := newFakeAPI(studio.StatusStopped, "")
	api.machineErr = errors.New("no compute config")
	h := newHarness(t, api)

	h.m.SelectTarget("my-studio")
	waitFor(t, h.m, "stopped", refreshed(1))

	h.m.Start("")
	waitFor(t, h.m, "refresh after start", refreshed(2))

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.started) != 1 || api.started[0] != "cpu-4" {
		t.Errorf("started = %v, want [cpu-4]", api.started)
	}
}

func TestSwitchMachineRefreshes(t *testing.T) {
	api := newFakeAPI(studio.StatusStopped, "cpu-4")
	h := newHarness(t, api)

	h.m.SelectTarget("my-studio")
	waitFor(t, h.m, "stopped", refreshed(1))

	h.m.SwitchMachine("lit-a10g-1")
	s := waitFor(t, h.m, "refresh after switch", refreshed(2))
	if s.Machine != "lit-a10g-1" {
		t.Errorf("Machine = %q, want lit-a10g-1", s.Machine)
	}
}

func TestMutationWithoutTarget(t *testing.T) {
	api := newFakeAPI(studio.StatusStopped, "cpu-4")
	h := newHarness(t, api)

	h.m.Start("cpu-4")
	s := waitFor(t, h.m, "error", func(s Snapshot) bool { return s.LastError != "" })
	if s.LastError != "failed to start studio: no studio selected" {
		t.Errorf("LastError = %q", s.LastError)
	}
	if api.count("start") != 0 {
		t.Error("Start reached the API without a target")
	}
}

func TestRefreshFailureKeepsStatus(t *testing.T) {
	api := newFakeAPI(studio.StatusRunning, "cpu-4")
	h := newHarness(t, api)

	h.m.SelectTarget("my-studio")
	waitFor(t, h.m, "running", refreshed(1))

	api.set(func(f *fakeAPI) { f.statusErr = &studio.RemoteError{Code: 500, Message: "backend down"} })
	h.m.Refresh()
	s := waitFor(t, h.m, "failed refresh", refreshed(2))

	if s.Status != studio.StatusRunning || s.Machine != "cpu-4" {
		t.Errorf("state changed on failure: %+v", s)
	}
	if !strings.Contains(s.LastError, "backend down") {
		t.Errorf("LastError = %q", s.LastError)
	}
	if s.Notifications != 1 {
		t.Errorf("Notifications = %d, want 1", s.Notifications)
	}

	api.set(func(f *fakeAPI) { f.statusErr = nil })
	h.m.Refresh()
	s = waitFor(t, h.m, "recovered refresh", refreshed(3))
	if s.LastError != "" {
		t.Errorf("LastError = %q after success, want empty", s.LastError)
	}
}

func TestAuthFailureOnResolve(t *testing.T) {
	api := newFakeAPI(studio.StatusRunning, "cpu-4")
	api.resolveErr = studio.ErrAuth
	h := newHarness(t, api)

	h.m.SelectTarget("my-studio")
	s := waitFor(t, h.m, "auth failure", refreshed(1))
	if s.Status != studio.StatusUnknown || !s.FastPolling {
		t.Errorf("snapshot = %+v, want UNKNOWN with fast polling", s)
	}
	if !strings.Contains(s.LastError, "credentials") {
		t.Errorf("LastError = %q", s.LastError)
	}
	if api.count("status") != 0 {
		t.Error("GetStatus called after failed resolve")
	}
}

func TestMachineFailureIsPartialUpdate(t *testing.T) {
	api := newFakeAPI(studio.StatusPending, "cpu-4")
	h := newHarness(t, api)

	h.m.SelectTarget("my-studio")
	waitFor(t, h.m, "pending", refreshed(1))

	api.set(func(f *fakeAPI) {
		f.status = studio.StatusRunning
		f.machine = "lit-t4-1"
		f.machineErr = errors.New("timeout")
	})
	h.m.Refresh()
	s := waitFor(t, h.m, "partial refresh", refreshed(2))

	if s.Status != studio.StatusRunning {
		t.Errorf("Status = %s, want RUNNING", s.Status)
	}
	if s.Machine != "cpu-4" {
		t.Errorf("Machine = %q, want stale cpu-4", s.Machine)
	}
	if s.LastError != "failed to read machine: timeout" {
		t.Errorf("LastError = %q", s.LastError)
	}
	if s.FastPolling || s.Notifications != 1 {
		t.Errorf("FastPolling=%v Notifications=%d, want settled with 1 notification", s.FastPolling, s.Notifications)
	}
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	api := newFakeAPI(studio.StatusPending, "cpu-4")
	gate := make(chan struct{})
	entered := make(chan struct{})
	api.gate, api.entered = gate, entered
	h := newHarness(t, api)

	h.m.SelectTarget("my-studio")
	<-entered

	api.set(func(f *fakeAPI) { f.status = studio.StatusRunning })
	h.m.Refresh()
	waitFor(t, h.m, "newer refresh", func(s Snapshot) bool { return s.Status == studio.StatusRunning })

	close(gate)
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(scrape(h.stats), `studiobar_refreshes_total{outcome="stale"} 1`) {
		if time.Now().After(deadline) {
			t.Fatal("stale refresh was not discarded")
		}
		time.Sleep(2 * time.Millisecond)
	}

	if s := h.m.Snapshot(); s.Status != studio.StatusRunning || s.Refreshes != 1 {
		t.Errorf("snapshot = %+v, want RUNNING with 1 applied refresh", s)
	}
}

func scrape(m *metrics.Metrics) string {
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestUpdateRefreshPeriodRearmsTimer(t *testing.T) {
	api := newFakeAPI(studio.StatusRunning, "cpu-4")
	h := newHarness(t, api)

	h.m.SelectTarget("my-studio")
	waitFor(t, h.m, "running", refreshed(1))

	h.m.UpdateRefreshPeriod(10 * time.Second)
	waitFor(t, h.m, "new interval", func(s Snapshot) bool { return s.Interval == 10*time.Second })

	h.advance(10 * time.Second)
	waitFor(t, h.m, "poll at new interval", refreshed(2))

	h.m.UpdateFastRefreshPeriod(2 * time.Second)
	api.set(func(f *fakeAPI) { f.status = studio.StatusStopping })
	h.m.Refresh()
	s := waitFor(t, h.m, "stopping", refreshed(3))
	if s.Interval != 2*time.Second || !s.FastPolling {
		t.Errorf("Interval=%v FastPolling=%v, want 2s fast", s.Interval, s.FastPolling)
	}

	h.advance(2 * time.Second)
	waitFor(t, h.m, "fast poll at new interval", refreshed(4))
}

func TestFastPeriodNotShorterThanBase(t *testing.T) {
	api := newFakeAPI(studio.StatusPending, "cpu-4")
	h := newHarness(t, api)

	h.m.UpdateRefreshPeriod(3 * time.Second)
	h.m.SelectTarget("my-studio")
	s := waitFor(t, h.m, "pending", refreshed(1))
	if s.FastPolling || s.Interval != 3*time.Second {
		t.Fatalf("FastPolling=%v Interval=%v, want base cadence at 3s", s.FastPolling, s.Interval)
	}

	h.advance(3 * time.Second)
	waitFor(t, h.m, "poll at base interval", refreshed(2))

	h.m.UpdateFastRefreshPeriod(time.Second)
	s = waitFor(t, h.m, "fast period below base", func(s Snapshot) bool { return s.FastPolling })
	if s.Interval != time.Second {
		t.Errorf("Interval = %v, want 1s", s.Interval)
	}
}

func TestSelectTargetResetsState(t *testing.T) {
	api := newFakeAPI(studio.StatusRunning, "cpu-4")
	h := newHarness(t, api)

	h.m.SelectTarget("first")
	waitFor(t, h.m, "first", refreshed(1))

	h.m.SelectTarget("")
	s := waitFor(t, h.m, "deselected", func(s Snapshot) bool { return !s.HasTarget() })
	if s.Status != studio.StatusUnknown || s.Machine != "" || s.FastPolling {
		t.Errorf("snapshot after deselect = %+v", s)
	}

	calls := api.count("status")
	h.m.Refresh()
	time.Sleep(20 * time.Millisecond)
	if api.count("status") != calls {
		t.Error("Refresh polled without a target")
	}

	h.m.SelectTarget("second")
	s = waitFor(t, h.m, "second", refreshed(2))
	if s.Target != "second" || s.TargetID != "cs-second" {
		t.Errorf("snapshot = %+v", s)
	}
	if s.Notifications != 2 {
		t.Errorf("Notifications = %d, want 2 (one per selection)", s.Notifications)
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	api := newFakeAPI(studio.StatusRunning, "cpu-4")
	h := newHarness(t, api)

	ch, cancel := h.m.Subscribe()
	defer cancel()

	first := <-ch
	if first.Status != studio.StatusUnknown {
		t.Fatalf("initial snapshot status = %s", first.Status)
	}

	h.m.SelectTarget("my-studio")
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-ch:
			if s.Status == studio.StatusRunning {
				return
			}
		case <-timeout:
			t.Fatal("subscriber never saw RUNNING")
		}
	}
}

func TestSnapshotActions(t *testing.T) {
	tests := []struct {
		name                     string
		snap                     Snapshot
		canStart, canStop, canSw bool
	}{
		{"No target", Snapshot{Status: studio.StatusStopped}, false, false, false},
		{"Stopped", Snapshot{Target: "a", Status: studio.StatusStopped}, true, false, true},
		{"Running", Snapshot{Target: "a", Status: studio.StatusRunning}, false, true, true},
		{"Pending", Snapshot{Target: "a", Status: studio.StatusPending}, false, true, false},
		{"Stopping", Snapshot{Target: "a", Status: studio.StatusStopping}, false, false, false},
		{"Failed", Snapshot{Target: "a", Status: studio.StatusFailed}, true, false, true},
		{"Busy", Snapshot{Target: "a", Status: studio.StatusRunning, Busy: true}, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.CanStart(); got != tt.canStart {
				t.Errorf("CanStart = %v, want %v", got, tt.canStart)
			}
			if got := tt.snap.CanStop(); got != tt.canStop {
				t.Errorf("CanStop = %v, want %v", got, tt.canStop)
			}
			if got := tt.snap.CanSwitch(); got != tt.canSw {
				t.Errorf("CanSwitch = %v, want %v", got, tt.canSw)
			}
		})
	}
}

func TestSnapshotAge(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if got := (Snapshot{}).Age(now); got != "never" {
		t.Errorf("Age = %q, want never", got)
	}
	s := Snapshot{UpdatedAt: now.Add(-90 * time.Second)}
	if got := s.Age(now); got != "About a minute ago" {
		t.Errorf("Age = %q", got)
	}
}
