// Package monitor polls the selected studio and reconciles user actions
// against the polling loop.
//
// A Monitor is an actor: every state change happens on the goroutine
// running Run, fed by a queue of closures. Public operations only enqueue
// and return. Network calls run on their own goroutines and post their
// results back onto the queue, tagged with a sequence number so a slow,
// older response can never overwrite a newer one.
//
// Polling uses one timer. Its interval is the base refresh period while the
// studio is settled (running or stopped) and the fast period while it is
// transient. The timer is re-armed after every tick and every applied result.
package monitor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/watchfire-io/studiobar/internal/metrics"
	"github.com/watchfire-io/studiobar/internal/notify"
	"github.com/watchfire-io/studiobar/internal/studio"
	"github.com/watchfire-io/studiobar/internal/telemetry"
)

const (
	// DefaultRefreshPeriod is the base poll interval.
	DefaultRefreshPeriod = 30 * time.Second

	// DefaultFastRefreshPeriod is the poll interval while the studio is transient.
	DefaultFastRefreshPeriod = 5 * time.Second
)

// API is the studio control-plane surface the monitor drives.
// *studio.Client implements it.
type API interface {
	ResolveTarget(ctx context.Context, name string) (studio.Target, error)
	GetStatus(ctx context.Context, target studio.Target) (studio.Status, error)
	GetMachine(ctx context.Context, target studio.Target) (studio.Machine, error)
	SwitchMachine(ctx context.Context, target studio.Target, machine studio.Machine) error
	Start(ctx context.Context, target studio.Target, machine studio.Machine) error
	Stop(ctx context.Context, target studio.Target) error
}

// Options configures a Monitor.
type Options struct {
	API      API
	Notifier notify.Sink
	Clock    clockwork.Clock

	RefreshPeriod     time.Duration
	FastRefreshPeriod time.Duration

	// DefaultMachine is used by Start when no machine is given and none
	// has been observed yet.
	DefaultMachine studio.Machine

	Metrics   *metrics.Metrics
	Telemetry *telemetry.Tracker
}

// mutation identifies a user-triggered state change.
type mutation int

const (
	mutationStart mutation = iota
	mutationStop
	mutationSwitch
)

func (k mutation) failure() string {
	switch k {
	case mutationStart:
		return "failed to start studio"
	case mutationStop:
		return "failed to stop studio"
	default:
		return "failed to switch machine"
	}
}

func (k mutation) event() string {
	switch k {
	case mutationStart:
		return telemetry.EventStart
	case mutationStop:
		return telemetry.EventStop
	default:
		return telemetry.EventSwitchMachine
	}
}

// refreshResult is what one refresh brings back from the API.
type refreshResult struct {
	target     studio.Target
	status     studio.Status
	statusErr  error
	machine    studio.Machine
	machineErr error
}

// Monitor owns the observable studio state.
type Monitor struct {
	api            API
	notifier       notify.Sink
	clock          clockwork.Clock
	metrics        *metrics.Metrics
	telemetry      *telemetry.Tracker
	defaultMachine studio.Machine

	queueMu sync.Mutex
	queue   []func()
	wake    chan struct{}

	// Owned by the Run goroutine.
	ctx           context.Context
	target        string
	display       string
	targetID      string
	status        studio.Status
	machine       studio.Machine
	lastErr       string
	updatedAt     time.Time
	base          time.Duration
	fast          time.Duration
	fastActive    bool
	timer         clockwork.Timer
	epoch         uint64
	issued        uint64
	applied       uint64
	refreshes     uint64
	notifications uint64
	busy          int

	obs observers
}

// New creates a Monitor. Call Run to start it.
func New(opts Options) *Monitor {
	clk := opts.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Log{}
	}
	base := opts.RefreshPeriod
	if base <= 0 {
		base = DefaultRefreshPeriod
	}
	fast := opts.FastRefreshPeriod
	if fast <= 0 {
		fast = DefaultFastRefreshPeriod
	}

	m := &Monitor{
		api:            opts.API,
		notifier:       notifier,
		clock:          clk,
		metrics:        opts.Metrics,
		telemetry:      opts.Telemetry,
		defaultMachine: opts.DefaultMachine,
		wake:           make(chan struct{}, 1),
		ctx:            context.Background(),
		status:         studio.StatusUnknown,
		base:           base,
		fast:           fast,
	}
	m.obs.init(m.buildSnapshot())
	return m
}

// Run processes operations and timer ticks until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.ctx = ctx
	defer m.stopTimer()

	for {
		var tick <-chan time.Time
		if m.timer != nil {
			tick = m.timer.Chan()
		}

		select {
		case <-ctx.Done():
			return
		case <-m.wake:
			m.drain()
		case <-tick:
			m.timer = nil
			m.schedule()
			m.startRefresh()
			m.publish()
		}
	}
}

// ============================================================================
// Public operations
// ============================================================================

// Refresh polls the selected studio now. No-op without a selection.
func (m *Monitor) Refresh() {
	m.enqueue(func() {
		m.startRefresh()
		m.publish()
	})
}

// SelectTarget makes name the monitored studio and polls it immediately.
// Selecting a different studio discards all state of the previous one.
// An empty name deselects and stops polling.
func (m *Monitor) SelectTarget(name string) {
	name = strings.TrimSpace(name)
	m.enqueue(func() {
		if name != "" && name == m.target {
			m.startRefresh()
			m.publish()
			return
		}

		m.epoch++
		m.target = name
		m.display = name
		m.targetID = ""
		m.status = studio.StatusUnknown
		m.machine = ""
		m.lastErr = ""
		m.updatedAt = time.Time{}
		m.busy = 0

		if name == "" {
			log.Println("[monitor] No studio selected, polling stopped")
		} else {
			log.Printf("[monitor] Monitoring studio %q", name)
		}

		m.schedule()
		m.startRefresh()
		m.publish()
	})
}

// Start asks the studio to start on machine. An empty machine means the
// last observed machine, falling back to the configured default.
func (m *Monitor) Start(machine studio.Machine) {
	m.enqueue(func() { m.mutate(mutationStart, machine) })
}

// Stop asks the studio to stop.
func (m *Monitor) Stop() {
	m.enqueue(func() { m.mutate(mutationStop, "") })
}

// SwitchMachine assigns a new compute type to the studio.
func (m *Monitor) SwitchMachine(machine studio.Machine) {
	m.enqueue(func() { m.mutate(mutationSwitch, machine) })
}

// UpdateRefreshPeriod changes the base poll interval and re-arms the timer.
func (m *Monitor) UpdateRefreshPeriod(d time.Duration) {
	m.enqueue(func() {
		if d <= 0 || d == m.base {
			return
		}
		m.base = d
		m.rearm()
	})
}

// UpdateFastRefreshPeriod changes the transient poll interval and re-arms the timer.
func (m *Monitor) UpdateFastRefreshPeriod(d time.Duration) {
	m.enqueue(func() {
		if d <= 0 || d == m.fast {
			return
		}
		m.fast = d
		m.rearm()
	})
}

// SetDefaultMachine changes the machine Start falls back to.
func (m *Monitor) SetDefaultMachine(machine studio.Machine) {
	m.enqueue(func() { m.defaultMachine = machine })
}

// ============================================================================
// Actor internals
// ============================================================================

func (m *Monitor) enqueue(fn func()) {
	m.queueMu.Lock()
	m.queue = append(m.queue, fn)
	m.queueMu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Monitor) drain() {
	for {
		m.queueMu.Lock()
		pending := m.queue
		m.queue = nil
		m.queueMu.Unlock()

		if len(pending) == 0 {
			return
		}
		for _, fn := range pending {
			fn()
		}
	}
}

// interval is the current poll period.
func (m *Monitor) interval() time.Duration {
	if m.fastActive {
		return m.fast
	}
	return m.base
}

// schedule releases the current timer and installs one for the current
// interval. Without a target no timer runs.
func (m *Monitor) schedule() {
	m.stopTimer()
	if m.target == "" {
		m.fastActive = false
		return
	}
	// A fast period at or above the base one never applies.
	m.fastActive = m.status.Transient() && m.fast < m.base
	m.timer = m.clock.NewTimer(m.interval())
}

// rearm restarts the timer after a period change.
func (m *Monitor) rearm() {
	if m.target == "" {
		return
	}
	m.schedule()
	m.publish()
}

func (m *Monitor) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// startRefresh fetches status then machine on a separate goroutine.
func (m *Monitor) startRefresh() {
	if m.target == "" || m.api == nil {
		return
	}
	m.issued++
	seq, epoch, name, ctx := m.issued, m.epoch, m.target, m.ctx

	go func() {
		res := m.fetch(ctx, name)
		m.enqueue(func() { m.applyRefresh(seq, epoch, res) })
	}()
}

// fetch resolves the target by name and reads status and machine. The id
// is re-resolved on every refresh so a recreated studio is picked up.
func (m *Monitor) fetch(ctx context.Context, name string) refreshResult {
	target, err := m.api.ResolveTarget(ctx, name)
	if err != nil {
		return refreshResult{statusErr: err}
	}
	status, err := m.api.GetStatus(ctx, target)
	if err != nil {
		return refreshResult{target: target, statusErr: err}
	}
	machine, err := m.api.GetMachine(ctx, target)
	return refreshResult{target: target, status: status, machine: machine, machineErr: err}
}

func (m *Monitor) applyRefresh(seq, epoch uint64, res refreshResult) {
	if epoch != m.epoch || seq <= m.applied {
		m.metrics.RefreshCompleted(metrics.OutcomeStale)
		return
	}
	m.applied = seq
	m.refreshes++

	if res.statusErr != nil {
		m.lastErr = fmt.Sprintf("failed to refresh studio: %v", res.statusErr)
		log.Printf("[monitor] Refresh of %q failed: %v", m.target, res.statusErr)
		m.metrics.RefreshCompleted(metrics.OutcomeError)
		m.publish()
		return
	}

	previous := m.status
	m.status = res.status
	m.targetID = res.target.ID
	if res.target.Name != "" {
		m.display = res.target.Name
	}
	m.updatedAt = m.clock.Now()

	if res.machineErr != nil {
		m.lastErr = fmt.Sprintf("failed to read machine: %v", res.machineErr)
		log.Printf("[monitor] Machine lookup for %q failed: %v", m.target, res.machineErr)
		m.metrics.RefreshCompleted(metrics.OutcomePartial)
	} else {
		m.machine = res.machine
		m.lastErr = ""
		m.metrics.RefreshCompleted(metrics.OutcomeOK)
	}

	m.schedule()
	m.metrics.SetStatus(m.status, m.fastActive)

	if previous != m.status {
		log.Printf("[monitor] %s: %s → %s", m.display, previous, m.status)
		if m.status.Settled() {
			m.notifyTransition()
		}
	}
	m.publish()
}

// notifyTransition emits the settled-state notification. Delivery happens
// off the actor goroutine.
func (m *Monitor) notifyTransition() {
	var title, body string
	switch m.status {
	case studio.StatusRunning:
		title = "Studio running"
		body = fmt.Sprintf("%s is ready", m.display)
		if m.machine != "" {
			body = fmt.Sprintf("%s is ready on %s", m.display, m.machine)
		}
	case studio.StatusStopped:
		title = "Studio stopped"
		body = fmt.Sprintf("%s has stopped", m.display)
	default:
		return
	}

	m.notifications++
	m.metrics.NotificationSent()
	m.telemetry.Track(telemetry.EventTransition, map[string]any{"status": string(m.status)})

	sink := m.notifier
	go func() {
		if err := sink.Notify(title, body); err != nil {
			log.Printf("[monitor] Notification failed: %v", err)
		}
	}()
}

func (m *Monitor) mutate(kind mutation, machine studio.Machine) {
	if m.target == "" {
		m.lastErr = kind.failure() + ": no studio selected"
		m.publish()
		return
	}
	if kind == mutationStart && machine == "" {
		machine = m.machine
		if machine == "" {
			machine = m.defaultMachine
		}
	}
	if (kind == mutationStart || kind == mutationSwitch) && machine == "" {
		m.lastErr = kind.failure() + ": no machine type given"
		m.publish()
		return
	}
	if m.api == nil {
		return
	}

	m.busy++
	epoch, name, ctx := m.epoch, m.target, m.ctx
	log.Printf("[monitor] %s requested for %q (machine %q)", kind.event(), name, machine)

	go func() {
		err := m.execute(ctx, kind, name, machine)
		m.enqueue(func() { m.applyMutation(epoch, kind, machine, err) })
	}()
	m.publish()
}

func (m *Monitor) execute(ctx context.Context, kind mutation, name string, machine studio.Machine) error {
	target, err := m.api.ResolveTarget(ctx, name)
	if err != nil {
		return err
	}
	switch kind {
	case mutationStart:
		return m.api.Start(ctx, target, machine)
	case mutationStop:
		return m.api.Stop(ctx, target)
	default:
		return m.api.SwitchMachine(ctx, target, machine)
	}
}

func (m *Monitor) applyMutation(epoch uint64, kind mutation, machine studio.Machine, err error) {
	if epoch != m.epoch {
		return
	}
	if m.busy > 0 {
		m.busy--
	}

	if err != nil {
		m.lastErr = fmt.Sprintf("%s: %v", kind.failure(), err)
		log.Printf("[monitor] %s", m.lastErr)
		m.publish()
		return
	}

	props := map[string]any{}
	if machine != "" {
		props["machine"] = string(machine)
	}
	m.telemetry.Track(kind.event(), props)

	m.startRefresh()
	m.publish()
}
