package monitor

import (
	"sync"
	"time"

	"github.com/docker/go-units"

	"github.com/watchfire-io/studiobar/internal/studio"
)

// Snapshot is a point-in-time copy of the observable monitor state.
type Snapshot struct {
	// Target is the studio name being monitored; empty when none is selected.
	Target string
	// DisplayName is the name reported by the API, falling back to Target.
	DisplayName string
	// TargetID is the opaque id from the most recent successful lookup.
	TargetID string

	Status    studio.Status
	Machine   studio.Machine
	LastError string

	// FastPolling is true while the studio is transient and the fast period
	// is shorter than the base one, i.e. while Interval is the fast period.
	FastPolling bool
	// Interval is the current poll period.
	Interval time.Duration

	// UpdatedAt is when a status was last applied.
	UpdatedAt time.Time
	// Refreshes counts applied refresh results, including failed ones.
	Refreshes uint64
	// Notifications counts transition notifications emitted.
	Notifications uint64
	// Busy is true while a start, stop or switch request is in flight.
	Busy bool
}

// HasTarget reports whether a studio is selected.
func (s Snapshot) HasTarget() bool {
	return s.Target != ""
}

// CanStart reports whether a start request makes sense now.
func (s Snapshot) CanStart() bool {
	return s.HasTarget() && !s.Busy &&
		(s.Status == studio.StatusStopped || s.Status == studio.StatusFailed)
}

// CanStop reports whether a stop request makes sense now.
func (s Snapshot) CanStop() bool {
	if !s.HasTarget() || s.Busy {
		return false
	}
	switch s.Status {
	case studio.StatusRunning, studio.StatusPending, studio.StatusInitializing:
		return true
	}
	return false
}

// CanSwitch reports whether the machine type can be changed now. Switching
// is refused while the studio is between states.
func (s Snapshot) CanSwitch() bool {
	return s.HasTarget() && !s.Busy &&
		(s.Status.Settled() || s.Status == studio.StatusFailed)
}

// Age describes how long ago a status was last applied, e.g.
// "5 seconds ago", or "never".
func (s Snapshot) Age(now time.Time) string {
	if s.UpdatedAt.IsZero() {
		return "never"
	}
	return units.HumanDuration(now.Sub(s.UpdatedAt)) + " ago"
}

// observers holds the published snapshot and its subscribers.
type observers struct {
	mu   sync.RWMutex
	snap Snapshot
	subs map[int]chan Snapshot
	next int
}

func (o *observers) init(s Snapshot) {
	o.snap = s
	o.subs = make(map[int]chan Snapshot)
}

func (o *observers) set(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snap = s
	for _, ch := range o.subs {
		offer(ch, s)
	}
}

// offer replaces whatever is buffered in ch with s.
func offer(ch chan Snapshot, s Snapshot) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

// Snapshot returns the latest published state.
func (m *Monitor) Snapshot() Snapshot {
	m.obs.mu.RLock()
	defer m.obs.mu.RUnlock()
	return m.obs.snap
}

// Subscribe returns a channel that always holds the latest snapshot, starting
// with the current one. Slow readers skip intermediate states. Call the
// returned function to unsubscribe.
func (m *Monitor) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	m.obs.mu.Lock()
	id := m.obs.next
	m.obs.next++
	m.obs.subs[id] = ch
	ch <- m.obs.snap
	m.obs.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.obs.mu.Lock()
			delete(m.obs.subs, id)
			m.obs.mu.Unlock()
		})
	}
}

// buildSnapshot builds a Snapshot from actor-owned fields. Only call it
// from the actor goroutine (or before Run starts).
func (m *Monitor) buildSnapshot() Snapshot {
	display := m.display
	if display == "" {
		display = m.target
	}
	return Snapshot{
		Target:        m.target,
		DisplayName:   display,
		TargetID:      m.targetID,
		Status:        m.status,
		Machine:       m.machine,
		LastError:     m.lastErr,
		FastPolling:   m.fastActive,
		Interval:      m.interval(),
		UpdatedAt:     m.updatedAt,
		Refreshes:     m.refreshes,
		Notifications: m.notifications,
		Busy:          m.busy > 0,
	}
}

func (m *Monitor) publish() {
	m.obs.set(m.buildSnapshot())
}
