package tray

import (
	"fmt"
	"time"

	"github.com/watchfire-io/studiobar/internal/monitor"
	"github.com/watchfire-io/studiobar/internal/studio"
)

// view is what the menu shows for one snapshot.
type view struct {
	Tooltip string
	Active  bool

	Status  string
	Machine string
	Updated string
	Error   string

	StartLabel string
	CanStart   bool
	CanStop    bool
	CanSwitch  bool
	CanRefresh bool
}

func buildView(s monitor.Snapshot, defaultMachine studio.Machine, now time.Time) view {
	if !s.HasTarget() {
		return view{
			Tooltip:    "Studiobar: no studio selected",
			Status:     "No studio selected",
			Machine:    "Set studio.name in Settings",
			StartLabel: "Start",
			Error:      s.LastError,
		}
	}

	v := view{
		Tooltip: fmt.Sprintf("%s: %s", s.DisplayName, s.Status.Label()),
		Active:  s.Status == studio.StatusRunning,
		Status:  fmt.Sprintf("%s: %s", s.DisplayName, statusLabel(s)),
		Machine: "Machine: unknown",
		Updated: "Updated " + s.Age(now),
		Error:   s.LastError,
	}
	if s.Machine != "" {
		v.Machine = "Machine: " + machineLabel(s.Machine)
	}

	startOn := s.Machine
	if startOn == "" {
		startOn = defaultMachine
	}
	v.StartLabel = "Start"
	if startOn != "" {
		v.StartLabel = "Start on " + string(startOn)
	}

	v.CanStart = s.CanStart()
	v.CanStop = s.CanStop()
	v.CanSwitch = s.CanSwitch()
	v.CanRefresh = true
	return v
}

func statusLabel(s monitor.Snapshot) string {
	label := s.Status.Label()
	switch {
	case s.Busy:
		return label + " (working…)"
	case s.FastPolling && s.Status.Transient():
		return label + "…"
	default:
		return label
	}
}

// machineLabel marks accelerator machine types.
func machineLabel(m studio.Machine) string {
	if m.IsGPU() {
		return string(m) + " (GPU)"
	}
	return string(m)
}
