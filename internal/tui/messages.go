package tui

import (
	"time"

	"github.com/watchfire-io/studiobar/internal/monitor"
)

// SnapshotMsg carries a new monitor state.
type SnapshotMsg struct {
	Snapshot monitor.Snapshot
}

// ageTickMsg re-renders relative times.
type ageTickMsg time.Time
