package studio

import (
	"bytes"
	"strings"
)

// Instance phases as reported in inUse.phase. The API prefixes them
// (CLOUD_SPACE_INSTANCE_STATE_RUNNING), so they are matched by suffix.
const (
	phasePending  = "PENDING"
	phaseRunning  = "RUNNING"
	phaseStopping = "STOPPING"
	phaseFailed   = "FAILED"
)

// NormalizeStatus maps a raw status document onto Status.
//
// Precedence is fixed: a queued request wins over everything, then a
// missing instance means stopped, and only then is the instance phase
// consulted. A queued request must mask a stale phase reading.
func NormalizeStatus(doc CodeStatus) Status {
	if hasRequest(doc.Requested) {
		return StatusPending
	}
	if doc.InUse == nil {
		return StatusStopped
	}

	phase := strings.ToUpper(strings.TrimSpace(doc.InUse.Phase))
	switch {
	case phaseIs(phase, phasePending):
		return StatusPending
	case phaseIs(phase, phaseRunning):
		if doc.InUse.StartupStatus != nil && doc.InUse.StartupStatus.TopUpRestoreFinished {
			return StatusRunning
		}
		return StatusInitializing
	case phaseIs(phase, phaseStopping):
		return StatusStopping
	case phaseIs(phase, phaseFailed):
		return StatusFailed
	default:
		return StatusUnknown
	}
}

func phaseIs(phase, want string) bool {
	return phase == want || strings.HasSuffix(phase, "_"+want)
}

// hasRequest reports whether the raw requested field is present. Any
// non-null value counts, including an empty object: the API sends {}
// for a queued request whose details are not yet filled in.
func hasRequest(raw []byte) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", `""`:
		return false
	}
	return true
}
