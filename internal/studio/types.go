// Package studio is the client for the studio control-plane REST API.
//
// It performs authenticated calls against the teamspace-scoped cloudspace
// endpoints and translates their JSON documents into the small, stable
// Status and Machine types the rest of the app works with.
package studio

import (
	"encoding/json"
	"strings"
)

// Status is the normalized run state of a studio.
type Status string

// Studio states. NormalizeStatus is the only producer.
const (
	StatusPending      Status = "PENDING"
	StatusInitializing Status = "INITIALIZING"
	StatusRunning      Status = "RUNNING"
	StatusStopping     Status = "STOPPING"
	StatusStopped      Status = "STOPPED"
	StatusFailed       Status = "FAILED"
	StatusUnknown      Status = "UNKNOWN"
)

// Settled reports whether the studio is at rest (running or stopped).
func (s Status) Settled() bool {
	return s == StatusRunning || s == StatusStopped
}

// Transient reports whether the studio is between settled states.
// Unknown and failed count as transient so they are polled quickly.
func (s Status) Transient() bool {
	return !s.Settled()
}

// Label returns a human-readable form of the status for menus and CLI output.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInitializing:
		return "Initializing"
	case StatusRunning:
		return "Running"
	case StatusStopping:
		return "Stopping"
	case StatusStopped:
		return "Stopped"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Machine is the compute type assigned to a studio, e.g. "cpu-4" or "lit-a10g-1".
// It is opaque apart from the substring checks below.
type Machine string

// gpuFragments are substrings that identify accelerator machine classes.
var gpuFragments = []string{"gpu", "t4", "l4", "a10g", "a100", "h100", "h200", "l40s"}

// IsGPU reports whether the machine name looks like an accelerator class.
func (m Machine) IsGPU() bool {
	name := strings.ToLower(string(m))
	if strings.HasPrefix(name, "cpu") {
		return false
	}
	for _, frag := range gpuFragments {
		if strings.Contains(name, frag) {
			return true
		}
	}
	return false
}

// Target identifies one studio. ID is opaque and only valid for the
// teamspace it was resolved in.
type Target struct {
	ID   string
	Name string
}

// Credentials authenticate API calls. All three fields are required.
type Credentials struct {
	UserID      string
	APIKey      string
	TeamspaceID string
}

// Validate returns ErrAuth if any field is empty.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.UserID) == "" ||
		strings.TrimSpace(c.APIKey) == "" ||
		strings.TrimSpace(c.TeamspaceID) == "" {
		return ErrAuth
	}
	return nil
}

// ============================================================================
// Wire types
// ============================================================================

// cloudspaceList is the response of the cloudspace listing endpoint.
type cloudspaceList struct {
	Cloudspaces []cloudspace `json:"cloudspaces"`
}

type cloudspace struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// CodeStatus is the raw status document of a studio.
type CodeStatus struct {
	// Requested is set while a change request is queued but not yet applied.
	// Kept raw so that null can be told apart from an empty object.
	Requested json.RawMessage `json:"requested,omitempty"`
	InUse     *InstanceState  `json:"inUse,omitempty"`
}

// InstanceState describes the active instance behind a studio.
type InstanceState struct {
	Phase         string         `json:"phase"`
	StartupStatus *StartupStatus `json:"startupStatus,omitempty"`
}

// StartupStatus reports progress of an instance that is already up.
type StartupStatus struct {
	TopUpRestoreFinished bool `json:"topUpRestoreFinished"`
}

type codeConfig struct {
	ComputeConfig *computeConfig `json:"computeConfig,omitempty"`
}

type computeConfig struct {
	Name string `json:"name"`
	Spot bool   `json:"spot"`
}

// errorBody is the error payload returned with non-2xx responses.
type errorBody struct {
	Message string `json:"message"`
}
