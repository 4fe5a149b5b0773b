package models

import "time"

// InstanceInfo describes the running tray app.
// This corresponds to ~/.studiobar/instance.yaml.
type InstanceInfo struct {
	Version    int       `yaml:"version"`
	PID        int       `yaml:"pid"`
	StartedAt  time.Time `yaml:"started_at"`
	AppVersion string    `yaml:"app_version"`
	Metrics    string    `yaml:"metrics,omitempty"`
}

// NewInstanceInfo creates instance info with current values.
func NewInstanceInfo(pid int, appVersion, metricsAddr string) *InstanceInfo {
	return &InstanceInfo{
		Version:    1,
		PID:        pid,
		StartedAt:  time.Now().UTC(),
		AppVersion: appVersion,
		Metrics:    metricsAddr,
	}
}
