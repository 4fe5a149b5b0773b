package models

import (
	"strings"
	"time"
)

// Polling defaults, in seconds.
const (
	DefaultRefreshSeconds     = 30
	DefaultFastRefreshSeconds = 5
	minRefreshSeconds         = 1
)

// Update check frequencies.
const (
	CheckEveryLaunch = "every_launch"
	CheckDaily       = "daily"
	CheckWeekly      = "weekly"
)

// APIConfig points the client at the control plane.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

// CredentialsConfig identifies the account. APIKey is only written here when
// the OS keychain is unavailable.
type CredentialsConfig struct {
	UserID      string `yaml:"user_id"`
	TeamspaceID string `yaml:"teamspace_id"`
	APIKey      string `yaml:"api_key,omitempty"`
}

// StudioConfig selects the monitored studio and the machine menu.
type StudioConfig struct {
	Name           string   `yaml:"name"`
	DefaultMachine string   `yaml:"default_machine"`
	MachineTypes   []string `yaml:"machine_types"`
}

// PollingConfig holds the two refresh cadences.
type PollingConfig struct {
	RefreshSeconds     int `yaml:"refresh_seconds"`
	FastRefreshSeconds int `yaml:"fast_refresh_seconds"`
}

// NotificationsConfig controls transition notifications.
type NotificationsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	NATSURL     string `yaml:"nats_url,omitempty"`
	NATSSubject string `yaml:"nats_subject,omitempty"`
}

// MetricsConfig enables the Prometheus listener when ListenAddr is set.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr,omitempty"`
}

// TelemetryConfig holds opt-in usage reporting settings.
type TelemetryConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKey    string `yaml:"api_key,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	InstallID string `yaml:"install_id,omitempty"`
}

// UpdatesConfig holds settings for update checking.
type UpdatesConfig struct {
	CheckOnStartup bool       `yaml:"check_on_startup"`
	CheckFrequency string     `yaml:"check_frequency"` // "every_launch" | "daily" | "weekly"
	LastChecked    *time.Time `yaml:"last_checked,omitempty"`
}

// Settings represents application settings.
// This corresponds to ~/.studiobar/settings.yaml.
type Settings struct {
	Version       int                 `yaml:"version"`
	API           APIConfig           `yaml:"api"`
	Credentials   CredentialsConfig   `yaml:"credentials"`
	Studio        StudioConfig        `yaml:"studio"`
	Polling       PollingConfig       `yaml:"polling"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	Updates       UpdatesConfig       `yaml:"updates"`
}

// DefaultMachineTypes seeds the machine menu.
var DefaultMachineTypes = []string{
	"cpu-4",
	"lit-t4-1",
	"lit-l4-1",
	"lit-a10g-1",
	"lit-a100-1",
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Studio: StudioConfig{
			DefaultMachine: "cpu-4",
			MachineTypes:   append([]string(nil), DefaultMachineTypes...),
		},
		Polling: PollingConfig{
			RefreshSeconds:     DefaultRefreshSeconds,
			FastRefreshSeconds: DefaultFastRefreshSeconds,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
		},
		Updates: UpdatesConfig{
			CheckOnStartup: true,
			CheckFrequency: CheckDaily,
		},
	}
}

// Normalize fills missing values with defaults and clamps the polling
// periods to at least one second.
func (s *Settings) Normalize() {
	if s.Version == 0 {
		s.Version = 1
	}
	s.API.BaseURL = strings.TrimSpace(s.API.BaseURL)
	s.Credentials.UserID = strings.TrimSpace(s.Credentials.UserID)
	s.Credentials.TeamspaceID = strings.TrimSpace(s.Credentials.TeamspaceID)
	s.Studio.Name = strings.TrimSpace(s.Studio.Name)

	if s.Polling.RefreshSeconds == 0 {
		s.Polling.RefreshSeconds = DefaultRefreshSeconds
	}
	if s.Polling.FastRefreshSeconds == 0 {
		s.Polling.FastRefreshSeconds = DefaultFastRefreshSeconds
	}
	s.Polling.RefreshSeconds = max(s.Polling.RefreshSeconds, minRefreshSeconds)
	s.Polling.FastRefreshSeconds = max(s.Polling.FastRefreshSeconds, minRefreshSeconds)

	if len(s.Studio.MachineTypes) == 0 {
		s.Studio.MachineTypes = append([]string(nil), DefaultMachineTypes...)
	}
	if s.Studio.DefaultMachine == "" {
		s.Studio.DefaultMachine = s.Studio.MachineTypes[0]
	}

	switch s.Updates.CheckFrequency {
	case CheckEveryLaunch, CheckDaily, CheckWeekly:
	default:
		s.Updates.CheckFrequency = CheckDaily
	}
}

// RefreshPeriod is the base poll interval.
func (p PollingConfig) RefreshPeriod() time.Duration {
	return time.Duration(p.RefreshSeconds) * time.Second
}

// FastRefreshPeriod is the poll interval while the studio is transient.
func (p PollingConfig) FastRefreshPeriod() time.Duration {
	return time.Duration(p.FastRefreshSeconds) * time.Second
}
