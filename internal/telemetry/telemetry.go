// Package telemetry sends opt-in anonymous usage events to PostHog.
package telemetry

import (
	"fmt"
	"log"
	"runtime"

	"github.com/posthog/posthog-go"

	"github.com/watchfire-io/studiobar/internal/buildinfo"
)

// Event names.
const (
	EventLaunch        = "app_launched"
	EventStart         = "studio_start"
	EventStop          = "studio_stop"
	EventSwitchMachine = "studio_switch_machine"
	EventTransition    = "studio_transition"
)

// DefaultEndpoint is used when Config.Endpoint is empty.
const DefaultEndpoint = "https://us.i.posthog.com"

// Config controls telemetry.
type Config struct {
	Enabled   bool
	APIKey    string
	Endpoint  string
	InstallID string
}

type enqueuer interface {
	Enqueue(posthog.Message) error
	Close() error
}

// Tracker records usage events. A nil *Tracker drops everything.
type Tracker struct {
	client     enqueuer
	distinctID string
}

// New returns a Tracker, or nil when telemetry is disabled or unconfigured.
func New(cfg Config) (*Tracker, error) {
	if !cfg.Enabled || cfg.APIKey == "" || cfg.InstallID == "" {
		return nil, nil
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		return nil, fmt.Errorf("create posthog client: %w", err)
	}
	return &Tracker{client: client, distinctID: cfg.InstallID}, nil
}

// Track enqueues an event with optional properties.
func (t *Tracker) Track(event string, props map[string]any) {
	if t == nil {
		return
	}
	properties := posthog.NewProperties().
		Set("version", buildinfo.Version).
		Set("os", runtime.GOOS).
		Set("arch", runtime.GOARCH)
	for k, v := range props {
		properties.Set(k, v)
	}
	err := t.client.Enqueue(posthog.Capture{
		DistinctId: t.distinctID,
		Event:      event,
		Properties: properties,
	})
	if err != nil {
		log.Printf("[telemetry] Failed to enqueue %s: %v", event, err)
	}
}

// Close flushes pending events.
func (t *Tracker) Close() {
	if t == nil {
		return
	}
	if err := t.client.Close(); err != nil {
		log.Printf("[telemetry] Close failed: %v", err)
	}
}
