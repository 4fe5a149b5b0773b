package app

import (
	"log"
	"slices"
	"time"

	"github.com/watchfire-io/studiobar/internal/config"
	"github.com/watchfire-io/studiobar/internal/models"
	"github.com/watchfire-io/studiobar/internal/studio"
	"github.com/watchfire-io/studiobar/internal/watcher"
)

// studioControl is the part of the monitor settings changes are pushed to.
type studioControl interface {
	SelectTarget(name string)
	UpdateRefreshPeriod(d time.Duration)
	UpdateFastRefreshPeriod(d time.Duration)
	SetDefaultMachine(machine studio.Machine)
}

// watchSettings reloads settings.yaml whenever it changes on disk.
func (a *App) watchSettings() error {
	path, err := config.SettingsFile()
	if err != nil {
		return err
	}
	if err := config.EnsureGlobalDir(); err != nil {
		return err
	}
	w, err := watcher.New(path, a.reload)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return err
	}
	a.watcher = w
	return nil
}

// reload reads settings from disk and applies what changed.
func (a *App) reload() {
	next, err := a.loadSettings()
	if err != nil {
		log.Printf("[app] Failed to reload settings, keeping current: %v", err)
		return
	}
	a.apply(next)
}

// apply makes next the current settings and pushes every difference to the
// client, monitor, notifier and menu.
func (a *App) apply(next *models.Settings) {
	a.mu.Lock()
	prev := a.settings
	a.settings = next
	a.mu.Unlock()

	if prev.API.BaseURL != next.API.BaseURL {
		log.Printf("[app] api.base_url changed; restart to use %q", next.API.BaseURL)
	}

	credsChanged := false
	if creds, err := a.credentials(next); err != nil {
		log.Printf("[app] Failed to reload API key: %v", err)
	} else if creds != a.client.Credentials() {
		a.client.SetCredentials(creds)
		credsChanged = true
		log.Println("[app] Credentials updated")
	}

	// Selecting the current studio again only forces a poll.
	if credsChanged || prev.Studio.Name != next.Studio.Name {
		a.control.SelectTarget(next.Studio.Name)
	}

	if prev.Polling.RefreshSeconds != next.Polling.RefreshSeconds {
		a.control.UpdateRefreshPeriod(next.Polling.RefreshPeriod())
	}
	if prev.Polling.FastRefreshSeconds != next.Polling.FastRefreshSeconds {
		a.control.UpdateFastRefreshPeriod(next.Polling.FastRefreshPeriod())
	}

	if prev.Studio.DefaultMachine != next.Studio.DefaultMachine {
		a.control.SetDefaultMachine(studio.Machine(next.Studio.DefaultMachine))
	}
	if prev.Studio.DefaultMachine != next.Studio.DefaultMachine ||
		!slices.Equal(prev.Studio.MachineTypes, next.Studio.MachineTypes) {
		a.setMachineTypes(machineTypes(next), studio.Machine(next.Studio.DefaultMachine))
	}

	a.notifier.configure(next.Notifications)
}
