// Package app wires the studio monitor to the tray, settings file and
// background services of the menu-bar process.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/watchfire-io/studiobar/internal/config"
	"github.com/watchfire-io/studiobar/internal/metrics"
	"github.com/watchfire-io/studiobar/internal/models"
	"github.com/watchfire-io/studiobar/internal/monitor"
	"github.com/watchfire-io/studiobar/internal/notify"
	"github.com/watchfire-io/studiobar/internal/studio"
	"github.com/watchfire-io/studiobar/internal/telemetry"
	"github.com/watchfire-io/studiobar/internal/tray"
	"github.com/watchfire-io/studiobar/internal/updater"
	"github.com/watchfire-io/studiobar/internal/watcher"
)

// App is the running menu-bar process.
type App struct {
	client   *studio.Client
	monitor  *monitor.Monitor
	metrics  *metrics.Metrics
	tracker  *telemetry.Tracker
	notifier *notifier
	watcher  *watcher.Watcher

	// control is the monitor as seen by settings reloads.
	control studioControl

	mu       sync.Mutex
	settings *models.Settings

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Swappable for tests.
	now             func() time.Time
	loadSettings    func() (*models.Settings, error)
	saveSettings    func(*models.Settings) error
	loadAPIKey      func(*models.Settings) (string, error)
	checkForUpdate  func(context.Context) (*updater.UpdateResult, error)
	setMachineTypes func([]studio.Machine, studio.Machine)
	setUpdate       func(version, url string)
	open            func(target string) error
	shutdown        func()
}

// New builds the app from loaded settings. Nothing runs until Start.
func New(settings *models.Settings) *App {
	a := &App{
		metrics:         metrics.New(),
		settings:        settings,
		now:             time.Now,
		loadSettings:    config.LoadSettings,
		saveSettings:    config.SaveSettings,
		loadAPIKey:      config.LoadAPIKey,
		checkForUpdate:  updater.CheckForUpdate,
		setMachineTypes: tray.SetMachineTypes,
		setUpdate:       tray.SetUpdateAvailable,
		open:            openPath,
		shutdown:        interruptSelf,
	}

	creds, err := a.credentials(settings)
	if err != nil {
		// Missing credentials surface as auth errors in the menu.
		log.Printf("[app] Failed to load API key: %v", err)
	}
	a.client = studio.NewClient(studio.Config{
		BaseURL:     settings.API.BaseURL,
		Credentials: creds,
		Observer:    a.metrics,
	})

	a.notifier = newNotifier(notify.Desktop{}, dialNATS)
	a.notifier.configure(settings.Notifications)

	if err := a.ensureInstallID(settings); err != nil {
		log.Printf("[app] Failed to save install id: %v", err)
	}
	a.tracker, err = telemetry.New(telemetry.Config{
		Enabled:   settings.Telemetry.Enabled,
		APIKey:    settings.Telemetry.APIKey,
		Endpoint:  settings.Telemetry.Endpoint,
		InstallID: settings.Telemetry.InstallID,
	})
	if err != nil {
		log.Printf("[app] Telemetry disabled: %v", err)
	}

	a.monitor = monitor.New(monitor.Options{
		API:               a.client,
		Notifier:          a.notifier,
		RefreshPeriod:     settings.Polling.RefreshPeriod(),
		FastRefreshPeriod: settings.Polling.FastRefreshPeriod(),
		DefaultMachine:    studio.Machine(settings.Studio.DefaultMachine),
		Metrics:           a.metrics,
		Telemetry:         a.tracker,
	})
	a.control = a.monitor
	return a
}

// Monitor returns the studio monitor driven by the tray.
func (a *App) Monitor() *monitor.Monitor {
	return a.monitor
}

// Metrics returns the app's metric set.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Settings returns a copy of the settings currently applied.
func (a *App) Settings() models.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *a.settings
}

// Start runs the monitor and background services until Stop is called or
// ctx is done.
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	settings := a.Settings()

	a.spawn(func() { a.monitor.Run(ctx) })
	a.setMachineTypes(machineTypes(&settings), studio.Machine(settings.Studio.DefaultMachine))
	a.monitor.SelectTarget(settings.Studio.Name)

	if addr := settings.Metrics.ListenAddr; addr != "" {
		a.spawn(func() {
			if err := a.metrics.Serve(ctx, addr); err != nil {
				log.Printf("[metrics] Server error: %v", err)
			}
		})
	}

	if err := a.watchSettings(); err != nil {
		log.Printf("[app] Settings changes will not be picked up: %v", err)
	}

	a.spawn(func() { a.runUpdateCheck(ctx) })
	a.tracker.Track(telemetry.EventLaunch, map[string]any{
		"has_studio": settings.Studio.Name != "",
	})

	log.Printf("[app] Started (PID %d)", os.Getpid())
}

// Stop shuts everything down and waits for background goroutines.
func (a *App) Stop() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	a.notifier.close()
	a.tracker.Close()
	log.Println("[app] Stopped")
}

func (a *App) spawn(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// ============================================================================
// tray.Host
// ============================================================================

// OpenSettings opens settings.yaml in the default editor.
func (a *App) OpenSettings() {
	path, err := config.SettingsFile()
	if err != nil {
		log.Printf("[app] Failed to locate settings: %v", err)
		return
	}
	if !config.FileExists(path) {
		settings := a.Settings()
		if err := a.saveSettings(&settings); err != nil {
			log.Printf("[app] Failed to write settings: %v", err)
			return
		}
	}
	if err := a.open(path); err != nil {
		log.Printf("[app] Failed to open settings: %v", err)
	}
}

// OpenURL opens url in the default browser.
func (a *App) OpenURL(url string) {
	if err := a.open(url); err != nil {
		log.Printf("[app] Failed to open %s: %v", url, err)
	}
}

// RequestShutdown asks the process to exit through its signal handler.
func (a *App) RequestShutdown() {
	a.shutdown()
}

// interruptSelf sends SIGINT to the current process.
func interruptSelf() {
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		return
	}
	_ = p.Signal(syscall.SIGINT)
}

// ============================================================================
// Helpers
// ============================================================================

func (a *App) credentials(settings *models.Settings) (studio.Credentials, error) {
	key, err := a.loadAPIKey(settings)
	creds := studio.Credentials{
		UserID:      settings.Credentials.UserID,
		APIKey:      key,
		TeamspaceID: settings.Credentials.TeamspaceID,
	}
	if err != nil {
		return creds, fmt.Errorf("load API key: %w", err)
	}
	return creds, nil
}

// ensureInstallID assigns an anonymous id the first time telemetry is on.
func (a *App) ensureInstallID(settings *models.Settings) error {
	if !settings.Telemetry.Enabled || settings.Telemetry.InstallID != "" {
		return nil
	}
	settings.Telemetry.InstallID = uuid.NewString()
	return a.saveSettings(settings)
}

func machineTypes(settings *models.Settings) []studio.Machine {
	out := make([]studio.Machine, 0, len(settings.Studio.MachineTypes))
	for _, m := range settings.Studio.MachineTypes {
		out = append(out, studio.Machine(m))
	}
	return out
}
