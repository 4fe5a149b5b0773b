package app

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/watchfire-io/studiobar/internal/models"
	"github.com/watchfire-io/studiobar/internal/notify"
	"github.com/watchfire-io/studiobar/internal/studio"
	"github.com/watchfire-io/studiobar/internal/updater"
)

type fakeControl struct {
	selected []string
	base     []time.Duration
	fast     []time.Duration
	defaults []studio.Machine
}

func (f *fakeControl) SelectTarget(name string) { f.selected = append(f.selected, name) }
func (f *fakeControl) UpdateRefreshPeriod(d time.Duration) { f.base = append(f.base, d) }
func (f *fakeControl) UpdateFastRefreshPeriod(d time.Duration) { f.fast = append(f.fast, d) }
func (f *fakeControl) SetDefaultMachine(machine studio.Machine) { f.defaults = append(f.defaults, machine) }

type fakeNATS struct {
	url    string
	sent   int
	closed bool
}

func (f *fakeNATS) Notify(title, body string) error {
	f.sent++
	return nil
}

func (f *fakeNATS) Close() { f.closed = true }

type dialRecorder struct {
	mu    sync.Mutex
	conns []*fakeNATS
	err   error
}

func (d *dialRecorder) dial(url, subject string) (natsSink, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	conn := &fakeNATS{url: url}
	d.conns = append(d.conns, conn)
	return conn, nil
}

func baseSettings() *models.Settings {
	s := models.NewSettings()
	s.Credentials.UserID = "user-1"
	s.Credentials.TeamspaceID = "team-1"
	s.Studio.Name = "my-studio"
	s.Normalize()
	return s
}

type testApp struct {
	*App
	control  *fakeControl
	dialer   *dialRecorder
	menus    [][]studio.Machine
	saved    []*models.Settings
	apiKey   string
	updateTo string
}

func newTestApp(t *testing.T, settings *models.Settings) *testApp {
	t.Helper()
	ta := &testApp{control: &fakeControl{}, dialer: &dialRecorder{}, apiKey: "key-1"}
	a := &App{
		settings: settings,
		control:  ta.control,
		now:      func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		loadAPIKey: func(*models.Settings) (string, error) {
			return ta.apiKey, nil
		},
		saveSettings: func(s *models.Settings) error {
			copied := *s
			ta.saved = append(ta.saved, &copied)
			return nil
		},
		loadSettings: func() (*models.Settings, error) {
			s := *settings
			return &s, nil
		},
		setMachineTypes: func(types []studio.Machine, _ studio.Machine) {
			ta.menus = append(ta.menus, types)
		},
		setUpdate: func(version, url string) { ta.updateTo = version },
	}
	creds, err := a.credentials(settings)
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	a.client = studio.NewClient(studio.Config{Credentials: creds})
	a.notifier = newNotifier(notify.Discard, ta.dialer.dial)
	a.notifier.configure(settings.Notifications)
	ta.App = a
	return ta
}

func TestApply(t *testing.T) {
	tests := []struct {
		name         string
		edit         func(s *models.Settings)
		apiKey       string
		wantSelected []string
		wantBase     int
		wantFast     int
		wantDefaults int
		wantMenus    int
	}{
		{
			name: "No changes",
			edit: func(s *models.Settings) {},
		},
		{
			name:         "Studio renamed",
			edit:         func(s *models.Settings) { s.Studio.Name = "other" },
			wantSelected: []string{"other"},
		},
		{
			name:         "Studio cleared",
			edit:         func(s *models.Settings) { s.Studio.Name = "" },
			wantSelected: []string{""},
		},
		{
			name:         "Rotated API key",
			edit:         func(s *models.Settings) {},
			apiKey:       "key-2",
			wantSelected: []string{"my-studio"},
		},
		{
			name: "Polling periods",
			edit: func(s *models.Settings) {
				s.Polling.RefreshSeconds = 60
				s.Polling.FastRefreshSeconds = 2
			},
			wantBase: 1,
			wantFast: 1,
		},
		{
			name:         "Default machine",
			edit:         func(s *models.Settings) { s.Studio.DefaultMachine = "lit-t4-1" },
			wantDefaults: 1,
			wantMenus:    1,
		},
		{
			name:      "Machine types",
			edit:      func(s *models.Settings) { s.Studio.MachineTypes = []string{"cpu-4", "lit-h100-8"} },
			wantMenus: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, baseSettings())
			if tt.apiKey != "" {
				ta.apiKey = tt.apiKey
			}

			next := baseSettings()
			tt.edit(next)
			ta.apply(next)

			if !slices.Equal(ta.control.selected, tt.wantSelected) {
				t.Errorf("selected = %v, want %v", ta.control.selected, tt.wantSelected)
			}
			if len(ta.control.base) != tt.wantBase {
				t.Errorf("base updates = %v, want %d", ta.control.base, tt.wantBase)
			}
			if len(ta.control.fast) != tt.wantFast {
				t.Errorf("fast updates = %v, want %d", ta.control.fast, tt.wantFast)
			}
			if len(ta.control.defaults) != tt.wantDefaults {
				t.Errorf("default machine updates = %v, want %d", ta.control.defaults, tt.wantDefaults)
			}
			if len(ta.menus) != tt.wantMenus {
				t.Errorf("menu updates = %d, want %d", len(ta.menus), tt.wantMenus)
			}
			if got := ta.Settings(); got.Studio.Name != next.Studio.Name {
				t.Errorf("current studio = %q, want %q", got.Studio.Name, next.Studio.Name)
			}
		})
	}
}

func TestApplyPeriods(t *testing.T) {
	ta := newTestApp(t, baseSettings())
	next := baseSettings()
	next.Polling.RefreshSeconds = 60
	next.Polling.FastRefreshSeconds = 2
	ta.apply(next)

	if ta.control.base[0] != time.Minute {
		t.Errorf("base = %v, want 1m", ta.control.base[0])
	}
	if ta.control.fast[0] != 2*time.Second {
		t.Errorf("fast = %v, want 2s", ta.control.fast[0])
	}
}

func TestApplyCredentials(t *testing.T) {
	ta := newTestApp(t, baseSettings())
	ta.apiKey = "key-2"
	next := baseSettings()
	next.Credentials.TeamspaceID = "team-2"
	ta.apply(next)

	want := studio.Credentials{UserID: "user-1", APIKey: "key-2", TeamspaceID: "team-2"}
	if got := ta.client.Credentials(); got != want {
		t.Errorf("credentials = %+v, want %+v", got, want)
	}
}

func TestApplyKeyringFailure(t *testing.T) {
	ta := newTestApp(t, baseSettings())
	ta.loadAPIKey = func(*models.Settings) (string, error) {
		return "", errors.New("keychain locked")
	}
	ta.apply(baseSettings())

	if got := ta.client.Credentials().APIKey; got != "key-1" {
		t.Errorf("API key = %q, want previous key kept", got)
	}
	if len(ta.control.selected) != 0 {
		t.Errorf("selected = %v, want none", ta.control.selected)
	}
}

func TestNotifierToggle(t *testing.T) {
	var sent int
	desktop := notify.SinkFunc(func(title, body string) error {
		sent++
		return nil
	})
	n := newNotifier(desktop, (&dialRecorder{}).dial)

	n.configure(models.NotificationsConfig{Enabled: false})
	if err := n.Notify("studio", "Running"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d while disabled, want 0", sent)
	}

	n.configure(models.NotificationsConfig{Enabled: true})
	if err := n.Notify("studio", "Running"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
}

func TestNotifierNATS(t *testing.T) {
	d := &dialRecorder{}
	n := newNotifier(notify.Discard, d.dial)

	cfg := models.NotificationsConfig{Enabled: true, NATSURL: "nats://a:4222"}
	n.configure(cfg)
	n.configure(cfg)
	if len(d.conns) != 1 {
		t.Fatalf("dials = %d, want 1", len(d.conns))
	}

	if err := n.Notify("studio", "Stopped"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if d.conns[0].sent != 1 {
		t.Errorf("NATS sent = %d, want 1", d.conns[0].sent)
	}

	cfg.NATSURL = "nats://b:4222"
	n.configure(cfg)
	if !d.conns[0].closed {
		t.Error("old connection not closed")
	}
	if len(d.conns) != 2 || d.conns[1].url != "nats://b:4222" {
		t.Fatalf("conns = %+v", d.conns)
	}

	cfg.NATSURL = ""
	n.configure(cfg)
	if !d.conns[1].closed {
		t.Error("connection not closed after URL cleared")
	}

	n.close()
}

func TestNotifierDialFailure(t *testing.T) {
	d := &dialRecorder{err: errors.New("connection refused")}
	var sent int
	n := newNotifier(notify.SinkFunc(func(string, string) error {
		sent++
		return nil
	}), d.dial)

	cfg := models.NotificationsConfig{Enabled: true, NATSURL: "nats://down:4222"}
	n.configure(cfg)
	if err := n.Notify("studio", "Running"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if sent != 1 {
		t.Errorf("desktop sent = %d, want 1", sent)
	}

	// The server comes up; reloading the same settings connects.
	d.mu.Lock()
	d.err = nil
	d.mu.Unlock()
	n.configure(cfg)
	if len(d.conns) != 1 || d.conns[0].url != "nats://down:4222" {
		t.Fatalf("conns = %+v, want one redial", d.conns)
	}
	if err := n.Notify("studio", "Stopped"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if d.conns[0].sent != 1 {
		t.Errorf("NATS sent = %d, want 1", d.conns[0].sent)
	}

	n.configure(cfg)
	if len(d.conns) != 1 {
		t.Errorf("dials = %d after a connected reload, want 1", len(d.conns))
	}
}

func TestRunUpdateCheck(t *testing.T) {
	ta := newTestApp(t, baseSettings())
	ta.checkForUpdate = func(context.Context) (*updater.UpdateResult, error) {
		return &updater.UpdateResult{
			Available:      true,
			CurrentVersion: "0.1.0",
			LatestVersion:  "0.2.0",
			ReleaseURL:     "https://example.com/releases/v0.2.0",
		}, nil
	}

	ta.runUpdateCheck(context.Background())

	if ta.updateTo != "0.2.0" {
		t.Errorf("update shown = %q, want 0.2.0", ta.updateTo)
	}
	if len(ta.saved) != 1 || ta.saved[0].Updates.LastChecked == nil {
		t.Fatalf("saved = %+v, want last_checked recorded", ta.saved)
	}
	if !ta.saved[0].Updates.LastChecked.Equal(ta.now()) {
		t.Errorf("last_checked = %v, want %v", ta.saved[0].Updates.LastChecked, ta.now())
	}
}

func TestRunUpdateCheckSkipped(t *testing.T) {
	tests := []struct {
		name string
		edit func(s *models.Settings, now time.Time)
	}{
		{"Disabled", func(s *models.Settings, _ time.Time) { s.Updates.CheckOnStartup = false }},
		{"Checked recently", func(s *models.Settings, now time.Time) {
			last := now.Add(-time.Hour)
			s.Updates.LastChecked = &last
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := baseSettings()
			ta := newTestApp(t, settings)
			tt.edit(settings, ta.now())

			called := false
			ta.checkForUpdate = func(context.Context) (*updater.UpdateResult, error) {
				called = true
				return &updater.UpdateResult{}, nil
			}
			ta.runUpdateCheck(context.Background())
			if called {
				t.Error("update check ran")
			}
		})
	}
}

func TestRunUpdateCheckFailure(t *testing.T) {
	ta := newTestApp(t, baseSettings())
	ta.checkForUpdate = func(context.Context) (*updater.UpdateResult, error) {
		return nil, errors.New("rate limited")
	}
	ta.runUpdateCheck(context.Background())

	if len(ta.saved) != 0 {
		t.Errorf("saved = %d, want 0", len(ta.saved))
	}
	if ta.updateTo != "" {
		t.Errorf("update shown = %q", ta.updateTo)
	}
}

func TestEnsureInstallID(t *testing.T) {
	settings := baseSettings()
	ta := newTestApp(t, settings)

	if err := ta.ensureInstallID(settings); err != nil {
		t.Fatalf("ensureInstallID: %v", err)
	}
	if settings.Telemetry.InstallID != "" || len(ta.saved) != 0 {
		t.Fatal("install id assigned while telemetry is off")
	}

	settings.Telemetry.Enabled = true
	if err := ta.ensureInstallID(settings); err != nil {
		t.Fatalf("ensureInstallID: %v", err)
	}
	id := settings.Telemetry.InstallID
	if id == "" || len(ta.saved) != 1 {
		t.Fatalf("install id = %q, saves = %d", id, len(ta.saved))
	}

	if err := ta.ensureInstallID(settings); err != nil {
		t.Fatalf("ensureInstallID: %v", err)
	}
	if settings.Telemetry.InstallID != id || len(ta.saved) != 1 {
		t.Error("install id regenerated")
	}
}

func TestHostActions(t *testing.T) {
	ta := newTestApp(t, baseSettings())
	var opened []string
	ta.open = func(target string) error {
		opened = append(opened, target)
		return nil
	}
	shutdown := false
	ta.shutdown = func() { shutdown = true }

	ta.OpenURL("https://example.com/releases/v0.2.0")
	ta.RequestShutdown()

	if len(opened) != 1 || opened[0] != "https://example.com/releases/v0.2.0" {
		t.Errorf("opened = %v", opened)
	}
	if !shutdown {
		t.Error("shutdown not requested")
	}
}

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs int
	}{
		{"darwin", "open", 1},
		{"linux", "xdg-open", 1},
		{"freebsd", "xdg-open", 1},
		{"windows", "rundll32", 2},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := openCommand(tt.goos, "https://example.com")
			if name != tt.wantName || len(args) != tt.wantArgs {
				t.Errorf("openCommand = %s %v", name, args)
			}
			if args[len(args)-1] != "https://example.com" {
				t.Errorf("target not last: %v", args)
			}
		})
	}
}
