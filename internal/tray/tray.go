package tray

import (
	_ "embed"
	"log"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/getlantern/systray"

	"github.com/watchfire-io/studiobar/internal/monitor"
	"github.com/watchfire-io/studiobar/internal/studio"
)

const (
	maxMachineSlots = 12

	// ageRefresh re-renders the "Updated N ago" line between snapshots.
	ageRefresh = 15 * time.Second
)

var (
	//go:embed icon_idle.png
	iconIdle []byte
	//go:embed icon_active.png
	iconActive []byte
)

var (
	ctrl    Controller
	host    Host
	onStart func()
	onExit  func()

	statusItem   *systray.MenuItem
	machineItem  *systray.MenuItem
	updatedItem  *systray.MenuItem
	errorItem    *systray.MenuItem
	startItem    *systray.MenuItem
	stopItem     *systray.MenuItem
	switchMenu   *systray.MenuItem
	refreshItem  *systray.MenuItem
	settingsItem *systray.MenuItem
	updateItem   *systray.MenuItem
	quitItem     *systray.MenuItem

	// Pre-allocated machine submenu slots
	machineSlots [maxMachineSlots]*systray.MenuItem

	mu             sync.Mutex
	current        monitor.Snapshot
	machines       []studio.Machine
	defaultMachine studio.Machine
	updateURL      string
	ready          bool

	// renderMu serializes menu updates.
	renderMu   sync.Mutex
	activeIcon bool
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready (start the monitor here).
// onExitFn is called when the tray exits (cleanup here).
func Run(c Controller, h Host, onStartFn, onExitFn func()) {
	ctrl = c
	host = h
	onStart = onStartFn
	onExit = onExitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

// SetMachineTypes replaces the machine submenu entries and the fallback
// machine shown on the Start item.
func SetMachineTypes(types []studio.Machine, fallback studio.Machine) {
	mu.Lock()
	if len(types) > maxMachineSlots {
		log.Printf("[tray] %d machine types configured, showing the first %d", len(types), maxMachineSlots)
		types = types[:maxMachineSlots]
	}
	machines = append([]studio.Machine(nil), types...)
	defaultMachine = fallback
	mu.Unlock()
	render()
}

// SetUpdateAvailable shows the update item linking to url.
func SetUpdateAvailable(version, url string) {
	mu.Lock()
	updateURL = url
	isReady := ready
	mu.Unlock()
	if isReady {
		updateItem.SetTitle("Update available: v" + version)
		updateItem.Show()
	}
}

func onReady() {
	systray.SetTemplateIcon(iconIdle, iconIdle)
	systray.SetTooltip("Studiobar")

	statusItem = systray.AddMenuItem("Starting...", "")
	statusItem.Disable()
	machineItem = systray.AddMenuItem("", "")
	machineItem.Disable()
	updatedItem = systray.AddMenuItem("", "")
	updatedItem.Disable()
	errorItem = systray.AddMenuItem("", "")
	errorItem.Disable()
	errorItem.Hide()

	systray.AddSeparator()

	startItem = systray.AddMenuItem("Start", "Start the studio")
	stopItem = systray.AddMenuItem("Stop", "Stop the studio")
	switchMenu = systray.AddMenuItem("Machine Type", "Change the studio's machine type")
	for i := 0; i < maxMachineSlots; i++ {
		machineSlots[i] = switchMenu.AddSubMenuItemCheckbox("", "", false)
		machineSlots[i].Hide()
	}
	refreshItem = systray.AddMenuItem("Refresh", "Poll the studio now")

	systray.AddSeparator()

	updateItem = systray.AddMenuItem("", "Open the release page")
	updateItem.Hide()
	settingsItem = systray.AddMenuItem("Open Settings", "Edit settings.yaml")
	quitItem = systray.AddMenuItem("Quit", "Quit Studiobar")

	mu.Lock()
	ready = true
	mu.Unlock()

	if onStart != nil {
		onStart()
	}

	go handleClicks()
	for i := 0; i < maxMachineSlots; i++ {
		go handleMachineSlot(i)
	}
	go watchSnapshots()
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	for {
		select {
		case <-startItem.ClickedCh:
			ctrl.Start("")
		case <-stopItem.ClickedCh:
			ctrl.Stop()
		case <-refreshItem.ClickedCh:
			ctrl.Refresh()
		case <-settingsItem.ClickedCh:
			host.OpenSettings()
		case <-updateItem.ClickedCh:
			mu.Lock()
			url := updateURL
			mu.Unlock()
			if url != "" {
				host.OpenURL(url)
			}
		case <-quitItem.ClickedCh:
			host.RequestShutdown()
			return
		}
	}
}

// handleMachineSlot switches to the machine shown in slot i when clicked.
func handleMachineSlot(i int) {
	for range machineSlots[i].ClickedCh {
		mu.Lock()
		var machine studio.Machine
		if i < len(machines) {
			machine = machines[i]
		}
		isCurrent := machine == current.Machine
		mu.Unlock()

		if machine != "" && !isCurrent {
			log.Printf("[tray] Switching machine to %s", machine)
			ctrl.SwitchMachine(machine)
		}
	}
}

func watchSnapshots() {
	snaps, cancel := ctrl.Subscribe()
	defer cancel()

	ticker := time.NewTicker(ageRefresh)
	defer ticker.Stop()

	for {
		select {
		case s, ok := <-snaps:
			if !ok {
				return
			}
			mu.Lock()
			current = s
			mu.Unlock()
			render()
		case <-ticker.C:
			render()
		}
	}
}

// render applies the current snapshot to the menu.
func render() {
	renderMu.Lock()
	defer renderMu.Unlock()

	mu.Lock()
	if !ready {
		mu.Unlock()
		return
	}
	s := current
	types := machines
	fallback := defaultMachine
	mu.Unlock()

	v := buildView(s, fallback, time.Now())

	systray.SetTooltip(v.Tooltip)
	if v.Active != activeIcon {
		activeIcon = v.Active
		if v.Active {
			systray.SetTemplateIcon(iconActive, iconActive)
		} else {
			systray.SetTemplateIcon(iconIdle, iconIdle)
		}
	}

	statusItem.SetTitle(v.Status)
	machineItem.SetTitle(v.Machine)
	if v.Updated == "" {
		updatedItem.Hide()
	} else {
		updatedItem.SetTitle(v.Updated)
		updatedItem.Show()
	}
	if v.Error == "" {
		errorItem.Hide()
	} else {
		errorItem.SetTitle("⚠ " + ansi.Truncate(v.Error, 80, "…"))
		errorItem.SetTooltip(v.Error)
		errorItem.Show()
	}

	startItem.SetTitle(v.StartLabel)
	setEnabled(startItem, v.CanStart)
	setEnabled(stopItem, v.CanStop)
	setEnabled(switchMenu, v.CanSwitch)
	setEnabled(refreshItem, v.CanRefresh)

	for i, slot := range machineSlots {
		if i >= len(types) {
			slot.Hide()
			continue
		}
		slot.SetTitle(machineLabel(types[i]))
		if types[i] == s.Machine {
			slot.Check()
		} else {
			slot.Uncheck()
		}
		slot.Show()
	}
}

func setEnabled(item *systray.MenuItem, enabled bool) {
	if enabled {
		item.Enable()
	} else {
		item.Disable()
	}
}
