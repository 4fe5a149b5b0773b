// Package tray implements the system tray icon and menu.
package tray

import (
	"github.com/watchfire-io/studiobar/internal/monitor"
	"github.com/watchfire-io/studiobar/internal/studio"
)

// Controller is the studio monitor as seen by the menu. *monitor.Monitor
// implements it.
type Controller interface {
	Subscribe() (<-chan monitor.Snapshot, func())
	Refresh()
	Start(machine studio.Machine)
	Stop()
	SwitchMachine(machine studio.Machine)
}

// Host provides app-level actions to the tray.
type Host interface {
	OpenSettings()
	OpenURL(url string)
	RequestShutdown()
}
