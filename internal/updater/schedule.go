package updater

import (
	"time"

	"github.com/watchfire-io/studiobar/internal/models"
)

// Due reports whether an update check should run now under the configured
// frequency. A check that has never run is always due.
func Due(cfg models.UpdatesConfig, now time.Time) bool {
	if !cfg.CheckOnStartup {
		return false
	}
	if cfg.LastChecked == nil {
		return true
	}
	since := now.Sub(*cfg.LastChecked)
	switch cfg.CheckFrequency {
	case models.CheckDaily:
		return since >= 24*time.Hour
	case models.CheckWeekly:
		return since >= 7*24*time.Hour
	default:
		return true
	}
}
