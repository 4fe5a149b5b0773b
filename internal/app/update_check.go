package app

import (
	"context"
	"log"

	"github.com/watchfire-io/studiobar/internal/updater"
)

// runUpdateCheck checks for a newer release when the configured frequency
// says one is due, and shows it in the menu.
func (a *App) runUpdateCheck(ctx context.Context) {
	settings := a.Settings()
	if !updater.Due(settings.Updates, a.now()) {
		return
	}

	result, err := a.checkForUpdate(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[update] Check failed: %v", err)
		}
		return
	}

	a.recordUpdateCheck()

	if !result.Available {
		log.Printf("[update] Up to date (v%s)", result.CurrentVersion)
		return
	}
	log.Printf("[update] Update available: v%s -> v%s", result.CurrentVersion, result.LatestVersion)
	a.setUpdate(result.LatestVersion, result.ReleaseURL)
}

// recordUpdateCheck stores the check time on disk. The file is re-read so
// edits made since launch are kept.
func (a *App) recordUpdateCheck() {
	settings, err := a.loadSettings()
	if err != nil {
		log.Printf("[update] Failed to load settings: %v", err)
		return
	}
	now := a.now()
	settings.Updates.LastChecked = &now
	if err := a.saveSettings(settings); err != nil {
		log.Printf("[update] Failed to save last_checked: %v", err)
	}
}
