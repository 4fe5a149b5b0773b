package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/studiobar/internal/config"
	"github.com/watchfire-io/studiobar/internal/updater"
)

var updateCheckOnly bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update studioctl to the latest version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		fmt.Println("Checking for updates...")

		result, err := updater.CheckForUpdate(ctx)
		if err != nil {
			return fmt.Errorf("failed to check for updates: %w", err)
		}
		recordUpdateCheck()

		if !result.Available {
			fmt.Printf("Already up to date (v%s).\n", result.CurrentVersion)
			return nil
		}

		fmt.Printf("%s v%s → v%s\n", styleUpdate.Render("Update available:"), result.CurrentVersion, result.LatestVersion)
		fmt.Printf("Release: %s\n", result.ReleaseURL)
		if updateCheckOnly {
			return nil
		}

		assetName := updater.AssetName("studioctl")
		asset := updater.FindAsset(result.Release, assetName)
		if asset == nil {
			return fmt.Errorf("studioctl binary not found in release (expected %s)", assetName)
		}

		fmt.Printf("Downloading %s...\n", asset.Name)
		tmpPath, err := updater.DownloadAsset(ctx, asset)
		if err != nil {
			return fmt.Errorf("failed to download: %w", err)
		}
		defer os.Remove(tmpPath)

		selfPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to find self: %w", err)
		}
		selfPath, err = filepath.EvalSymlinks(selfPath)
		if err != nil {
			return fmt.Errorf("failed to resolve self: %w", err)
		}

		fmt.Println("Installing...")
		if err := updater.ReplaceBinary(selfPath, tmpPath); err != nil {
			return fmt.Errorf("failed to update studioctl: %w", err)
		}

		fmt.Printf("Updated to v%s.\n", result.LatestVersion)
		if info, _ := config.LoadInstanceInfo(); info != nil {
			fmt.Println(styleHint.Render("Restart the studiobar tray app to pick up its update from the release page."))
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "only report whether an update exists")
}

// recordUpdateCheck stores the check time so the tray app's own check
// honors updates.check_frequency.
func recordUpdateCheck() {
	settings, err := config.LoadSettings()
	if err != nil {
		return
	}
	now := time.Now()
	settings.Updates.LastChecked = &now
	_ = config.SaveSettings(settings)
}
