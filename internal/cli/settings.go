package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/watchfire-io/studiobar/internal/config"
	"github.com/watchfire-io/studiobar/internal/models"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Show settings",
	Long: `Show ~/.studiobar/settings.yaml with defaults applied.

Use 'studioctl settings set <key> <value>' to change a value. The tray app
reloads the file on change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		shown := *settings
		if shown.Credentials.APIKey != "" {
			shown.Credentials.APIKey = "********"
		}
		data, err := yaml.Marshal(&shown)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long:  "Change one setting. Keys:\n  " + strings.Join(settingKeys(), "\n  "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		if err := applySetting(settings, args[0], args[1]); err != nil {
			return err
		}
		settings.Normalize()
		if err := config.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Printf("%s = %s\n", styleLabel.Render(args[0]), styleValue.Render(args[1]))
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.SettingsFile()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}

// settingSetters maps a dotted key to a function that parses and stores a value.
var settingSetters = map[string]func(s *models.Settings, v string) error{
	"api.base_url":                 func(s *models.Settings, v string) error { s.API.BaseURL = v; return nil },
	"credentials.user_id":          func(s *models.Settings, v string) error { s.Credentials.UserID = v; return nil },
	"credentials.teamspace_id":     func(s *models.Settings, v string) error { s.Credentials.TeamspaceID = v; return nil },
	"studio.name":                  func(s *models.Settings, v string) error { s.Studio.Name = v; return nil },
	"studio.default_machine":       func(s *models.Settings, v string) error { s.Studio.DefaultMachine = v; return nil },
	"studio.machine_types":         func(s *models.Settings, v string) error { s.Studio.MachineTypes = splitList(v); return nil },
	"polling.refresh_seconds":      intSetter(func(s *models.Settings) *int { return &s.Polling.RefreshSeconds }),
	"polling.fast_refresh_seconds": intSetter(func(s *models.Settings) *int { return &s.Polling.FastRefreshSeconds }),
	"notifications.enabled":        boolSetter(func(s *models.Settings) *bool { return &s.Notifications.Enabled }),
	"notifications.nats_url":       func(s *models.Settings, v string) error { s.Notifications.NATSURL = v; return nil },
	"notifications.nats_subject":   func(s *models.Settings, v string) error { s.Notifications.NATSSubject = v; return nil },
	"metrics.listen_addr":          func(s *models.Settings, v string) error { s.Metrics.ListenAddr = v; return nil },
	"telemetry.enabled":            boolSetter(func(s *models.Settings) *bool { return &s.Telemetry.Enabled }),
	"updates.check_on_startup":     boolSetter(func(s *models.Settings) *bool { return &s.Updates.CheckOnStartup }),
	"updates.check_frequency": func(s *models.Settings, v string) error {
		switch v {
		case models.CheckEveryLaunch, models.CheckDaily, models.CheckWeekly:
			s.Updates.CheckFrequency = v
			return nil
		}
		return fmt.Errorf("check_frequency must be %s, %s or %s", models.CheckEveryLaunch, models.CheckDaily, models.CheckWeekly)
	},
}

func applySetting(s *models.Settings, key, value string) error {
	set, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(settingKeys(), ", "))
	}
	if err := set(s, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func intSetter(field func(*models.Settings) *int) func(*models.Settings, string) error {
	return func(s *models.Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		if n < 1 {
			return fmt.Errorf("must be at least 1, got %d", n)
		}
		*field(s) = n
		return nil
	}
}

func boolSetter(field func(*models.Settings) *bool) func(*models.Settings, string) error {
	return func(s *models.Settings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(s) = b
		return nil
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
