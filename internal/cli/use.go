package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/studiobar/internal/config"
)

var useNoVerify bool

var useCmd = &cobra.Command{
	Use:   "use <studio-name>",
	Short: "Select the studio to monitor",
	Long: `Save the studio name to settings. The tray app picks the change up
immediately. The name is checked against the API unless --no-verify is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runUse,
}

func init() {
	useCmd.Flags().BoolVar(&useNoVerify, "no-verify", false, "save without looking the studio up")
}

func runUse(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("studio name must not be empty")
	}

	studioFlag = name
	s, err := openSession(true)
	if err != nil {
		return err
	}

	if !useNoVerify {
		target, err := s.client.ResolveTarget(cmd.Context(), name)
		if err != nil {
			return explain(err)
		}
		fmt.Printf("Found %s %s\n", styleValue.Render(target.Name), styleHint.Render("("+target.ID+")"))
	}

	s.settings.Studio.Name = name
	if err := config.SaveSettings(s.settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Printf("Now monitoring %s.\n", styleSuccess.Render(name))
	return nil
}
