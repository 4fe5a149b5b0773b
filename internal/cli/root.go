// Package cli implements the studioctl commands.
package cli

import (
	"context"
	"io"
	"log"

	"github.com/spf13/cobra"
)

var (
	// studioFlag overrides studio.name from settings for one invocation.
	studioFlag string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "studioctl",
	Short: "Monitor and control your cloud studio",
	Long: `studioctl shows and changes the state of the studio configured in
~/.studiobar/settings.yaml: start it, stop it, switch its machine type,
or watch it live. The studiobar tray app uses the same settings.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetFlags(log.Ltime)
			return
		}
		log.SetOutput(io.Discard)
	},
}

// Execute runs the CLI. ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log API activity to stderr")
	rootCmd.PersistentFlags().StringVarP(&studioFlag, "studio", "s", "", "studio name (defaults to studio.name in settings)")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(useCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)
}
