package cli

import (
	"github.com/spf13/cobra"

	"github.com/watchfire-io/studiobar/internal/monitor"
	"github.com/watchfire-io/studiobar/internal/notify"
	"github.com/watchfire-io/studiobar/internal/studio"
	"github.com/watchfire-io/studiobar/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the studio live",
	Long: `Open a live view of the studio. It polls on the same schedule as the
tray app and lets you start, stop and switch machine types from the keyboard.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(true)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		mon := monitor.New(monitor.Options{
			API:               s.client,
			Notifier:          notify.Discard,
			RefreshPeriod:     s.settings.Polling.RefreshPeriod(),
			FastRefreshPeriod: s.settings.Polling.FastRefreshPeriod(),
			DefaultMachine:    studio.Machine(s.settings.Studio.DefaultMachine),
		})
		go mon.Run(ctx)
		mon.SelectTarget(s.name)

		return tui.Run(ctx, tui.Options{
			Controller:     mon,
			MachineTypes:   machineTypes(s.settings),
			DefaultMachine: studio.Machine(s.settings.Studio.DefaultMachine),
		})
	},
}
