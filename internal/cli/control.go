package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/studiobar/internal/monitor"
	"github.com/watchfire-io/studiobar/internal/notify"
	"github.com/watchfire-io/studiobar/internal/studio"
)

var (
	waitFlag    bool
	waitTimeout time.Duration
)

var startCmd = &cobra.Command{
	Use:   "start [machine-type]",
	Short: "Start the studio",
	Long: `Start the studio on the given machine type. Without one, the studio's
current machine type is used, falling back to studio.default_machine.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the studio",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

var switchCmd = &cobra.Command{
	Use:   "switch <machine-type>",
	Short: "Change the studio's machine type",
	Args:  cobra.ExactArgs(1),
	RunE:  runSwitch,
}

func init() {
	for _, cmd := range []*cobra.Command{startCmd, stopCmd} {
		cmd.Flags().BoolVarP(&waitFlag, "wait", "w", false, "wait until the studio settles")
		cmd.Flags().DurationVar(&waitTimeout, "timeout", 15*time.Minute, "how long --wait waits")
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	target, err := s.client.ResolveTarget(ctx, s.name)
	if err != nil {
		return explain(err)
	}

	var machine studio.Machine
	if len(args) == 1 {
		machine = studio.Machine(args[0])
	} else {
		machine, err = s.client.GetMachine(ctx, target)
		if err != nil || machine == "" {
			machine = studio.Machine(s.settings.Studio.DefaultMachine)
		}
	}

	if err := s.client.Start(ctx, target, machine); err != nil {
		return explain(fmt.Errorf("failed to start studio: %w", err))
	}
	fmt.Printf("Starting %s on %s.\n", styleValue.Render(target.Name), renderMachine(machine))

	if !waitFlag {
		return nil
	}
	return waitForStatus(ctx, s, studio.StatusRunning)
}

func runStop(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	target, err := s.client.ResolveTarget(ctx, s.name)
	if err != nil {
		return explain(err)
	}
	if err := s.client.Stop(ctx, target); err != nil {
		return explain(fmt.Errorf("failed to stop studio: %w", err))
	}
	fmt.Printf("Stopping %s.\n", styleValue.Render(target.Name))

	if !waitFlag {
		return nil
	}
	return waitForStatus(ctx, s, studio.StatusStopped)
}

func runSwitch(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	machine := studio.Machine(args[0])

	target, err := s.client.ResolveTarget(ctx, s.name)
	if err != nil {
		return explain(err)
	}
	if err := s.client.SwitchMachine(ctx, target, machine); err != nil {
		return explain(fmt.Errorf("failed to switch machine: %w", err))
	}
	fmt.Printf("%s now uses %s.\n", styleValue.Render(target.Name), renderMachine(machine))
	return nil
}

// waitForStatus polls with a monitor until the studio reaches want. Status
// changes are printed as they are observed.
func waitForStatus(ctx context.Context, s *session, want studio.Status) error {
	ctx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()

	mon := monitor.New(monitor.Options{
		API:               s.client,
		Notifier:          notify.Discard,
		RefreshPeriod:     s.settings.Polling.RefreshPeriod(),
		FastRefreshPeriod: s.settings.Polling.FastRefreshPeriod(),
	})
	go mon.Run(ctx)

	snaps, unsubscribe := mon.Subscribe()
	defer unsubscribe()
	mon.SelectTarget(s.name)

	var last studio.Status
	var lastErr string
	// A studio that was already FAILED stays FAILED until the request takes
	// effect, so FAILED only ends the wait once another status was seen.
	leftFailed := false
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out after %s waiting for %s", waitTimeout, want.Label())
		case snap := <-snaps:
			if snap.Refreshes == 0 {
				continue
			}
			if snap.LastError != lastErr {
				lastErr = snap.LastError
				if lastErr != "" {
					fmt.Println("  " + styleHint.Render(lastErr))
				}
			}
			if snap.Status != studio.StatusFailed && snap.Status != studio.StatusUnknown {
				leftFailed = true
			}
			if snap.Status == last {
				continue
			}
			last = snap.Status
			fmt.Println("  " + renderStatus(snap.Status))

			switch {
			case snap.Status == want:
				return nil
			case snap.Status == studio.StatusFailed && leftFailed:
				return fmt.Errorf("studio failed while waiting for %s", want.Label())
			}
		}
	}
}
