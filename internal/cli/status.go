package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/watchfire-io/studiobar/internal/config"
	"github.com/watchfire-io/studiobar/internal/studio"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the studio's status and machine type",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print JSON")
}

// studioReport is one status reading.
type studioReport struct {
	Studio       string         `json:"studio"`
	ID           string         `json:"id"`
	Status       studio.Status  `json:"status"`
	Machine      studio.Machine `json:"machine,omitempty"`
	MachineError string         `json:"machine_error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}

	report, err := readStudio(cmd, s)
	if err != nil {
		return explain(err)
	}

	if statusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("%s %s %s\n", styleLabel.Render("Studio: "), styleValue.Render(report.Studio), styleHint.Render("("+report.ID+")"))
	fmt.Printf("%s %s\n", styleLabel.Render("Status: "), renderStatus(report.Status))
	switch {
	case report.MachineError != "":
		fmt.Printf("%s %s\n", styleLabel.Render("Machine:"), styleError.Render(report.MachineError))
	default:
		fmt.Printf("%s %s\n", styleLabel.Render("Machine:"), renderMachine(report.Machine))
	}

	if info, err := config.LoadInstanceInfo(); err == nil && info != nil {
		fmt.Printf("%s %s\n", styleLabel.Render("Tray:   "),
			styleHint.Render(fmt.Sprintf("running (PID %d, v%s)", info.PID, info.AppVersion)))
	}
	return nil
}

// readStudio resolves the studio and reads status and machine concurrently.
// A machine failure is reported in the result rather than as an error.
func readStudio(cmd *cobra.Command, s *session) (*studioReport, error) {
	ctx := cmd.Context()

	target, err := s.client.ResolveTarget(ctx, s.name)
	if err != nil {
		return nil, err
	}
	report := &studioReport{Studio: target.Name, ID: target.ID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		status, err := s.client.GetStatus(gctx, target)
		if err != nil {
			return err
		}
		report.Status = status
		return nil
	})
	g.Go(func() error {
		machine, err := s.client.GetMachine(gctx, target)
		if err != nil {
			report.MachineError = err.Error()
			return nil
		}
		report.Machine = machine
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}
