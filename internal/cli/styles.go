package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/studiobar/internal/studio"
)

// Adaptive colors shared with the watch view.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorOrange = lipgloss.AdaptiveColor{Light: "166", Dark: "208"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

var (
	styleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleVersion = lipgloss.NewStyle().Foreground(colorGreen)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleHint    = lipgloss.NewStyle().Foreground(colorDim)
	styleUpdate  = lipgloss.NewStyle().Bold(true).Foreground(colorOrange)
)

// Studio status badges.
var (
	styleRunning   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	styleStopped   = lipgloss.NewStyle().Foreground(colorDim)
	styleTransient = lipgloss.NewStyle().Foreground(colorYellow)
	styleFailed    = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleGPU       = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// renderStatus returns a colored status badge, e.g. "● Running".
func renderStatus(status studio.Status) string {
	switch status {
	case studio.StatusRunning:
		return styleRunning.Render("● " + status.Label())
	case studio.StatusStopped:
		return styleStopped.Render("○ " + status.Label())
	case studio.StatusFailed:
		return styleFailed.Render("✗ " + status.Label())
	default:
		return styleTransient.Render("◐ " + status.Label())
	}
}

func renderMachine(machine studio.Machine) string {
	if machine == "" {
		return styleHint.Render("unknown")
	}
	if machine.IsGPU() {
		return styleValue.Render(string(machine)) + " " + styleGPU.Render("GPU")
	}
	return styleValue.Render(string(machine))
}
