package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/watchfire-io/studiobar/internal/studio"
)

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Layout styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.AdaptiveColor{Light: "235", Dark: "236"})

	pickerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWhite).
			Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
				Background(lipgloss.AdaptiveColor{Light: "254", Dark: "237"})
)

// Text styles.
var (
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	labelStyle   = lipgloss.NewStyle().Foreground(colorDim).Width(10)
	valueStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	gpuStyle     = lipgloss.NewStyle().Foreground(colorCyan)
	spinnerStyle = lipgloss.NewStyle().Foreground(colorYellow)
	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	hintStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// Status badge styles.
var (
	badgeRunningStyle   = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	badgeStoppedStyle   = lipgloss.NewStyle().Foreground(colorDim)
	badgeTransientStyle = lipgloss.NewStyle().Foreground(colorYellow)
	badgeFailedStyle    = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

func statusStyle(s studio.Status) lipgloss.Style {
	switch s {
	case studio.StatusRunning:
		return badgeRunningStyle
	case studio.StatusStopped:
		return badgeStoppedStyle
	case studio.StatusFailed:
		return badgeFailedStyle
	default:
		return badgeTransientStyle
	}
}
