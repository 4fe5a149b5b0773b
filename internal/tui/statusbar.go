package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(m *Model, width int) string {
	if m.confirmMode == confirmStop {
		return renderConfirmBar("Stop "+m.snap.DisplayName+"? (y/n)", width)
	}

	left := " " + getKeyHints(m)

	right := ""
	if m.snap.Busy {
		right = lipgloss.NewStyle().Foreground(colorYellow).Render("Working…") + " "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func getKeyHints(m *Model) string {
	if m.picking {
		return keyHint("j/k", "navigate") + "  " + keyHint("Enter", "switch") + "  " + keyHint("Esc", "cancel")
	}

	hints := keyHint("q", "quit") + "  " + keyHint("?", "help") + "  " + keyHint("r", "refresh")
	if m.snap.CanStart() {
		hints += "  " + keyHint("s", "start")
	}
	if m.snap.CanStop() {
		hints += "  " + keyHint("x", "stop")
	}
	if m.snap.CanSwitch() && len(m.machines) > 0 {
		hints += "  " + keyHint("m", "machine")
	}
	return hints
}

func keyHint(k, desc string) string {
	if k == "" {
		return hintStyle.Render(desc)
	}
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}

func renderConfirmBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorYellow).
		Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "0"}).
		Width(width).
		Render(" " + msg)
}
