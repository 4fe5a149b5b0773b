package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/watchfire-io/studiobar/internal/buildinfo"
	"github.com/watchfire-io/studiobar/internal/studio"
)

// View renders the model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch {
	case m.showHelp:
		b.WriteString(renderHelp())
	case m.picking:
		b.WriteString(m.renderPicker())
	default:
		b.WriteString(m.renderBody())
	}
	b.WriteString("\n\n")
	b.WriteString(renderStatusBar(&m, m.width))

	return b.String()
}

func (m Model) renderHeader() string {
	left := " " + brandStyle.Render("● Studiobar")
	if m.snap.HasTarget() {
		left += "  " + valueStyle.Render(m.snap.DisplayName)
	}
	right := hintStyle.Render("v"+buildinfo.Version) + " "

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return headerStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderBody() string {
	s := m.snap
	if !s.HasTarget() {
		return "  " + hintStyle.Render("No studio selected. Run `studioctl use <name>`.")
	}

	status := statusStyle(s.Status).Render(s.Status.Label())
	if s.Busy || s.Status.Transient() {
		status = m.spinner.View() + " " + status
	}

	machine := hintStyle.Render("unknown")
	if s.Machine != "" {
		machine = valueStyle.Render(string(s.Machine))
		if s.Machine.IsGPU() {
			machine += " " + gpuStyle.Render("GPU")
		}
	}

	polling := fmt.Sprintf("every %s", s.Interval)
	if s.FastPolling {
		polling += " (fast)"
	}

	lines := []string{
		row("Status", status),
		row("Machine", machine),
		row("Updated", valueStyle.Render(s.Age(m.now()))),
		row("Polling", valueStyle.Render(polling)),
	}
	if s.LastError != "" {
		lines = append(lines, "", "  "+errorStyle.Render("⚠ "+s.LastError))
	}

	for i, line := range lines {
		lines[i] = ansi.Truncate(line, m.width, "…")
	}
	return strings.Join(lines, "\n")
}

func row(label, value string) string {
	return "  " + labelStyle.Render(label) + value
}

func (m Model) renderPicker() string {
	var lines []string
	lines = append(lines, headerStyle.Render("Machine type"), "")
	for i, machine := range m.machines {
		marker := "  "
		if machine == m.snap.Machine {
			marker = "✓ "
		}
		line := marker + machineTitle(machine)
		if i == m.cursor {
			line = selectedItemStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return pickerStyle.Render(strings.Join(lines, "\n"))
}

func machineTitle(machine studio.Machine) string {
	if machine.IsGPU() {
		return string(machine) + " " + gpuStyle.Render("GPU")
	}
	return string(machine)
}
