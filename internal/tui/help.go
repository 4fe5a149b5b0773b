package tui

import (
	"strings"
)

type helpKey struct {
	key  string
	desc string
}

var helpKeys = []helpKey{
	{"r", "Poll the studio now"},
	{"s", "Start on the current machine type"},
	{"x", "Stop (asks for confirmation)"},
	{"m", "Pick a machine type"},
	{"?", "Toggle help"},
	{"q", "Quit"},
}

func renderHelp() string {
	var b strings.Builder
	b.WriteString("  " + headerStyle.Render("Keys") + "\n\n")
	for _, k := range helpKeys {
		b.WriteString("  " + keyStyle.Width(4).Render(k.key) + hintStyle.Render(k.desc) + "\n")
	}
	b.WriteString("\n  " + hintStyle.Render("The view updates on its own as the studio changes."))
	return b.String()
}
