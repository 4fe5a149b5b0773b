package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/watchfire-io/studiobar/internal/monitor"
	"github.com/watchfire-io/studiobar/internal/studio"
)

const ageTickInterval = time.Second

// confirmMode values.
const (
	confirmNone = iota
	confirmStop
)

// Model is the root Bubbletea model for the watch view.
type Model struct {
	ctrl     Controller
	machines []studio.Machine
	fallback studio.Machine
	now      func() time.Time

	snap    monitor.Snapshot
	spinner spinner.Model

	width  int
	height int

	showHelp    bool
	confirmMode int
	picking     bool
	cursor      int
}

// NewModel creates the initial model.
func NewModel(opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	return Model{
		ctrl:     opts.Controller,
		machines: opts.MachineTypes,
		fallback: opts.DefaultMachine,
		now:      time.Now,
		snap:     monitor.Snapshot{Status: studio.StatusUnknown},
		spinner:  sp,
		width:    80,
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, ageTick())
}

func ageTick() tea.Cmd {
	return tea.Tick(ageTickInterval, func(t time.Time) tea.Msg {
		return ageTickMsg(t)
	})
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case SnapshotMsg:
		m.snap = msg.Snapshot
		if m.confirmMode == confirmStop && !m.snap.CanStop() {
			m.confirmMode = confirmNone
		}
		if m.picking && !m.snap.CanSwitch() {
			m.picking = false
		}
		return m, nil

	case ageTickMsg:
		return m, ageTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmMode == confirmStop {
		m.confirmMode = confirmNone
		if msg.String() == "y" {
			m.ctrl.Stop()
		}
		return m, nil
	}

	if m.picking {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, keys.Refresh):
		m.ctrl.Refresh()
	case key.Matches(msg, keys.Start):
		if m.snap.CanStart() {
			m.ctrl.Start("")
		}
	case key.Matches(msg, keys.Stop):
		if m.snap.CanStop() {
			m.confirmMode = confirmStop
		}
	case key.Matches(msg, keys.Machine):
		if m.snap.CanSwitch() && len(m.machines) > 0 {
			m.picking = true
			m.cursor = m.machineIndex(m.snap.Machine)
		}
	}
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, picker.Cancel), key.Matches(msg, keys.Quit):
		m.picking = false
	case key.Matches(msg, picker.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, picker.Down):
		if m.cursor < len(m.machines)-1 {
			m.cursor++
		}
	case key.Matches(msg, picker.Select):
		m.picking = false
		chosen := m.machines[m.cursor]
		if chosen != m.snap.Machine {
			m.ctrl.SwitchMachine(chosen)
		}
	}
	return m, nil
}

// machineIndex returns the picker row for machine, or 0.
func (m Model) machineIndex(machine studio.Machine) int {
	for i, candidate := range m.machines {
		if candidate == machine {
			return i
		}
	}
	return 0
}
