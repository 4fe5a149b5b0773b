// Package tui implements the live studio view behind `studioctl watch`.
package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/watchfire-io/studiobar/internal/monitor"
	"github.com/watchfire-io/studiobar/internal/studio"
)

// Controller is the studio monitor as seen by the TUI. *monitor.Monitor
// implements it.
type Controller interface {
	Subscribe() (<-chan monitor.Snapshot, func())
	Refresh()
	Start(machine studio.Machine)
	Stop()
	SwitchMachine(machine studio.Machine)
}

// Options configures the TUI.
type Options struct {
	Controller     Controller
	MachineTypes   []studio.Machine
	DefaultMachine studio.Machine
}

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Run shows the TUI until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	ref := &programRef{}
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	ref.Set(p)

	snaps, unsubscribe := opts.Controller.Subscribe()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case s := <-snaps:
				ref.Send(SnapshotMsg{Snapshot: s})
			}
		}
	}()

	_, err := p.Run()
	ref.Clear()
	close(done)
	unsubscribe()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
