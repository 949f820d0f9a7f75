package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Florex0Real/linux-system-manager/internal/files"
)

// ViewMode is the screen currently shown.
type ViewMode int

const (
	ViewDashboard ViewMode = iota
	ViewProcesses
	ViewFiles
	ViewTerminal
	ViewHelp
)

func (v ViewMode) String() string {
	switch v {
	case ViewDashboard:
		return "dashboard"
	case ViewProcesses:
		return "processes"
	case ViewFiles:
		return "files"
	case ViewTerminal:
		return "terminal"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Key bindings as constants for consistency.
const (
	KeyQuit       = "q"
	KeyQuitAlt    = "ctrl+c"
	KeyEscape     = "esc"
	KeyHelp       = "h"
	KeyDashboard  = "d"
	KeyProcesses  = "p"
	KeyFiles      = "f"
	KeyTerminal   = "t"
	KeyRefresh    = "r"
	KeyClear      = "c"
	KeyUp         = "up"
	KeyDown       = "down"
	KeyEnter      = "enter"
	KeyBackspace  = "backspace"
	KeyHome       = "~"
	KeyKill       = "k"
	KeyConfirmYes = "y"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == KeyQuitAlt {
		m.quitting = true
		return m, tea.Quit
	}

	if m.view == ViewTerminal {
		return m.handleTerminalKey(msg)
	}

	// A pending kill takes the next key as its answer.
	if m.confirmPid != 0 {
		pid := m.confirmPid
		m.confirmPid = 0
		if strings.EqualFold(key, KeyConfirmYes) {
			m.setStatus(fmt.Sprintf("Terminating process %d...", pid), false)
			return m, m.terminateCmd(pid)
		}
		m.setStatus("Kill cancelled", false)
		return m, nil
	}

	// Any key leaves the help screen.
	if m.view == ViewHelp && key != KeyQuit && key != KeyEscape {
		m.view = ViewDashboard
		return m, nil
	}

	switch strings.ToLower(key) {
	case KeyQuit, KeyEscape:
		m.quitting = true
		return m, tea.Quit
	case KeyHelp:
		m.view = ViewHelp
	case KeyDashboard:
		m.switchView(ViewDashboard)
	case KeyProcesses:
		m.switchView(ViewProcesses)
	case KeyFiles:
		m.switchView(ViewFiles)
	case KeyTerminal:
		m.switchView(ViewTerminal)
		return m, m.input.Focus()
	case KeyRefresh:
		if m.collecting {
			return m, nil
		}
		m.collecting = true
		return m, m.collectCmd()
	case KeyClear:
		m.setStatus("", false)
	case KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case KeyDown:
		if m.selected < m.rowCount()-1 {
			m.selected++
		}
	case KeyEnter:
		if m.view == ViewFiles {
			return m.openSelected()
		}
	case KeyBackspace:
		if m.view == ViewFiles {
			return m.navigate(files.Parent(m.collector.Path()))
		}
	case KeyHome:
		if m.view == ViewFiles {
			return m.navigate(files.Home())
		}
	case KeyKill:
		if m.view == ViewProcesses {
			m.askKill()
		}
	}
	return m, nil
}

func (m Model) handleTerminalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEscape:
		m.input.Blur()
		m.switchView(ViewDashboard)
		return m, nil
	case KeyEnter:
		line := m.input.Value()
		if strings.TrimSpace(line) == "" || m.running {
			return m, nil
		}
		m.input.Reset()
		m.running = true
		return m, m.runCmd(line)
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) switchView(v ViewMode) {
	if m.view != v {
		m.selected = 0
	}
	m.view = v
	m.clampSelection()
}

func (m Model) openSelected() (tea.Model, tea.Cmd) {
	entries := m.entries()
	if m.selected < 0 || m.selected >= len(entries) {
		return m, nil
	}
	e := entries[m.selected]
	if !e.IsDir {
		return m, nil
	}
	target, err := files.Child(m.collector.Path(), e.Name)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	return m.navigate(target)
}

// navigate points the scheduler at dir and lists it right away. Metrics and
// processes wait for the next scheduled pass.
func (m Model) navigate(dir string) (tea.Model, tea.Cmd) {
	if dir == m.collector.Path() {
		return m, nil
	}
	m.collector.SetPath(dir)
	m.selected = 0
	m.setStatus("", false)
	m.listing = true
	return m, m.listCmd(dir)
}

func (m *Model) askKill() {
	procs := m.processes()
	if m.selected < 0 || m.selected >= len(procs) {
		return
	}
	p := procs[m.selected]
	m.confirmPid = p.Pid
	m.setStatus(fmt.Sprintf("Kill process %s (PID: %d)? [y/N]", p.Name, p.Pid), false)
}
