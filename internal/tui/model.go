// Package tui is the terminal front end.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Florex0Real/linux-system-manager/internal/command"
	"github.com/Florex0Real/linux-system-manager/internal/files"
	"github.com/Florex0Real/linux-system-manager/internal/metrics"
	"github.com/Florex0Real/linux-system-manager/internal/process"
	"github.com/Florex0Real/linux-system-manager/internal/scheduler"
)

const (
	DefaultProcessLimit = 20
	DefaultFileLimit    = 20

	// tickInterval is how often the model asks for a snapshot. The
	// scheduler's own interval decides whether anything is re-sampled.
	tickInterval = 100 * time.Millisecond
)

// Collector is the part of the scheduler the model drives.
type Collector interface {
	Collect(ctx context.Context) *scheduler.Snapshot
	SetPath(p string)
	Path() string
}

type Runner interface {
	Run(ctx context.Context, line string, timeout time.Duration) command.Result
}

type Params struct {
	Collector      Collector
	Runner         Runner
	CommandTimeout time.Duration
	ProcessLimit   int
	FileLimit      int
	// Terminate defaults to process.Terminate.
	Terminate func(ctx context.Context, pid int32) error
	// ListDir defaults to files.List.
	ListDir scheduler.DirSource
}

// Model is the Bubble Tea model for the terminal front end.
type Model struct {
	collector      Collector
	runner         Runner
	terminate      func(ctx context.Context, pid int32) error
	listDir        scheduler.DirSource
	commandTimeout time.Duration
	processLimit   int
	fileLimit      int

	snap       *scheduler.Snapshot
	dir        scheduler.Directory // listing shown in the file view
	listing    bool
	collecting bool
	view       ViewMode
	selected   int
	confirmPid int32 // non-zero while waiting for y/n
	status     string
	statusErr  bool

	width, height int
	quitting      bool

	input   textinput.Model
	output  viewport.Model
	history []string
	running bool
}

type tickMsg time.Time

type snapshotMsg struct {
	snap *scheduler.Snapshot
}

type commandMsg struct {
	line   string
	result command.Result
}

// dirMsg carries a listing made outside the scheduler after navigation.
type dirMsg struct {
	dir scheduler.Directory
}

type terminateMsg struct {
	pid int32
	err error
}

func NewModel(p Params) Model {
	in := textinput.New()
	in.Prompt = "$ "
	in.Placeholder = "command"

	m := Model{
		collector:      p.Collector,
		runner:         p.Runner,
		terminate:      p.Terminate,
		listDir:        p.ListDir,
		commandTimeout: p.CommandTimeout,
		processLimit:   p.ProcessLimit,
		fileLimit:      p.FileLimit,
		input:          in,
		output:         viewport.New(80, 10),
	}
	if m.terminate == nil {
		m.terminate = process.Terminate
	}
	if m.listDir == nil {
		m.listDir = files.List
	}
	if m.commandTimeout <= 0 {
		m.commandTimeout = command.DefaultTimeout
	}
	if m.processLimit <= 0 {
		m.processLimit = DefaultProcessLimit
	}
	if m.fileLimit <= 0 {
		m.fileLimit = DefaultFileLimit
	}
	return m
}

// Init starts the tick timer and triggers an initial collection.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.collectCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.output.Width = msg.Width
		m.output.Height = max(3, msg.Height-8)
		m.input.Width = max(10, msg.Width-4)

	case tickMsg:
		if m.collecting {
			return m, m.tickCmd()
		}
		m.collecting = true
		return m, tea.Batch(m.tickCmd(), m.collectCmd())

	case snapshotMsg:
		m.collecting = false
		if msg.snap != nil && (m.snap == nil || msg.snap.Seq != m.snap.Seq) {
			m.snap = msg.snap
			// A snapshot taken before the last navigation lists the old directory.
			if msg.snap.Directory.Path == m.collector.Path() {
				m.dir = msg.snap.Directory
				m.listing = false
			}
			m.clampSelection()
		}

	case dirMsg:
		if msg.dir.Path == m.collector.Path() {
			m.dir = msg.dir
			m.listing = false
			m.clampSelection()
		}

	case commandMsg:
		m.running = false
		m.appendOutput(msg.line, msg.result)

	case terminateMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Failed to kill process %d: %v", msg.pid, msg.err), true)
			return m, nil
		}
		// The row disappears with the next scheduled snapshot.
		m.setStatus(fmt.Sprintf("Process %d terminated", msg.pid), false)
		return m, nil
	}

	if m.view == ViewTerminal {
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// collectCmd fetches a snapshot off the UI goroutine. The scheduler returns
// its latest snapshot unless the interval has passed.
func (m Model) collectCmd() tea.Cmd {
	c := m.collector
	return func() tea.Msg {
		return snapshotMsg{snap: c.Collect(context.Background())}
	}
}

// listCmd lists path without touching metrics or processes.
func (m Model) listCmd(path string) tea.Cmd {
	list := m.listDir
	return func() tea.Msg {
		entries, err := list(path)
		if err != nil {
			return dirMsg{dir: scheduler.Directory{Path: path, Entries: metrics.Result[[]files.Entry]{Err: err}}}
		}
		return dirMsg{dir: scheduler.Directory{Path: path, Entries: metrics.Ok(entries)}}
	}
}

func (m Model) runCmd(line string) tea.Cmd {
	r, timeout := m.runner, m.commandTimeout
	return func() tea.Msg {
		return commandMsg{line: line, result: r.Run(context.Background(), line, timeout)}
	}
}

func (m Model) terminateCmd(pid int32) tea.Cmd {
	terminate := m.terminate
	return func() tea.Msg {
		return terminateMsg{pid: pid, err: terminate(context.Background(), pid)}
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// processes returns the rows shown in the process view.
func (m Model) processes() []process.Record {
	if m.snap == nil {
		return nil
	}
	records, ok := m.snap.Processes.Get()
	if !ok {
		return nil
	}
	return process.Rank(append([]process.Record(nil), records...), m.processLimit)
}

// entries returns the rows shown in the file view.
func (m Model) entries() []files.Entry {
	if m.listing {
		return nil
	}
	entries, ok := m.dir.Entries.Get()
	if !ok {
		return nil
	}
	return files.Truncate(entries, m.fileLimit)
}

func (m Model) rowCount() int {
	switch m.view {
	case ViewProcesses:
		return len(m.processes())
	case ViewFiles:
		return len(m.entries())
	}
	return 0
}

func (m *Model) clampSelection() {
	n := m.rowCount()
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) appendOutput(line string, res command.Result) {
	var b strings.Builder
	b.WriteString("$ " + line + "\n")
	b.WriteString(res.Stdout)
	if res.Stderr != "" {
		b.WriteString(ErrorStyle.Render(strings.TrimRight(res.Stderr, "\n")) + "\n")
	}
	switch {
	case res.TimedOut:
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("[timed out after %s]", m.commandTimeout)) + "\n")
	case !res.Success:
		b.WriteString(MutedStyle.Render(fmt.Sprintf("[exit %d]", res.ExitCode)) + "\n")
	}
	m.history = append(m.history, b.String())
	m.output.SetContent(strings.Join(m.history, ""))
	m.output.GotoBottom()
}
