package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Florex0Real/linux-system-manager/internal/format"
)

const appTitle = "Linux System Manager"

func (m Model) render() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.view {
	case ViewProcesses:
		b.WriteString(m.renderProcesses())
	case ViewFiles:
		b.WriteString(m.renderFiles())
	case ViewTerminal:
		b.WriteString(m.renderTerminal())
	case ViewHelp:
		b.WriteString(renderHelp())
	default:
		b.WriteString(m.renderDashboard())
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(ErrorStyle.Render(m.status))
		} else {
			b.WriteString(StatusStyle.Render(m.status))
		}
	}
	return b.String()
}

func (m Model) renderHeader() string {
	title := TitleStyle.Render(appTitle)
	if m.width > 0 {
		title = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title)
	}
	updated := "never"
	if m.snap != nil {
		updated = m.snap.CompletedAt.Format(time.TimeOnly)
	}
	status := StatusStyle.Render(fmt.Sprintf("Last updated: %s | Press 'q' to quit, 'h' for help", updated))
	rule := MutedStyle.Render(strings.Repeat("─", max(m.width, 40)))
	return title + "\n" + status + "\n" + rule
}

func section(title string) string {
	return SectionStyle.Render(title) + "\n"
}

func unavailableLine(reason string) string {
	return "  " + ErrorStyle.Render(reason) + "\n"
}

func bar(pct float64) string {
	return UsageStyle(pct).Render(format.PercentBar(pct))
}

func (m Model) renderDashboard() string {
	if m.snap == nil {
		return MutedStyle.Render("Collecting...")
	}
	s := m.snap.Metrics
	var b strings.Builder

	b.WriteString(section("System Information"))
	if id, ok := s.Identity.Get(); ok {
		fmt.Fprintf(&b, "  Hostname: %s\n", id.Hostname)
		fmt.Fprintf(&b, "  System: %s %s\n", id.Platform, id.PlatformVersion)
		fmt.Fprintf(&b, "  Kernel: %s\n", id.Kernel)
		fmt.Fprintf(&b, "  Architecture: %s\n", id.Arch)
		fmt.Fprintf(&b, "  Uptime: %s\n", format.Uptime(id.Uptime))
	} else {
		b.WriteString(unavailableLine(s.Identity.Reason()))
	}

	b.WriteString(section("CPU"))
	if c, ok := s.CPU.Get(); ok {
		fmt.Fprintf(&b, "  Usage: %s\n", bar(c.UsagePct))
		fmt.Fprintf(&b, "  Cores: %d  Frequency: %s\n", c.Cores, format.Frequency(c.Frequency))
		fmt.Fprintf(&b, "  Load: %.2f %.2f %.2f\n", c.Load.Load1, c.Load.Load5, c.Load.Load15)
	} else {
		b.WriteString(unavailableLine(s.CPU.Reason()))
	}

	b.WriteString(section("Memory"))
	if mem, ok := s.Memory.Get(); ok {
		fmt.Fprintf(&b, "  RAM:  %s %s / %s\n", bar(mem.UsagePct), format.Bytes(mem.Used), format.Bytes(mem.Total))
		fmt.Fprintf(&b, "  Swap: %s %s / %s\n", bar(mem.SwapUsagePct), format.Bytes(mem.SwapUsed), format.Bytes(mem.SwapTotal))
	} else {
		b.WriteString(unavailableLine(s.Memory.Reason()))
	}

	b.WriteString(section("Disk"))
	if d, ok := s.Disk.Get(); ok {
		fmt.Fprintf(&b, "  %s: %s %s / %s\n", d.Path, bar(d.UsedPercent), format.Bytes(d.Used), format.Bytes(d.Total))
		fmt.Fprintf(&b, "  Read: %s  Written: %s\n", format.Bytes(d.ReadBytes), format.Bytes(d.WriteBytes))
	} else {
		b.WriteString(unavailableLine(s.Disk.Reason()))
	}

	b.WriteString(section("Network"))
	if n, ok := s.Network.Get(); ok {
		fmt.Fprintf(&b, "  Sent: %s (%s)  Received: %s (%s)\n",
			format.Bytes(n.BytesSent), format.Rate(m.snap.NetRate.TxRate),
			format.Bytes(n.BytesRecv), format.Rate(m.snap.NetRate.RxRate))
	} else {
		b.WriteString(unavailableLine(s.Network.Reason()))
	}

	if temps, ok := s.Thermal.Get(); ok && len(temps) > 0 {
		b.WriteString(section("Sensors"))
		for _, t := range temps {
			fmt.Fprintf(&b, "  %-24s %.1f°C\n", format.Truncate(t.Sensor, 24), t.Celsius)
		}
	}
	return b.String()
}

func (m Model) renderProcesses() string {
	var b strings.Builder
	b.WriteString(section("Running Processes"))
	if m.snap == nil {
		return b.String() + MutedStyle.Render("Collecting...")
	}
	if !m.snap.Processes.Available() {
		return b.String() + unavailableLine(m.snap.Processes.Reason())
	}

	header := fmt.Sprintf("%-8s %-20s %-8s %-10s %-10s", "PID", "Name", "CPU%", "Memory%", "Status")
	b.WriteString(TableHeaderStyle.Render(header) + "\n")
	b.WriteString(MutedStyle.Render(strings.Repeat("─", len(header))) + "\n")

	for i, p := range m.processes() {
		line := fmt.Sprintf("%-8d %-20s %-8.1f %-10.1f %-10s",
			p.Pid, format.Truncate(p.Name, 19), p.CpuPct, p.MemPct, format.Truncate(p.Status, 9))
		b.WriteString(m.row(i, TextStyle, line) + "\n")
	}
	return b.String()
}

func (m Model) renderFiles() string {
	var b strings.Builder
	b.WriteString(section("File Manager - " + m.collector.Path()))
	switch {
	case m.listing:
		return b.String() + MutedStyle.Render("Listing...")
	case m.dir.Path == "":
		return b.String() + MutedStyle.Render("Collecting...")
	case !m.dir.Entries.Available():
		return b.String() + unavailableLine(m.dir.Entries.Reason())
	}

	header := fmt.Sprintf("%-4s %-30s %-12s %-20s %-6s", "Type", "Name", "Size", "Modified", "Perms")
	b.WriteString(TableHeaderStyle.Render(header) + "\n")
	b.WriteString(MutedStyle.Render(strings.Repeat("─", len(header))) + "\n")

	for i, e := range m.entries() {
		line := fmt.Sprintf("%-4s %-30s %-12s %-20s %-6s",
			format.EntryKind(e), format.Truncate(e.Name, 29), format.EntrySize(e),
			e.ModTime.Format(format.TimeLayout), e.Perm)
		style := TextStyle
		if e.IsDir {
			style = DirStyle
		}
		b.WriteString(m.row(i, style, line) + "\n")
	}
	return b.String()
}

func (m Model) renderTerminal() string {
	var b strings.Builder
	b.WriteString(section("Terminal"))
	b.WriteString(m.output.View() + "\n")
	if m.running {
		b.WriteString(MutedStyle.Render("running...") + "\n")
	}
	b.WriteString(m.input.View() + "\n")
	b.WriteString(MutedStyle.Render("enter: run  esc: back  pgup/pgdown: scroll"))
	return b.String()
}

func (m Model) row(i int, style lipgloss.Style, line string) string {
	if i == m.selected {
		return SelectedStyle.Inherit(style).Render(line)
	}
	return style.Render(line)
}

var helpText = []string{
	"Keyboard Shortcuts:",
	"",
	"  q, ESC       - Quit application",
	"  h            - Show this help",
	"  d            - Dashboard view",
	"  p            - Processes view",
	"  f            - File manager view",
	"  t            - Terminal view",
	"  r            - Refresh (at most once per interval)",
	"  c            - Clear status line",
	"",
	"File Manager:",
	"  ↑/↓          - Navigate files",
	"  Enter        - Enter directory",
	"  Backspace    - Go to parent directory",
	"  ~            - Go to home directory",
	"",
	"Process Manager:",
	"  ↑/↓          - Navigate processes",
	"  k            - Kill selected process (confirm with y)",
	"",
	"Terminal:",
	"  Enter        - Run command",
	"  ESC          - Back to dashboard",
	"",
	"Press any key to return to dashboard...",
}

func renderHelp() string {
	var b strings.Builder
	b.WriteString(section("Help - " + appTitle))
	for _, line := range helpText {
		b.WriteString("  " + TextStyle.Render(line) + "\n")
	}
	return b.String()
}
