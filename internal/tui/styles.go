package tui

import "github.com/charmbracelet/lipgloss"

const (
	ColorHeader  = lipgloss.Color("#00D7FF") // cyan
	ColorStatus  = lipgloss.Color("#FFD700") // yellow
	ColorText    = lipgloss.Color("#E4E4E4")
	ColorDir     = lipgloss.Color("#5FFF5F") // green
	ColorError   = lipgloss.Color("#FF5F5F")
	ColorMuted   = lipgloss.Color("#808080")
	ColorSelect  = lipgloss.Color("#303050")
	ColorWarning = lipgloss.Color("#FFAA00")
)

// Usage thresholds for bar colouring.
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorHeader).
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorStatus)

	SectionStyle = lipgloss.NewStyle().
			Foreground(ColorHeader).
			Bold(true).
			MarginTop(1)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorStatus).
				Bold(true)

	TextStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	DirStyle = lipgloss.NewStyle().
			Foreground(ColorDir)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SelectedStyle = lipgloss.NewStyle().
			Background(ColorSelect).
			Bold(true)
)

// UsageStyle colours a percentage by severity.
func UsageStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= CriticalThreshold:
		return lipgloss.NewStyle().Foreground(ColorError)
	case pct >= WarningThreshold:
		return lipgloss.NewStyle().Foreground(ColorWarning)
	}
	return lipgloss.NewStyle().Foreground(ColorDir)
}
