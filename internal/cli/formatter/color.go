package formatter

import (
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/contract"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

var colorEnabled = true

// SetColor turns styling on or off. Callers disable it when stdout is not a
// terminal.
func SetColor(enabled bool) {
	colorEnabled = enabled
}

func render(style lipgloss.Style, s string) string {
	if !colorEnabled {
		return s
	}
	return style.Render(s)
}

// NoticeStyle maps a notice level to its color.
func NoticeStyle(level contract.NoticeLevel) lipgloss.Style {
	switch level {
	case contract.NoticeInfo:
		return StyleBlue
	case contract.NoticeWarning:
		return StyleYellow
	case contract.NoticeError:
		return StyleRed
	default:
		return StyleDim
	}
}

func ProjectStatusStyle(s domain.ProjectStatus) lipgloss.Style {
	switch s {
	case domain.ProjectOpen:
		return StyleGreen
	case domain.ProjectInProgress:
		return StyleBlue
	case domain.ProjectCancelled:
		return StyleRed
	default:
		return StyleDim
	}
}

func Dim(text string) string  { return render(StyleDim, text) }
func Bold(text string) string { return render(StyleBold, text) }
