package widget

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/logdeck/logdeck/level"
	"github.com/logdeck/logdeck/view"
)

// LogStyles are the per-severity render styles.
type LogStyles struct {
	Error lipgloss.Style
	Warn  lipgloss.Style
	Info  lipgloss.Style
	Debug lipgloss.Style
	Trace lipgloss.Style
}

// DefaultLogStyles returns the standard dark-terminal palette.
func DefaultLogStyles() LogStyles {
	return LogStyles{
		Error: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")).Bold(true),
		Warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")),
		Info:  lipgloss.NewStyle().Foreground(lipgloss.Color("#44AAFF")),
		Debug: lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Trace: lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

func (s LogStyles) forLevel(l level.Level) lipgloss.Style {
	switch l {
	case level.Error:
		return s.Error
	case level.Warn:
		return s.Warn
	case level.Info:
		return s.Info
	case level.Debug:
		return s.Debug
	default:
		return s.Trace
	}
}

// LogView renders the visible log window for one view state.
type LogView struct {
	Styles    LogStyles
	Formatter Formatter

	width  int
	height int
}

// NewLogView returns a log pane with default styles and formatting.
func NewLogView() *LogView {
	return &LogView{Styles: DefaultLogStyles(), Formatter: TextFormatter{}}
}

// SetSize sets the viewport dimensions in cells.
func (v *LogView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Render produces the pane content: the newest visible events bottom
// aligned, wrapped to the pane width. A pane too small for any content
// renders as empty rather than failing.
func (v *LogView) Render(s *view.State) string {
	if v.width < 1 || v.height < 1 {
		return ""
	}
	s.SetViewport(v.height)

	// Each event needs at least one line, so the viewport height bounds
	// how many events can appear.
	rows := s.Visible(v.height)

	// Assemble from the bottom up so the newest event keeps the last row
	// even when wrapping pushes older events off the top.
	var lines []string
	for i := len(rows) - 1; i >= 0 && len(lines) < v.height; i-- {
		style := v.Styles.forLevel(levelStyleKey(rows[i].Event))
		formatted := v.Formatter.Format(v.width, rows[i].Event)
		for j := len(formatted) - 1; j >= 0 && len(lines) < v.height; j-- {
			lines = append(lines, style.Render(formatted[j]))
		}
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.Join(lines, "\n")
}
