package widget

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/logdeck/logdeck/level"
	"github.com/logdeck/logdeck/view"
)

// TargetStyles color the per-target level indicator cells.
type TargetStyles struct {
	// Shown marks levels that are captured and displayed.
	Shown lipgloss.Style
	// Hidden marks levels captured but filtered from display.
	Hidden lipgloss.Style
	// Off marks levels not captured at all.
	Off lipgloss.Style
	// Name styles target names; Highlight the selected one.
	Name      lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultTargetStyles returns the standard indicator palette.
func DefaultTargetStyles() TargetStyles {
	return TargetStyles{
		Shown:     lipgloss.NewStyle().Reverse(true),
		Hidden:    lipgloss.NewStyle(),
		Off:       lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
		Name:      lipgloss.NewStyle(),
		Highlight: lipgloss.NewStyle().Reverse(true),
	}
}

// TargetPanel renders the target selection list with one row per target: a
// five-cell capture/display matrix (EWIDT) followed by the target name.
type TargetPanel struct {
	Styles TargetStyles

	width  int
	height int
	offset int
}

// NewTargetPanel returns a panel with default styles.
func NewTargetPanel() *TargetPanel {
	return &TargetPanel{Styles: DefaultTargetStyles()}
}

// SetSize sets the panel dimensions in cells.
func (p *TargetPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Render produces the panel content. The list scrolls to keep the selected
// target in view; a panel narrower than the indicator block renders empty.
func (p *TargetPanel) Render(s *view.State) string {
	// Indicator block plus separator needs six cells, one more for a name.
	if p.width < 7 || p.height < 1 {
		return ""
	}
	if s.TargetsHidden() {
		return ""
	}
	rows := s.Targets()
	if len(rows) == 0 {
		return ""
	}

	selected := 0
	for i, r := range rows {
		if r.Selected {
			selected = i
		}
	}
	p.offset = scrollOffset(p.offset, selected, len(rows), p.height)

	end := p.offset + p.height
	if end > len(rows) {
		end = len(rows)
	}
	lines := make([]string, 0, end-p.offset)
	focused := s.Focused()
	for _, r := range rows[p.offset:end] {
		lines = append(lines, p.renderRow(r, focused))
	}
	return strings.Join(lines, "\n")
}

func (p *TargetPanel) renderRow(r view.TargetRow, focused bool) string {
	var b strings.Builder
	for _, lv := range level.All {
		switch {
		case !r.CaptureLevel.Enables(lv):
			b.WriteString(p.Styles.Off.Render(" "))
		case r.DisplayLevel.Enables(lv) && (!focused || r.Selected):
			b.WriteString(p.Styles.Shown.Render(lv.Abbrev()))
		default:
			b.WriteString(p.Styles.Hidden.Render(lv.Abbrev()))
		}
	}
	b.WriteString(":")
	name := Truncate(r.Target, p.width-6)
	if r.Selected {
		b.WriteString(p.Styles.Highlight.Render(name))
	} else {
		b.WriteString(p.Styles.Name.Render(name))
	}
	return b.String()
}

// scrollOffset keeps the selection visible while scrolling as little as
// possible.
func scrollOffset(offset, selected, total, height int) int {
	if height >= total {
		return 0
	}
	if selected < offset {
		return selected
	}
	if selected >= offset+height {
		return selected - height + 1
	}
	if offset+height > total {
		return total - height
	}
	return offset
}
