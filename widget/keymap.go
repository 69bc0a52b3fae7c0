package widget

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/logdeck/logdeck/view"
)

// KeyMap binds terminal keys to view transitions.
type KeyMap struct {
	SelectPrev       key.Binding
	SelectNext       key.Binding
	ReduceShown      key.Binding
	IncreaseShown    key.Binding
	ReduceCaptured   key.Binding
	IncreaseCaptured key.Binding
	ToggleHidden     key.Binding
	ToggleFocus      key.Binding
	ToggleHideOff    key.Binding
	PageUp           key.Binding
	PageDown         key.Binding
	ExitPageMode     key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		SelectPrev: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous target"),
		),
		SelectNext: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next target"),
		),
		ReduceShown: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "show less"),
		),
		IncreaseShown: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "show more"),
		),
		ReduceCaptured: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "capture less"),
		),
		IncreaseCaptured: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "capture more"),
		),
		ToggleHidden: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "toggle target panel"),
		),
		ToggleFocus: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "focus selected target"),
		),
		ToggleHideOff: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "hide disabled targets"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("pgup", "scroll back"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("pgdn", "scroll forward"),
		),
		ExitPageMode: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "return to tail"),
		),
	}
}

// Event maps a key press to a view transition. ok is false for unbound keys.
func (m KeyMap) Event(msg tea.KeyMsg) (view.Event, bool) {
	switch {
	case key.Matches(msg, m.SelectPrev):
		return view.SelectPrev, true
	case key.Matches(msg, m.SelectNext):
		return view.SelectNext, true
	case key.Matches(msg, m.ReduceShown):
		return view.ReduceShown, true
	case key.Matches(msg, m.IncreaseShown):
		return view.IncreaseShown, true
	case key.Matches(msg, m.ReduceCaptured):
		return view.ReduceCaptured, true
	case key.Matches(msg, m.IncreaseCaptured):
		return view.IncreaseCaptured, true
	case key.Matches(msg, m.ToggleHidden):
		return view.ToggleHidden, true
	case key.Matches(msg, m.ToggleFocus):
		return view.ToggleFocus, true
	case key.Matches(msg, m.ToggleHideOff):
		return view.ToggleHideOff, true
	case key.Matches(msg, m.PageUp):
		return view.PageUp, true
	case key.Matches(msg, m.PageDown):
		return view.PageDown, true
	case key.Matches(msg, m.ExitPageMode):
		return view.ExitPageMode, true
	}
	return 0, false
}
